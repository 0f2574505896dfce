package remind

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/beluccky/candidate-bot/internal/dates"
	"github.com/beluccky/candidate-bot/internal/model"
	"github.com/beluccky/candidate-bot/internal/notify"
	"github.com/beluccky/candidate-bot/internal/resolve"
)

// PendingStore is the subset of store operations the engine needs.
// ListPending must return candidates in ascending start-date order.
type PendingStore interface {
	ListPending(ctx context.Context) ([]model.Candidate, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// Recipients resolves a recruiter label to a chat.
type Recipients interface {
	Resolve(ctx context.Context, label string) (string, error)
}

// Notifier delivers one message to one chat.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

// Engine walks the pending candidates and dispatches due reminders.
type Engine struct {
	store      PendingStore
	recipients Recipients
	notifier   Notifier

	// now is the clock used for the tomorrow check; swapped out in tests.
	now func() time.Time
}

// NewEngine constructs an Engine running on the real clock.
func NewEngine(st PendingStore, rec Recipients, n Notifier) *Engine {
	return &Engine{store: st, recipients: rec, notifier: n, now: time.Now}
}

// Run dispatches a reminder for every candidate that is due at this moment.
// A candidate is marked sent only after its message was delivered; every
// failure leaves it pending so the next cycle retries. Candidates are
// processed earliest start date first.
func (e *Engine) Run(ctx context.Context) error {
	pending, err := e.store.ListPending(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	var sent, unresolved, failed int

	for _, c := range pending {
		if Evaluate(c, now) != StateDue {
			continue
		}

		chatID, err := e.recipients.Resolve(ctx, c.RecruiterLabel)
		if errors.Is(err, resolve.ErrNoRecipient) {
			// Stays pending. Known gap: unless resolved today, the
			// tomorrow window lapses and no later cycle re-triggers it.
			slog.Warn("reminder unresolved, no recipient",
				"candidate", c.ID, "recruiter", c.RecruiterLabel)
			unresolved++
			continue
		}
		if err != nil {
			slog.Warn("recipient resolution failed", "candidate", c.ID, "err", err)
			failed++
			continue
		}

		if err := e.notifier.Send(ctx, chatID, notify.ReminderMessage(c)); err != nil {
			slog.Warn("reminder send failed, will retry next cycle",
				"candidate", c.ID, "chat", chatID, "err", err)
			failed++
			continue
		}

		if err := e.store.MarkSent(ctx, c.ID, e.now()); err != nil {
			// The message went out but the flag did not stick; the next
			// cycle will re-send. Surfaced loudly since it breaks the
			// at-most-once goal.
			slog.Error("mark sent failed after delivery", "candidate", c.ID, "err", err)
			failed++
			continue
		}

		slog.Info("reminder sent",
			"candidate", c.ID, "name", c.Name, "chat", chatID,
			"startDate", c.StartDate.Format(dates.ISO))
		sent++
	}

	slog.Info("reminder pass complete",
		"pending", len(pending), "sent", sent, "unresolved", unresolved, "failed", failed)
	return nil
}
