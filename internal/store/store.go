// Package store persists candidate records and recruiter registrations in
// PostgreSQL. It is the only package that talks to the database.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beluccky/candidate-bot/internal/model"
)

// ErrNotRegistered is returned by the registration lookups when no live
// registration matches.
var ErrNotRegistered = errors.New("no registration found")

// Store wraps the connection pool with the record operations the bot needs.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables on first start. Safe to run on every boot.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS candidates (
			candidate_id     TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			object           TEXT NOT NULL,
			start_date       DATE NOT NULL,
			recruiter_label  TEXT NOT NULL DEFAULT '',
			reminder_sent    BOOLEAN NOT NULL DEFAULT FALSE,
			reminder_sent_at TIMESTAMPTZ,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_candidates_pending
			ON candidates (start_date) WHERE reminder_sent = FALSE;

		CREATE TABLE IF NOT EXISTS recruiter_registrations (
			chat_id         TEXT PRIMARY KEY,
			recruiter_label TEXT NOT NULL,
			registered_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_registrations_label
			ON recruiter_registrations (recruiter_label);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ─── Candidates ──────────────────────────────────────────────────────────────

// Exists reports whether a candidate with the given derived ID is known.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE candidate_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", id, err)
	}
	return exists, nil
}

// Insert adds a new candidate with reminder_sent = false. Returns false when
// the ID is already known; a duplicate means "already tracked", not an error.
func (s *Store) Insert(ctx context.Context, c model.Candidate) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO candidates (candidate_id, name, object, start_date, recruiter_label)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (candidate_id) DO NOTHING`,
		c.ID, c.Name, c.Object, c.StartDate, c.RecruiterLabel,
	)
	if err != nil {
		return false, fmt.Errorf("insert candidate %s: %w", c.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListPending returns all candidates whose reminder has not been sent yet,
// earliest start date first (candidate_id breaks ties so the order is stable).
func (s *Store) ListPending(ctx context.Context) ([]model.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, name, object, start_date, recruiter_label,
		        reminder_sent, reminder_sent_at, created_at
		 FROM candidates
		 WHERE reminder_sent = FALSE
		 ORDER BY start_date ASC, candidate_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return scanCandidates(rows)
}

// MarkSent flips reminder_sent to true and stamps the send time. The guard on
// reminder_sent makes the transition terminal: a second call is a no-op.
func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE candidates
		 SET reminder_sent = TRUE, reminder_sent_at = $2
		 WHERE candidate_id = $1 AND reminder_sent = FALSE`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("mark sent %s: %w", id, err)
	}
	return nil
}

// ListAll returns every tracked candidate.
func (s *Store) ListAll(ctx context.Context) ([]model.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, name, object, start_date, recruiter_label,
		        reminder_sent, reminder_sent_at, created_at
		 FROM candidates
		 ORDER BY start_date ASC, candidate_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return scanCandidates(rows)
}

func scanCandidates(rows pgx.Rows) ([]model.Candidate, error) {
	defer rows.Close()
	out := make([]model.Candidate, 0)
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Object, &c.StartDate, &c.RecruiterLabel,
			&c.ReminderSent, &c.ReminderSentAt, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ─── Recruiter registrations ─────────────────────────────────────────────────

// UpsertRegistration binds a chat to a recruiter label. Re-registering the
// same chat replaces its label, and a label stolen by another chat is removed
// from its previous owner: a label never maps to more than one live chat.
func (s *Store) UpsertRegistration(ctx context.Context, chatID, label string) error {
	if chatID == "" {
		return fmt.Errorf("chat id must not be empty")
	}
	if label == "" {
		return fmt.Errorf("recruiter label must not be empty")
	}
	_, err := s.pool.Exec(ctx,
		`WITH evicted AS (
		   DELETE FROM recruiter_registrations
		   WHERE recruiter_label = $2 AND chat_id <> $1
		 )
		 INSERT INTO recruiter_registrations (chat_id, recruiter_label, registered_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (chat_id) DO UPDATE
		 SET recruiter_label = EXCLUDED.recruiter_label,
		     registered_at   = NOW()`,
		chatID, label,
	)
	if err != nil {
		return fmt.Errorf("upsert registration %s: %w", label, err)
	}
	return nil
}

// LookupAddressByLabel returns the chat registered for a recruiter label.
// Returns ErrNotRegistered when nobody registered that label.
func (s *Store) LookupAddressByLabel(ctx context.Context, label string) (string, error) {
	var chatID string
	err := s.pool.QueryRow(ctx,
		`SELECT chat_id FROM recruiter_registrations WHERE recruiter_label = $1`, label,
	).Scan(&chatID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotRegistered
	}
	if err != nil {
		return "", fmt.Errorf("lookup address for %s: %w", label, err)
	}
	return chatID, nil
}

// LookupLabelByAddress returns the label a chat is registered under.
// Returns ErrNotRegistered when the chat has no registration.
func (s *Store) LookupLabelByAddress(ctx context.Context, chatID string) (string, error) {
	var label string
	err := s.pool.QueryRow(ctx,
		`SELECT recruiter_label FROM recruiter_registrations WHERE chat_id = $1`, chatID,
	).Scan(&label)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotRegistered
	}
	if err != nil {
		return "", fmt.Errorf("lookup label for chat %s: %w", chatID, err)
	}
	return label, nil
}

// ListRegistrations returns every live registration.
func (s *Store) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT chat_id, recruiter_label, registered_at
		 FROM recruiter_registrations
		 ORDER BY recruiter_label ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	out := make([]model.Registration, 0)
	for rows.Next() {
		var r model.Registration
		if err := rows.Scan(&r.ChatID, &r.RecruiterLabel, &r.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
