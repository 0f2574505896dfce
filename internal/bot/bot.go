// Package bot handles recruiter self-registration over the Telegram command
// channel: /start presents the recruiter-label directory as inline buttons
// and a button press binds the chat to that label.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/beluccky/candidate-bot/internal/notify"
	"github.com/beluccky/candidate-bot/internal/store"
)

// Telegram callback_data payloads are capped at 64 bytes.
const maxCallbackData = 64

// API is the slice of the Telegram client the bot uses.
type API interface {
	Send(ctx context.Context, chatID, text string) error
	SendWithKeyboard(ctx context.Context, chatID, text string, rows [][]notify.InlineButton) error
	GetUpdates(ctx context.Context, offset int64) ([]notify.Update, error)
	AnswerCallback(ctx context.Context, callbackID string) error
}

// RegistrationStore is the subset of store operations registration needs.
// All of it is single-record reads and writes, safe to run while a poll
// cycle is in flight.
type RegistrationStore interface {
	UpsertRegistration(ctx context.Context, chatID, label string) error
	LookupLabelByAddress(ctx context.Context, chatID string) (string, error)
}

// LabelDirectory reads the recruiter labels of the latest successful fetch.
type LabelDirectory interface {
	Labels(ctx context.Context) ([]string, error)
}

// Bot runs the registration command loop.
type Bot struct {
	api   API
	store RegistrationStore
	dir   LabelDirectory
}

// New constructs a Bot.
func New(api API, st RegistrationStore, dir LabelDirectory) *Bot {
	return &Bot{api: api, store: st, dir: dir}
}

// Listen long-polls for updates until ctx is cancelled. Transport errors are
// logged and polling resumes after a short pause.
func (b *Bot) Listen(ctx context.Context) {
	log.Println("[bot] Command listener started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Println("[bot] Command listener stopped")
			return
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("[bot] getUpdates error: %v — retrying", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u notify.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleRegistration(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleCommand(ctx, u.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *notify.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	switch command(msg.Text) {
	case "/start", "/register":
		b.sendRegistrationMenu(ctx, chatID)
	case "/whoami":
		b.sendWhoAmI(ctx, chatID)
	}
}

// sendRegistrationMenu greets the chat and offers the current directory as
// selectable options. The directory reflects the latest successful fetch;
// before the first fetch it is empty.
func (b *Bot) sendRegistrationMenu(ctx context.Context, chatID string) {
	var greeting strings.Builder
	greeting.WriteString("Привет! Я напоминаю о выходе кандидатов за день до старта.\n")

	if label, err := b.store.LookupLabelByAddress(ctx, chatID); err == nil {
		fmt.Fprintf(&greeting, "Этот чат уже зарегистрирован как рекрутер <b>%s</b>.\n", label)
	}

	labels, err := b.dir.Labels(ctx)
	if err != nil {
		log.Printf("[bot] directory read failed: %v", err)
	}
	if len(labels) == 0 {
		greeting.WriteString("Список рекрутеров пока пуст — загляните после следующего обновления таблицы.")
		b.reply(ctx, chatID, greeting.String())
		return
	}

	greeting.WriteString("Выберите своё имя из таблицы:")
	if err := b.api.SendWithKeyboard(ctx, chatID, greeting.String(), keyboardRows(labels)); err != nil {
		log.Printf("[bot] send menu to %s failed: %v", chatID, err)
	}
}

func (b *Bot) sendWhoAmI(ctx context.Context, chatID string) {
	label, err := b.store.LookupLabelByAddress(ctx, chatID)
	switch {
	case err == nil:
		b.reply(ctx, chatID, fmt.Sprintf("Этот чат зарегистрирован как рекрутер <b>%s</b>.", label))
	case errors.Is(err, store.ErrNotRegistered):
		b.reply(ctx, chatID, "Этот чат ещё не зарегистрирован. Отправьте /start, чтобы выбрать имя.")
	default:
		log.Printf("[bot] whoami lookup for %s failed: %v", chatID, err)
	}
}

// handleRegistration binds the pressing chat to the chosen label. The last
// registration for a label wins; re-pressing is idempotent.
func (b *Bot) handleRegistration(ctx context.Context, cq *notify.CallbackQuery) {
	// Acknowledge first so the client drops its spinner even when the
	// write below fails.
	if err := b.api.AnswerCallback(ctx, cq.ID); err != nil {
		log.Printf("[bot] answerCallbackQuery failed: %v", err)
	}

	chatID := strconv.FormatInt(cq.From.ID, 10)
	if cq.Message != nil {
		chatID = strconv.FormatInt(cq.Message.Chat.ID, 10)
	}

	label := cq.Data
	if label == "" {
		return
	}

	if err := b.store.UpsertRegistration(ctx, chatID, label); err != nil {
		log.Printf("[bot] registration of %s as %q failed: %v", chatID, label, err)
		b.reply(ctx, chatID, "Не получилось сохранить регистрацию, попробуйте ещё раз.")
		return
	}

	log.Printf("[bot] Chat %s registered as recruiter %q", chatID, label)
	b.reply(ctx, chatID, fmt.Sprintf(
		"Готово! Напоминания для рекрутера <b>%s</b> теперь приходят в этот чат.", label))
}

func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if err := b.api.Send(ctx, chatID, text); err != nil {
		log.Printf("[bot] reply to %s failed: %v", chatID, err)
	}
}

// command extracts the command token, dropping a @botname suffix.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

// keyboardRows lays the labels out two buttons per row. Labels too long for
// a callback payload cannot be selected and are left out.
func keyboardRows(labels []string) [][]notify.InlineButton {
	var rows [][]notify.InlineButton
	var row []notify.InlineButton
	for _, l := range labels {
		if len(l) > maxCallbackData {
			continue
		}
		row = append(row, notify.InlineButton{Text: l, CallbackData: l})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
