package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/beluccky/candidate-bot/internal/notify"
	"github.com/beluccky/candidate-bot/internal/store"
)

// ── Fakes ──────────────────────────────────────────────────────────────────

type sentKeyboard struct {
	chatID string
	text   string
	rows   [][]notify.InlineButton
}

type fakeAPI struct {
	texts     []string
	keyboards []sentKeyboard
	answered  []string
}

func (f *fakeAPI) Send(ctx context.Context, chatID, text string) error {
	f.texts = append(f.texts, chatID+"|"+text)
	return nil
}

func (f *fakeAPI) SendWithKeyboard(ctx context.Context, chatID, text string, rows [][]notify.InlineButton) error {
	f.keyboards = append(f.keyboards, sentKeyboard{chatID: chatID, text: text, rows: rows})
	return nil
}

func (f *fakeAPI) GetUpdates(ctx context.Context, offset int64) ([]notify.Update, error) {
	return nil, nil
}

func (f *fakeAPI) AnswerCallback(ctx context.Context, callbackID string) error {
	f.answered = append(f.answered, callbackID)
	return nil
}

type fakeRegistrations struct {
	byChat map[string]string // chat id → label
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{byChat: map[string]string{}}
}

func (f *fakeRegistrations) UpsertRegistration(ctx context.Context, chatID, label string) error {
	// Last registration for a label wins.
	for chat, l := range f.byChat {
		if l == label && chat != chatID {
			delete(f.byChat, chat)
		}
	}
	f.byChat[chatID] = label
	return nil
}

func (f *fakeRegistrations) LookupLabelByAddress(ctx context.Context, chatID string) (string, error) {
	label, ok := f.byChat[chatID]
	if !ok {
		return "", store.ErrNotRegistered
	}
	return label, nil
}

type fakeDirectory []string

func (f fakeDirectory) Labels(ctx context.Context) ([]string, error) {
	return f, nil
}

func message(chatID int64, text string) notify.Update {
	return notify.Update{Message: &notify.Message{Chat: notify.Chat{ID: chatID}, Text: text}}
}

func press(chatID int64, data string) notify.Update {
	return notify.Update{CallbackQuery: &notify.CallbackQuery{
		ID:      "cb1",
		From:    notify.User{ID: chatID},
		Message: &notify.Message{Chat: notify.Chat{ID: chatID}},
		Data:    data,
	}}
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestStart_PresentsDirectory(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, newFakeRegistrations(), fakeDirectory{"Антонова", "Петров"})

	b.handleUpdate(context.Background(), message(42, "/start"))

	if len(api.keyboards) != 1 {
		t.Fatalf("keyboards sent = %d, want 1", len(api.keyboards))
	}
	kb := api.keyboards[0]
	if kb.chatID != "42" {
		t.Errorf("chat = %q, want 42", kb.chatID)
	}
	var buttons []string
	for _, row := range kb.rows {
		for _, btn := range row {
			buttons = append(buttons, btn.Text)
		}
	}
	if len(buttons) != 2 || buttons[0] != "Антонова" || buttons[1] != "Петров" {
		t.Errorf("buttons = %v, want directory labels in order", buttons)
	}
}

func TestStart_EmptyDirectory(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, newFakeRegistrations(), fakeDirectory{})

	b.handleUpdate(context.Background(), message(42, "/start"))

	if len(api.keyboards) != 0 {
		t.Errorf("no keyboard expected for an empty directory")
	}
	if len(api.texts) != 1 || !strings.Contains(api.texts[0], "пуст") {
		t.Errorf("texts = %v, want an empty-directory notice", api.texts)
	}
}

func TestCallback_RegistersChat(t *testing.T) {
	api := &fakeAPI{}
	regs := newFakeRegistrations()
	b := New(api, regs, fakeDirectory{"Петров"})

	b.handleUpdate(context.Background(), press(123, "Петров"))

	if got := regs.byChat["123"]; got != "Петров" {
		t.Errorf("registration = %q, want Петров", got)
	}
	if len(api.answered) != 1 {
		t.Error("callback should be acknowledged")
	}
	if len(api.texts) != 1 || !strings.Contains(api.texts[0], "Петров") {
		t.Errorf("texts = %v, want a confirmation naming the label", api.texts)
	}
}

// Re-registering the same label from another chat moves it: last write wins.
func TestCallback_LastRegistrationWins(t *testing.T) {
	api := &fakeAPI{}
	regs := newFakeRegistrations()
	b := New(api, regs, fakeDirectory{"Петров"})

	b.handleUpdate(context.Background(), press(123, "Петров"))
	b.handleUpdate(context.Background(), press(456, "Петров"))

	if _, err := regs.LookupLabelByAddress(context.Background(), "123"); err == nil {
		t.Error("chat 123 should have lost the label")
	}
	if got := regs.byChat["456"]; got != "Петров" {
		t.Errorf("registration = %q, want Петров on chat 456", got)
	}
}

func TestWhoAmI(t *testing.T) {
	api := &fakeAPI{}
	regs := newFakeRegistrations()
	regs.byChat["42"] = "Петров"
	b := New(api, regs, fakeDirectory{})

	b.handleUpdate(context.Background(), message(42, "/whoami"))
	b.handleUpdate(context.Background(), message(77, "/whoami"))

	if len(api.texts) != 2 {
		t.Fatalf("texts = %v, want 2 replies", api.texts)
	}
	if !strings.Contains(api.texts[0], "Петров") {
		t.Errorf("registered reply = %q, want the label", api.texts[0])
	}
	if !strings.Contains(api.texts[1], "не зарегистрирован") {
		t.Errorf("unregistered reply = %q", api.texts[1])
	}
}

func TestCommand_Parsing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/start", "/start"},
		{"/start@candidate_bot", "/start"},
		{"/whoami тест", "/whoami"},
		{"привет", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := command(c.in); got != c.want {
			t.Errorf("command(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
