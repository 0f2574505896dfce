package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beluccky/candidate-bot/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("TOKEN")
	c.baseURL = srv.URL
	return c
}

func TestSend_OK(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	if err := c.Send(context.Background(), "123", "привет"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q, want /botTOKEN/sendMessage", gotPath)
	}
	if gotPayload["chat_id"] != "123" {
		t.Errorf("chat_id = %v, want 123", gotPayload["chat_id"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v, want HTML", gotPayload["parse_mode"])
	}
}

func TestSend_TelegramError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := c.Send(context.Background(), "0", "x")
	if err == nil {
		t.Fatal("Send should fail on ok=false")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error %q should carry the Telegram description", err)
	}
}

func TestGetUpdates_DecodesMessagesAndCallbacks(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":42},"text":"/start"}},
			{"update_id":11,"callback_query":{"id":"cb1","from":{"id":42},"data":"Петров"}}
		]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetUpdates returned error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("len(updates) = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/start" {
		t.Errorf("first update message = %+v, want /start", updates[0].Message)
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "Петров" {
		t.Errorf("second update callback = %+v, want Петров", updates[1].CallbackQuery)
	}
}

func TestTestConnectivity(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"id":7,"username":"candidate_bot"}}`))
	})

	name, err := c.TestConnectivity(context.Background())
	if err != nil {
		t.Fatalf("TestConnectivity returned error: %v", err)
	}
	if name != "candidate_bot" {
		t.Errorf("username = %q, want candidate_bot", name)
	}
}

// ── Template ───────────────────────────────────────────────────────────────

func TestReminderMessage(t *testing.T) {
	msg := ReminderMessage(model.Candidate{Name: "Иванова Анна", Object: "Склад Север"})

	for _, want := range []string{
		"Иванова Анна",
		"Склад Север",
		"<b>ЗАВТРА</b>",
		"уточните факт выхода",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestReminderMessage_EscapesHTML(t *testing.T) {
	msg := ReminderMessage(model.Candidate{Name: "<script>", Object: "A&B"})

	if strings.Contains(msg, "<script>") {
		t.Error("candidate name must be HTML-escaped")
	}
	if !strings.Contains(msg, "&lt;script&gt;") || !strings.Contains(msg, "A&amp;B") {
		t.Errorf("escaped values missing:\n%s", msg)
	}
}
