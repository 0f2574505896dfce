// Package resolve maps the recruiter label on a candidate row to a concrete
// Telegram chat.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/beluccky/candidate-bot/internal/store"
)

// ErrNoRecipient means no chat can receive the reminder: either the row names
// a recruiter who never registered, or the row names nobody and no default
// chat is configured.
var ErrNoRecipient = errors.New("no recipient")

// RegistrationStore is the lookup the resolver needs.
type RegistrationStore interface {
	LookupAddressByLabel(ctx context.Context, label string) (string, error)
}

// Resolver resolves recruiter labels against live registrations.
type Resolver struct {
	store         RegistrationStore
	defaultChatID string // may be empty: then unlabeled rows are unreachable
}

// New constructs a Resolver. defaultChatID may be empty.
func New(st RegistrationStore, defaultChatID string) *Resolver {
	return &Resolver{store: st, defaultChatID: defaultChatID}
}

// Resolve returns the chat to notify for the given recruiter label.
//
// An empty label falls back to the configured default chat. A non-empty
// label must have a live registration: a named recruiter who never
// registered is a real gap, not a case for the default.
func (r *Resolver) Resolve(ctx context.Context, label string) (string, error) {
	if label == "" {
		if r.defaultChatID == "" {
			return "", fmt.Errorf("no default chat configured: %w", ErrNoRecipient)
		}
		return r.defaultChatID, nil
	}

	chatID, err := r.store.LookupAddressByLabel(ctx, label)
	if errors.Is(err, store.ErrNotRegistered) {
		return "", fmt.Errorf("recruiter %q is not registered: %w", label, ErrNoRecipient)
	}
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", label, err)
	}
	return chatID, nil
}
