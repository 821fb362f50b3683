package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/ourstory/internal/models"
	"go.uber.org/zap"
)

// Chat returns the latest chat snapshot, oldest first.
func (a *App) Chat() []models.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chat.snapshot()
}

// SendMessage appends text as the current identity. The append runs
// detached and a failure reaches the Alerter as "send message". The chat
// must be subscribing or live.
func (a *App) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	id, _ := a.session.Identity()
	if !id.Privileged() {
		return ErrForbidden
	}
	if a.chat.state == Unsubscribed {
		return ErrNotLive
	}

	msg := models.ChatMessage{
		Text:      text,
		Sender:    id,
		Timestamp: a.cfg.Now().UTC(),
	}
	a.goTask("send message", func(ctx context.Context) error {
		if _, err := a.cfg.Messages.Append(ctx, msg); err != nil {
			a.cfg.Alerter.Alert("send message", err)
			return err
		}
		return nil
	})
	return nil
}

// MarkSeen stamps seenAt on every held message written by someone else
// that has not been seen yet. It is best-effort; failures are only logged.
func (a *App) MarkSeen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	id, _ := a.session.Identity()
	if !id.Privileged() {
		return ErrForbidden
	}
	if a.cfg.Seen == nil {
		return nil
	}

	var ids []string
	for _, m := range a.chat.items {
		if m.Sender != id && m.SeenAt == nil {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	at := a.cfg.Now().UTC()
	a.goTask("mark seen", func(ctx context.Context) error {
		return a.cfg.Seen.MarkSeen(ctx, ids, at)
	})
	return nil
}

// ClearChat deletes every message in the chat feed. Failure reaches the
// Alerter as "clear chat".
func (a *App) ClearChat() error {
	if err := a.privileged(); err != nil {
		return err
	}
	return a.spawn("clear chat", func(ctx context.Context) error {
		err := a.deleteMessages(ctx, models.Query{})
		if err != nil {
			a.cfg.Alerter.Alert("clear chat", err)
		}
		return err
	})
}

// cleanup prunes messages older than CleanupAge. It runs once per entry
// into chat Live and reports only to the task log.
func (a *App) cleanup() {
	_ = a.spawn("cleanup", func(ctx context.Context) error {
		cutoff := a.cfg.Now().Add(-CleanupAge)
		return a.deleteMessages(ctx, models.Query{Before: &cutoff})
	})
}

func (a *App) deleteMessages(ctx context.Context, q models.Query) error {
	msgs, err := a.cfg.Messages.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("query messages: %w", err)
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if q.Before != nil && m.Timestamp.After(*q.Before) {
			continue
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := a.cfg.Messages.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	a.tasks.Info("messages deleted", zap.Int("count", len(ids)))
	return nil
}
