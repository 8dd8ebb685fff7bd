package state

import (
	"context"
	"sync"

	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// LockMirror publishes the per-conversation blocked flag to an external
// surface (the chat input shell reads it). Mirror failures are logged and
// otherwise ignored; the in-process table is the source of truth.
type LockMirror interface {
	SetBlocked(ctx context.Context, conversationID string, blocked bool) error
}

// Locks is the per-conversation blocked-flag table. While a conversation is
// locked the chat input must not accept new user messages. Acquire and
// Release are idempotent because unmount cleanup can race the explicit
// submit/cancel handlers.
type Locks struct {
	mu      sync.Mutex
	blocked map[string]bool
	mirror  LockMirror
}

func NewLocks(mirror LockMirror) *Locks {
	return &Locks{
		blocked: make(map[string]bool),
		mirror:  mirror,
	}
}

// Acquire marks the conversation blocked. Acquiring an already-acquired lock
// is a no-op.
func (l *Locks) Acquire(ctx context.Context, conversationID string) {
	l.mu.Lock()
	already := l.blocked[conversationID]
	l.blocked[conversationID] = true
	l.mu.Unlock()

	if !already {
		l.publish(ctx, conversationID, true)
	}
}

// Release unmarks the conversation. Releasing an already-released lock is a
// no-op.
func (l *Locks) Release(ctx context.Context, conversationID string) {
	l.mu.Lock()
	held := l.blocked[conversationID]
	delete(l.blocked, conversationID)
	l.mu.Unlock()

	if held {
		l.publish(ctx, conversationID, false)
	}
}

// Blocked reports whether the conversation currently rejects user messages.
func (l *Locks) Blocked(conversationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blocked[conversationID]
}

func (l *Locks) publish(ctx context.Context, conversationID string, blocked bool) {
	if l.mirror == nil {
		return
	}
	if err := l.mirror.SetBlocked(ctx, conversationID, blocked); err != nil {
		lg := logx.Component("conversation_lock")
		lg.Warn().
			Err(err).
			Str("conversationID", conversationID).
			Bool("blocked", blocked).
			Msg("failed to mirror blocked flag")
	}
}
