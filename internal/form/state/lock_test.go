package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingMirror struct {
	calls []string
	fail  bool
}

func (m *recordingMirror) SetBlocked(_ context.Context, conversationID string, blocked bool) error {
	state := "unblocked"
	if blocked {
		state = "blocked"
	}
	m.calls = append(m.calls, conversationID+":"+state)
	if m.fail {
		return errors.New("mirror down")
	}
	return nil
}

func TestLocksAcquireReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewLocks(nil)

	l.Acquire(ctx, "conv1")
	l.Acquire(ctx, "conv1")
	assert.True(t, l.Blocked("conv1"))

	l.Release(ctx, "conv1")
	assert.False(t, l.Blocked("conv1"))
	l.Release(ctx, "conv1") // releasing a released lock is a no-op
	assert.False(t, l.Blocked("conv1"))
}

func TestLocksAreKeyedPerConversation(t *testing.T) {
	ctx := context.Background()
	l := NewLocks(nil)

	l.Acquire(ctx, "conv1")
	assert.True(t, l.Blocked("conv1"))
	assert.False(t, l.Blocked("conv2"))
}

func TestLocksMirrorPublishesOnlyTransitions(t *testing.T) {
	ctx := context.Background()
	m := &recordingMirror{}
	l := NewLocks(m)

	l.Acquire(ctx, "conv1")
	l.Acquire(ctx, "conv1") // no transition, no publish
	l.Release(ctx, "conv1")
	l.Release(ctx, "conv1")

	assert.Equal(t, []string{"conv1:blocked", "conv1:unblocked"}, m.calls)
}

func TestLocksMirrorFailureDoesNotBlockLocking(t *testing.T) {
	ctx := context.Background()
	l := NewLocks(&recordingMirror{fail: true})

	l.Acquire(ctx, "conv1")
	assert.True(t, l.Blocked("conv1"))
	l.Release(ctx, "conv1")
	assert.False(t, l.Blocked("conv1"))
}
