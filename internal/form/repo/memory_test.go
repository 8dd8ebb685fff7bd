package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConversationTransportKeepsConversationsApart(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryConversationTransport()

	require.NoError(t, m.SubmitText(ctx, "conv1", "first"))
	require.NoError(t, m.SubmitText(ctx, "conv1", "second"))
	require.NoError(t, m.SubmitText(ctx, "conv2", "other"))

	assert.Equal(t, []string{"first", "second"}, m.Messages("conv1"))
	assert.Equal(t, []string{"other"}, m.Messages("conv2"))
	assert.Empty(t, m.Messages("conv3"))
}

func TestMemoryConversationTransportReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryConversationTransport()
	require.NoError(t, m.SubmitText(ctx, "conv1", "first"))

	got := m.Messages("conv1")
	got[0] = "mutated"
	assert.Equal(t, []string{"first"}, m.Messages("conv1"))
}
