package repo

import (
	"context"
	"sync"
)

// MemoryConversationTransport keeps submitted messages in memory, for tests
// and for running the demo without Redis.
type MemoryConversationTransport struct {
	mu       sync.Mutex
	messages map[string][]string
}

func NewMemoryConversationTransport() *MemoryConversationTransport {
	return &MemoryConversationTransport{messages: make(map[string][]string)}
}

func (m *MemoryConversationTransport) SubmitText(_ context.Context, conversationID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[conversationID] = append(m.messages[conversationID], text)
	return nil
}

// Messages returns a copy of everything submitted to the conversation.
func (m *MemoryConversationTransport) Messages(conversationID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages[conversationID]))
	copy(out, m.messages[conversationID])
	return out
}
