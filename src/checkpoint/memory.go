package checkpoint

import (
	"context"
	"sync"

	"github.com/stackdesk/deskagent/src/aisdk"
)

// MemoryStore is an in-memory checkpoint store for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	threads map[string][]*aisdk.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string][]*aisdk.Message)}
}

func (s *MemoryStore) Get(_ context.Context, threadID string) ([]*aisdk.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	return cloneMessages(stored), nil
}

func (s *MemoryStore) Put(_ context.Context, threadID string, messages []*aisdk.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = cloneMessages(messages)
	return nil
}

// cloneMessages copies messages so callers cannot mutate stored state.
func cloneMessages(in []*aisdk.Message) []*aisdk.Message {
	out := make([]*aisdk.Message, len(in))
	for i, msg := range in {
		copied := *msg
		if len(msg.ToolCalls) > 0 {
			copied.ToolCalls = append([]aisdk.ToolCall(nil), msg.ToolCalls...)
		}
		out[i] = &copied
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
