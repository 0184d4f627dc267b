package checkpoint

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdesk/deskagent/src/aisdk"
	"github.com/stackdesk/deskagent/src/store"
)

func sampleConversation() []*aisdk.Message {
	return []*aisdk.Message{
		{Role: "user", Content: "create a ticket about the printer"},
		{
			Role: "assistant",
			ToolCalls: []aisdk.ToolCall{{
				ID:   "call_1",
				Type: "function",
				Function: aisdk.FunctionCall{
					Name:      "createTicket",
					Arguments: json.RawMessage(`{"title":"Printer broken","description":"It jams"}`),
				},
			}},
		},
		{Role: "tool", Name: "createTicket", ToolCallID: "call_1", Content: `{"success":true}`},
		{Role: "assistant", Content: "Done, I created the ticket."},
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"sql":    NewSQLStore(db.DB()),
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, cp := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := cp.Get(ctx, "thread-1")
			require.NoError(t, err)
			assert.Nil(t, got)

			conversation := sampleConversation()
			require.NoError(t, cp.Put(ctx, "thread-1", conversation))

			got, err = cp.Get(ctx, "thread-1")
			require.NoError(t, err)
			require.Len(t, got, len(conversation))
			for i, want := range conversation {
				assert.Equal(t, want.Role, got[i].Role)
				assert.Equal(t, want.Content, got[i].Content)
				assert.Equal(t, want.Name, got[i].Name)
				assert.Equal(t, want.ToolCallID, got[i].ToolCallID)
				require.Len(t, got[i].ToolCalls, len(want.ToolCalls))
				for j, call := range want.ToolCalls {
					assert.Equal(t, call.ID, got[i].ToolCalls[j].ID)
					assert.Equal(t, call.Function.Name, got[i].ToolCalls[j].Function.Name)
					assert.JSONEq(t, string(call.Function.Arguments), string(got[i].ToolCalls[j].Function.Arguments))
				}
			}
		})
	}
}

func TestStorePutReplaces(t *testing.T) {
	for name, cp := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, cp.Put(ctx, "thread-1", sampleConversation()))

			shorter := []*aisdk.Message{
				{Role: "user", Content: "hi"},
				{Role: "assistant", Content: "hello"},
			}
			require.NoError(t, cp.Put(ctx, "thread-1", shorter))

			got, err := cp.Get(ctx, "thread-1")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "hello", got[1].Content)
		})
	}
}

func TestStoreThreadsAreIsolated(t *testing.T) {
	for name, cp := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, cp.Put(ctx, "thread-a", []*aisdk.Message{{Role: "user", Content: "a"}}))
			require.NoError(t, cp.Put(ctx, "thread-b", []*aisdk.Message{{Role: "user", Content: "b"}}))

			got, err := cp.Get(ctx, "thread-a")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a", got[0].Content)
		})
	}
}

func TestMemoryStoreCopiesOnGet(t *testing.T) {
	cp := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, cp.Put(ctx, "thread-1", []*aisdk.Message{{Role: "user", Content: "original"}}))

	got, err := cp.Get(ctx, "thread-1")
	require.NoError(t, err)
	got[0].Content = "mutated"

	again, err := cp.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}
