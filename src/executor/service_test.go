package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/aisdk"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/checkpoint"
	"github.com/stackdesk/deskagent/src/store"
)

// scriptedModel returns queued responses in order, or queued errors.
type scriptedModel struct {
	mu      sync.Mutex
	script  []scriptStep
	calls   int
	blockCh chan struct{}
}

type scriptStep struct {
	message aisdk.Message
	err     error
}

func (m *scriptedModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if m.blockCh != nil {
		<-m.blockCh
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls >= len(m.script) {
		return nil, errors.New("script exhausted")
	}
	step := m.script[m.calls]
	m.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &aisdk.ChatCompletionResponse{
		Choices: []aisdk.Choice{{Message: step.message, FinishReason: "stop"}},
	}, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// assistantStep scripts a plain assistant answer.
func assistantStep(text string) scriptStep {
	return scriptStep{message: aisdk.Message{Role: "assistant", Content: text}}
}

// toolCallStep scripts an assistant message requesting the given calls.
func toolCallStep(calls ...aisdk.ToolCall) scriptStep {
	return scriptStep{message: aisdk.Message{Role: "assistant", ToolCalls: calls}}
}

func errorStep(err error) scriptStep {
	return scriptStep{err: err}
}

// collectSink records every event it receives.
type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *collectSink) byType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// countingStore wraps a checkpoint store and counts writes.
type countingStore struct {
	checkpoint.Store
	mu   sync.Mutex
	puts int
}

func (s *countingStore) Put(ctx context.Context, threadID string, messages []*aisdk.Message) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.Store.Put(ctx, threadID, messages)
}

func (s *countingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type delayInput struct {
	Label string `json:"label" required:"true" description:"Label echoed back"`
	Sleep int    `json:"sleep,omitempty" description:"Milliseconds to sleep before returning"`
}

type delayOutput struct {
	Success bool   `json:"success"`
	Label   string `json:"label"`
}

func newTestGate(t *testing.T) *authz.Gate {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "gate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return authz.NewGate(db.DB(), nil)
}

type testEnv struct {
	model       *scriptedModel
	checkpoints *countingStore
	service     *Service
	toolbox     *agent.Toolbox
	sink        *collectSink
	executed    *[]string
}

func newTestEnv(t *testing.T, script []scriptStep, opts ...func(*Options)) *testEnv {
	t.Helper()

	model := &scriptedModel{script: script}
	checkpoints := &countingStore{Store: checkpoint.NewMemoryStore()}

	options := Options{
		Model:       model,
		Checkpoints: checkpoints,
		Gate:        newTestGate(t),
	}
	for _, opt := range opts {
		opt(&options)
	}

	service, err := NewService(options)
	require.NoError(t, err)

	var mu sync.Mutex
	executed := []string{}
	toolbox := agent.NewToolbox()
	register := func(name string, req authz.Requirement) {
		tool, err := agent.NewGenericTool(name, "test tool", req,
			func(ctx context.Context, input delayInput) (delayOutput, error) {
				if input.Sleep > 0 {
					time.Sleep(time.Duration(input.Sleep) * time.Millisecond)
				}
				mu.Lock()
				executed = append(executed, input.Label)
				mu.Unlock()
				return delayOutput{Success: true, Label: input.Label}, nil
			})
		require.NoError(t, err)
		require.NoError(t, toolbox.RegisterTool(tool))
	}
	register("staffTool", authz.StaffOnly())
	register("adminTool", authz.AdminOnly())

	return &testEnv{
		model:       model,
		checkpoints: checkpoints,
		service:     service,
		toolbox:     toolbox,
		sink:        &collectSink{},
		executed:    &executed,
	}
}

func (e *testEnv) run(t *testing.T, threadID, userText string, caller authz.Identity) error {
	t.Helper()
	return e.service.RunTurn(context.Background(), TurnRequest{
		ThreadID: threadID,
		UserText: userText,
		Toolbox:  e.toolbox,
		Caller:   caller,
		Sink:     e.sink,
	})
}

func staffCall(id, label string, sleep int) aisdk.ToolCall {
	return aisdk.ToolCall{
		ID:   id,
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      "staffTool",
			Arguments: json.RawMessage(fmt.Sprintf(`{"label":%q,"sleep":%d}`, label, sleep)),
		},
	}
}

var agentCaller = authz.Identity{UserID: "agent-1", Role: authz.RoleAgent}

func TestRunTurnImmediateAnswer(t *testing.T) {
	env := newTestEnv(t, []scriptStep{assistantStep("All quiet.")})

	require.NoError(t, env.run(t, "thread-1", "anything new?", agentCaller))

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "user", saved[0].Role)
	assert.Equal(t, "anything new?", saved[0].Content)
	assert.Equal(t, "assistant", saved[1].Role)
	assert.Equal(t, "All quiet.", saved[1].Content)

	assert.Len(t, env.sink.byType(EventAssistantMessage), 1)
	assert.Len(t, env.sink.byType(EventTurnComplete), 1)
	assert.Empty(t, env.sink.byType(EventError))
}

func TestRunTurnToolResultsInCallOrder(t *testing.T) {
	env := newTestEnv(t, []scriptStep{
		toolCallStep(
			staffCall("call_1", "first", 60),
			staffCall("call_2", "second", 30),
			staffCall("call_3", "third", 0),
		),
		assistantStep("done"),
	})

	require.NoError(t, env.run(t, "thread-1", "do three things", agentCaller))

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	// user, assistant(tool calls), 3 tool results, assistant
	require.Len(t, saved, 6)

	toolMessages := saved[2:5]
	for i, want := range []string{"call_1", "call_2", "call_3"} {
		assert.Equal(t, "tool", toolMessages[i].Role)
		assert.Equal(t, want, toolMessages[i].ToolCallID)
	}

	// The relay sees the same order.
	events := env.sink.byType(EventToolResult)
	require.Len(t, events, 3)
	for i, want := range []string{"call_1", "call_2", "call_3"} {
		assert.Equal(t, want, events[i].Message.ToolCallID)
	}
}

func TestRunTurnDeniedToolNeverExecutes(t *testing.T) {
	env := newTestEnv(t, []scriptStep{
		toolCallStep(aisdk.ToolCall{
			ID:   "call_1",
			Type: "function",
			Function: aisdk.FunctionCall{
				Name:      "adminTool",
				Arguments: json.RawMessage(`{"label":"forbidden"}`),
			},
		}),
		assistantStep("understood"),
	})

	require.NoError(t, env.run(t, "thread-1", "try the admin tool", agentCaller))

	assert.Empty(t, *env.executed, "denied handler must not run")

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, saved, 4)
	assert.Contains(t, saved[2].Content, `"success":false`)
	assert.Contains(t, saved[2].Content, "unauthorized")
}

func TestRunTurnValidationFailureSkipsExecution(t *testing.T) {
	env := newTestEnv(t, []scriptStep{
		toolCallStep(aisdk.ToolCall{
			ID:   "call_1",
			Type: "function",
			Function: aisdk.FunctionCall{
				Name:      "staffTool",
				Arguments: json.RawMessage(`{}`),
			},
		}),
		assistantStep("noted"),
	})

	require.NoError(t, env.run(t, "thread-1", "call with bad args", agentCaller))

	assert.Empty(t, *env.executed)

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Contains(t, saved[2].Content, "invalid arguments")
}

func TestRunTurnUnknownToolReportedNotFatal(t *testing.T) {
	env := newTestEnv(t, []scriptStep{
		toolCallStep(aisdk.ToolCall{
			ID:   "call_1",
			Type: "function",
			Function: aisdk.FunctionCall{
				Name:      "doesNotExist",
				Arguments: json.RawMessage(`{}`),
			},
		}),
		assistantStep("sorry about that"),
	})

	require.NoError(t, env.run(t, "thread-1", "call something odd", agentCaller))

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, saved, 4)
	assert.Contains(t, saved[2].Content, "unknown tool")
	assert.Equal(t, "sorry about that", saved[3].Content)
}

func TestRunTurnModelErrorLeavesCheckpointUntouched(t *testing.T) {
	env := newTestEnv(t, []scriptStep{assistantStep("first turn done")})
	require.NoError(t, env.run(t, "thread-1", "hello", agentCaller))
	require.Equal(t, 1, env.checkpoints.putCount())

	// Second turn: one round of tools, then the model times out.
	env.model.mu.Lock()
	env.model.script = append(env.model.script,
		toolCallStep(staffCall("call_1", "work", 0)),
		errorStep(errors.New("model backend timeout")),
	)
	env.model.mu.Unlock()

	err := env.run(t, "thread-1", "do more", agentCaller)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model invocation failed")

	// Only the first turn is persisted.
	assert.Equal(t, 1, env.checkpoints.putCount())
	saved, cerr := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, cerr)
	require.Len(t, saved, 2)
	assert.Equal(t, "first turn done", saved[1].Content)

	require.Len(t, env.sink.byType(EventError), 1)
}

func TestRunTurnIterationCap(t *testing.T) {
	// The model keeps requesting tools forever.
	script := []scriptStep{}
	for i := 0; i < 10; i++ {
		script = append(script, toolCallStep(staffCall(fmt.Sprintf("call_%d", i), "loop", 0)))
	}
	env := newTestEnv(t, script, func(o *Options) { o.MaxIterations = 2 })

	require.NoError(t, env.run(t, "thread-1", "loop forever", agentCaller))

	assert.Equal(t, 2, env.model.callCount())

	saved, err := env.checkpoints.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	last := saved[len(saved)-1]
	assert.Equal(t, "assistant", last.Role)
	assert.Contains(t, last.Content, "maximum number of steps")
	assert.Len(t, env.sink.byType(EventTurnComplete), 1)
}

func TestRunTurnIdempotentReplay(t *testing.T) {
	env := newTestEnv(t, []scriptStep{assistantStep("done")})
	require.NoError(t, env.run(t, "thread-1", "hello", agentCaller))
	require.Equal(t, 1, env.model.callCount())
	require.Equal(t, 1, env.checkpoints.putCount())

	// Re-invoking with no new message must not call the model or re-checkpoint.
	require.NoError(t, env.run(t, "thread-1", "", agentCaller))
	assert.Equal(t, 1, env.model.callCount())
	assert.Equal(t, 1, env.checkpoints.putCount())
	assert.Len(t, env.sink.byType(EventTurnComplete), 2)
}

func TestRunTurnRejectsConcurrentTurnOnSameThread(t *testing.T) {
	env := newTestEnv(t, []scriptStep{assistantStep("slow answer")})
	env.model.blockCh = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- env.run(t, "thread-1", "first", agentCaller)
	}()

	// Wait for the first turn to hold the thread.
	require.Eventually(t, func() bool {
		err := env.run(t, "thread-1", "second", agentCaller)
		return errors.Is(err, ErrThreadBusy)
	}, time.Second, 5*time.Millisecond)

	close(env.model.blockCh)
	require.NoError(t, <-firstDone)

	// A different thread is unaffected.
	env.model.mu.Lock()
	env.model.script = append(env.model.script, assistantStep("other thread"))
	env.model.mu.Unlock()
	require.NoError(t, env.run(t, "thread-2", "hi", agentCaller))
}

func TestRunTurnRequiresToolbox(t *testing.T) {
	env := newTestEnv(t, nil)
	err := env.service.RunTurn(context.Background(), TurnRequest{ThreadID: "t", UserText: "x"})
	assert.ErrorIs(t, err, ErrToolboxRequired)
}
