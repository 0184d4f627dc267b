// Package executor runs agent turns: it alternates model invocations with
// authorized tool execution until the model stops requesting tools, then
// checkpoints the conversation.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/aisdk"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/checkpoint"
)

const defaultMaxIterations = 8

// Service drives the agent loop. One Service is shared across sessions; the
// per-session pieces (toolbox, caller) arrive with each turn.
type Service struct {
	model         aisdk.ModelClient
	checkpoints   checkpoint.Store
	gate          *authz.Gate
	logger        *slog.Logger
	systemPrompt  string
	maxIterations int

	mu     sync.Mutex
	active map[string]struct{}
}

// Options configures a Service.
type Options struct {
	Model        aisdk.ModelClient
	Checkpoints  checkpoint.Store
	Gate         *authz.Gate
	Logger       *slog.Logger
	SystemPrompt string
	// MaxIterations caps model round-trips per turn. Zero means the default.
	MaxIterations int
}

func NewService(opts Options) (*Service, error) {
	if opts.Model == nil {
		return nil, ErrModelClientRequired
	}
	if opts.Checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if opts.Gate == nil {
		return nil, fmt.Errorf("authorization gate is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &Service{
		model:         opts.Model,
		checkpoints:   opts.Checkpoints,
		gate:          opts.Gate,
		logger:        logger.With("component", "executor"),
		systemPrompt:  opts.SystemPrompt,
		maxIterations: maxIterations,
		active:        make(map[string]struct{}),
	}, nil
}

// TurnRequest is one user message addressed to a thread.
type TurnRequest struct {
	ThreadID string
	UserText string
	Toolbox  *agent.Toolbox
	Caller   authz.Identity
	Sink     EventSink
}

// RunTurn executes a full turn on the thread: resume the checkpointed
// conversation, append the user message, and loop model calls against tool
// execution until the model answers without tool calls. The conversation is
// checkpointed only when the turn completes; a model failure mid-turn leaves
// the previous checkpoint in place.
//
// Only one turn may run per thread at a time; a concurrent turn on the same
// thread is rejected with ErrThreadBusy.
func (s *Service) RunTurn(ctx context.Context, req TurnRequest) error {
	if req.Toolbox == nil {
		return ErrToolboxRequired
	}

	if !s.acquire(req.ThreadID) {
		return ErrThreadBusy
	}
	defer s.release(req.ThreadID)

	emit := newEmitter(req.Sink)

	prior, err := s.checkpoints.Get(ctx, req.ThreadID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	// Re-running a completed thread with no new message is a no-op.
	if req.UserText == "" && turnComplete(prior) {
		emit.send(Event{Type: EventTurnComplete, ThreadID: req.ThreadID})
		return nil
	}

	conversation := make([]*aisdk.Message, 0, len(prior)+2)
	conversation = append(conversation, prior...)
	if req.UserText != "" {
		conversation = append(conversation, &aisdk.Message{Role: "user", Content: req.UserText})
	}

	tools := agent.ToChatTools(req.Toolbox.Tools())

	for iteration := 0; ; iteration++ {
		if iteration >= s.maxIterations {
			truncated := &aisdk.Message{
				Role:    "assistant",
				Content: "The conversation was stopped after reaching the maximum number of steps. Please send a new message to continue.",
			}
			conversation = append(conversation, truncated)
			emit.send(Event{Type: EventAssistantMessage, ThreadID: req.ThreadID, Message: truncated})
			s.logger.Warn("iteration cap reached", "thread_id", req.ThreadID, "iterations", iteration)
			return s.finish(ctx, req.ThreadID, conversation, emit)
		}

		assistant, err := s.callModel(ctx, conversation, tools)
		if err != nil {
			s.logger.Error("model invocation failed", "thread_id", req.ThreadID, "error", err)
			emit.send(Event{Type: EventError, ThreadID: req.ThreadID, Err: err.Error()})
			return fmt.Errorf("model invocation failed: %w", err)
		}

		conversation = append(conversation, assistant)
		emit.send(Event{Type: EventAssistantMessage, ThreadID: req.ThreadID, Message: assistant})

		if len(assistant.ToolCalls) == 0 {
			return s.finish(ctx, req.ThreadID, conversation, emit)
		}

		results := s.executeToolCalls(ctx, req.Toolbox, req.Caller, assistant.ToolCalls)
		for _, result := range results {
			conversation = append(conversation, result)
			emit.send(Event{Type: EventToolResult, ThreadID: req.ThreadID, Message: result})
		}
	}
}

func (s *Service) acquire(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[threadID]; busy {
		return false
	}
	s.active[threadID] = struct{}{}
	return true
}

func (s *Service) release(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, threadID)
}

// turnComplete reports whether the checkpointed conversation already ends in
// a final assistant answer.
func turnComplete(messages []*aisdk.Message) bool {
	if len(messages) == 0 {
		return false
	}
	last := messages[len(messages)-1]
	return last.Role == "assistant" && len(last.ToolCalls) == 0
}

func (s *Service) callModel(ctx context.Context, conversation []*aisdk.Message, tools []*aisdk.ChatTool) (*aisdk.Message, error) {
	messages := make([]*aisdk.Message, 0, len(conversation)+1)
	if s.systemPrompt != "" {
		messages = append(messages, &aisdk.Message{Role: "system", Content: s.systemPrompt})
	}
	messages = append(messages, conversation...)

	resp, err := s.model.CreateChatCompletion(ctx, &aisdk.ChatCompletionRequest{
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	choice := resp.Choices[0].Message
	return &aisdk.Message{
		Role:      "assistant",
		Content:   choice.Content,
		ToolCalls: choice.ToolCalls,
	}, nil
}

// executeToolCalls fans sibling calls out concurrently and merges the results
// back in call order. Every outcome becomes a tool message; validation
// failures, denials, and backend errors are reported to the model as failed
// results rather than aborting the turn.
func (s *Service) executeToolCalls(ctx context.Context, toolbox *agent.Toolbox, caller authz.Identity, calls []aisdk.ToolCall) []*aisdk.Message {
	results := make([]*aisdk.Message, len(calls))

	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			call := &calls[idx]
			results[idx] = &aisdk.Message{
				Role:       "tool",
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    s.executeToolCall(ctx, toolbox, caller, call),
			}
		}(i)
	}
	wg.Wait()

	return results
}

func (s *Service) executeToolCall(ctx context.Context, toolbox *agent.Toolbox, caller authz.Identity, call *aisdk.ToolCall) string {
	tool, ok := toolbox.GetTool(call.Function.Name)
	if !ok {
		return failedResult(fmt.Sprintf("unknown tool: %s", call.Function.Name))
	}

	if err := tool.ValidateArguments(call.Function.Arguments); err != nil {
		return failedResult("invalid arguments: " + err.Error())
	}

	decision, err := s.gate.Authorize(ctx, caller, tool.Requirement(), call.Function.Arguments)
	if err != nil {
		s.logger.Error("authorization check failed", "tool", call.Function.Name, "error", err)
		return failedResult("authorization check failed")
	}
	if !decision.Allowed {
		s.logger.Info("tool call denied", "tool", call.Function.Name, "user_id", caller.UserID, "reason", decision.Reason)
		return failedResult(decision.Reason)
	}

	response, err := toolbox.ExecuteTool(ctx, call)
	if err != nil {
		s.logger.Error("tool execution failed", "tool", call.Function.Name, "error", err)
		return failedResult("tool execution failed: " + err.Error())
	}

	return string(response.Content)
}

// failedResult encodes a failure in the same result shape tools return, so
// the model sees one uniform structure.
func failedResult(message string) string {
	out, err := json.Marshal(map[string]any{
		"success": false,
		"message": message,
	})
	if err != nil {
		return `{"success":false,"message":"internal error"}`
	}
	return string(out)
}

func (s *Service) finish(ctx context.Context, threadID string, conversation []*aisdk.Message, emit *emitter) error {
	if err := s.checkpoints.Put(ctx, threadID, conversation); err != nil {
		emit.send(Event{Type: EventError, ThreadID: threadID, Err: "failed to persist conversation"})
		return fmt.Errorf("failed to checkpoint thread %s: %w", threadID, err)
	}
	emit.send(Event{Type: EventTurnComplete, ThreadID: threadID})
	s.logger.Debug("turn complete", "thread_id", threadID, "messages", len(conversation))
	return nil
}
