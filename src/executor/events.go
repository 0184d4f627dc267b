package executor

import "github.com/stackdesk/deskagent/src/aisdk"

// EventType identifies the kind of progress event emitted during a turn.
type EventType string

const (
	// EventAssistantMessage is emitted after each model response, whether it
	// carries tool calls or a final answer.
	EventAssistantMessage EventType = "assistant_message"

	// EventToolResult is emitted once per tool call, in call order.
	EventToolResult EventType = "tool_result"

	// EventTurnComplete is emitted once the turn has been checkpointed.
	EventTurnComplete EventType = "turn_complete"

	// EventError is emitted when the turn aborts on a model failure.
	EventError EventType = "error"
)

// Event is a single progress update from a running turn.
type Event struct {
	Type     EventType      `json:"type"`
	ThreadID string         `json:"thread_id"`
	Message  *aisdk.Message `json:"message,omitempty"`
	Err      string         `json:"error,omitempty"`
}

// EventSink receives events as the turn progresses. A Send error means the
// consumer is gone; the turn keeps running and further sends are skipped.
type EventSink interface {
	Send(event Event) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Send(Event) error { return nil }

// emitter wraps a sink and goes quiet after the first send failure so a
// disconnected consumer never aborts the turn.
type emitter struct {
	sink EventSink
	dead bool
}

func newEmitter(sink EventSink) *emitter {
	if sink == nil {
		sink = NopSink{}
	}
	return &emitter{sink: sink}
}

func (e *emitter) send(event Event) {
	if e.dead {
		return
	}
	if err := e.sink.Send(event); err != nil {
		e.dead = true
	}
}
