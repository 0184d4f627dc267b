package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stackdesk/deskagent/src/aisdk"
	"github.com/stackdesk/deskagent/src/executor"
)

// Task names tag each streamed record with the loop phase that produced it.
const (
	taskCallModel = "callModel"
	taskCallTool  = "callTool"
)

// streamRecord is one line of the response stream.
type streamRecord struct {
	TaskName string         `json:"taskName"`
	Update   *aisdk.Message `json:"update"`
}

// streamSink relays turn events as newline-delimited JSON, flushing after
// every record so the client sees progress while the loop is still running.
type streamSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	encoder *json.Encoder
}

func newStreamSink(w http.ResponseWriter) *streamSink {
	flusher, _ := w.(http.Flusher)
	return &streamSink{
		w:       w,
		flusher: flusher,
		encoder: json.NewEncoder(w),
	}
}

func (s *streamSink) Send(event executor.Event) error {
	var record streamRecord
	switch event.Type {
	case executor.EventAssistantMessage:
		record = streamRecord{TaskName: taskCallModel, Update: event.Message}
	case executor.EventToolResult:
		record = streamRecord{TaskName: taskCallTool, Update: event.Message}
	default:
		// Completion and error events carry no client-facing record.
		return nil
	}

	if err := s.encoder.Encode(record); err != nil {
		return fmt.Errorf("stream write failed: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

var _ executor.EventSink = (*streamSink)(nil)
