package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stackdesk/deskagent/src/auth"
	"github.com/stackdesk/deskagent/src/desktools"
	"github.com/stackdesk/deskagent/src/executor"
)

// agentRequest is the body of POST /api/agent.
type agentRequest struct {
	Message  string `json:"message" validate:"required"`
	ThreadID string `json:"threadId" validate:"required"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	caller, err := s.provider.CurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.logger.Error("failed to resolve caller", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !caller.Role.IsStaff() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req agentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		http.Error(w, "message and threadId are required", http.StatusBadRequest)
		return
	}

	toolbox, err := desktools.NewToolbox(s.db, s.notifier, caller, s.logger)
	if err != nil {
		s.logger.Error("failed to build toolbox", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	sink := newStreamSink(w)

	// The turn must survive a client disconnect: side effects and the final
	// checkpoint happen regardless, only the relay writes become no-ops.
	turnCtx := context.WithoutCancel(r.Context())

	err = s.service.RunTurn(turnCtx, executor.TurnRequest{
		ThreadID: req.ThreadID,
		UserText: req.Message,
		Toolbox:  toolbox,
		Caller:   caller,
		Sink:     sink,
	})
	if err != nil {
		if errors.Is(err, executor.ErrThreadBusy) {
			s.logger.Info("rejected concurrent turn", "thread_id", req.ThreadID)
		} else {
			s.logger.Error("turn failed", "thread_id", req.ThreadID, "error", err)
		}
		// Headers are already out; abort the connection so the client sees a
		// stream error instead of a truncated-but-clean body.
		panic(http.ErrAbortHandler)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}
