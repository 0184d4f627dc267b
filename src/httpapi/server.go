// Package httpapi exposes the agent over HTTP: one streaming endpoint that
// accepts a user message for a thread and relays the turn's progress as
// newline-delimited JSON records.
package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/stackdesk/deskagent/src/auth"
	"github.com/stackdesk/deskagent/src/executor"
	"github.com/stackdesk/deskagent/src/notify"
)

// Server holds the handler dependencies.
type Server struct {
	db       *sql.DB
	service  *executor.Service
	provider auth.Provider
	notifier notify.Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewServer(db *sql.DB, service *executor.Service, provider auth.Provider, notifier notify.Notifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Server{
		db:       db,
		service:  service,
		provider: provider,
		notifier: notifier,
		logger:   logger.With("component", "httpapi"),
		validate: validator.New(),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/agent", s.handleAgent)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
