package desktools

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/notify"
)

// NewToolbox builds a toolbox with the full tool set bound to the caller.
func NewToolbox(db *sql.DB, notifier notify.Notifier, caller authz.Identity, logger *slog.Logger) (*agent.Toolbox, error) {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	toolbox := agent.NewToolbox()
	toolbox.RegisterMiddleware(agent.LoggingMiddleware(logger))

	builders := []func() (agent.Tool, error){
		func() (agent.Tool, error) { return CreateTicketTool(db, notifier, caller, logger) },
		func() (agent.Tool, error) { return UpdateTicketTool(db, logger) },
		func() (agent.Tool, error) { return AddTicketCommentTool(db, caller, logger) },
		func() (agent.Tool, error) { return SearchTicketsTool(db, logger) },
		func() (agent.Tool, error) { return CreateUserTool(db, logger) },
		func() (agent.Tool, error) { return UpdateUserTool(db, logger) },
		func() (agent.Tool, error) { return CreateTeamTool(db, logger) },
		func() (agent.Tool, error) { return UpdateTeamTool(db, logger) },
		func() (agent.Tool, error) { return AddTeamMemberTool(db, logger) },
		func() (agent.Tool, error) { return RemoveTeamMemberTool(db, logger) },
	}

	for _, build := range builders {
		tool, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to build tool: %w", err)
		}
		if err := toolbox.RegisterTool(tool); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", tool.GetName(), err)
		}
	}

	return toolbox, nil
}
