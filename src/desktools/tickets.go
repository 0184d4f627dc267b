package desktools

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/notify"
	"github.com/stackdesk/deskagent/src/store"
)

const (
	CreateTicketName     = "createTicket"
	UpdateTicketName     = "updateTicket"
	AddTicketCommentName = "addTicketComment"
)

// CreateTicketInput represents the input for creating a ticket
type CreateTicketInput struct {
	Title       string `json:"title" required:"true" description:"The title of the ticket"`
	Description string `json:"description" required:"true" description:"Detailed description of the ticket"`
	Priority    string `json:"priority,omitempty" enum:"low,medium,high,urgent" description:"Priority level of the ticket"`
	TeamID      string `json:"team_id,omitempty" description:"ID of the team to assign the ticket to"`
	AssignedTo  string `json:"assigned_to,omitempty" description:"ID of the agent to assign the ticket to"`
}

// UpdateTicketInput represents the input for updating a ticket
type UpdateTicketInput struct {
	TicketID    string `json:"ticketId" required:"true" description:"ID of the ticket to update"`
	Title       string `json:"title,omitempty" description:"New title for the ticket"`
	Description string `json:"description,omitempty" description:"New description for the ticket"`
	Status      string `json:"status,omitempty" enum:"open,in_progress,waiting_on_customer,resolved,closed" description:"New status for the ticket"`
	Priority    string `json:"priority,omitempty" enum:"low,medium,high,urgent" description:"New priority level for the ticket"`
	TeamID      string `json:"team_id,omitempty" description:"New team assignment"`
	AssignedTo  string `json:"assigned_to,omitempty" description:"New agent assignment"`
}

// AddTicketCommentInput represents the input for commenting on a ticket
type AddTicketCommentInput struct {
	TicketID   string `json:"ticketId" required:"true" description:"ID of the ticket to comment on"`
	Content    string `json:"content" required:"true" description:"Content of the comment"`
	IsInternal bool   `json:"isInternal,omitempty" description:"Whether this is an internal note only visible to staff"`
}

func makeCreateTicketHandler(db *sql.DB, notifier notify.Notifier, caller authz.Identity, logger *slog.Logger) func(context.Context, CreateTicketInput) (TicketResult, error) {
	return func(ctx context.Context, input CreateTicketInput) (TicketResult, error) {
		ticket := &store.Ticket{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			CreatedBy:   caller.UserID,
		}
		if input.TeamID != "" {
			ticket.TeamID = &input.TeamID
		}
		if input.AssignedTo != "" {
			ticket.AssignedTo = &input.AssignedTo
		}

		if err := store.CreateTicket(ctx, db, ticket); err != nil {
			logger.Error("failed to create ticket", "error", err)
			return failTicket("Failed to create ticket", err), nil
		}

		if err := notifier.TicketCreated(ctx, ticket); err != nil {
			// Notification delivery is best effort.
			logger.Warn("ticket notification failed", "ticket_id", ticket.ID, "error", err)
		}

		return TicketResult{
			Success:  true,
			Message:  "Ticket created successfully",
			TicketID: ticket.ID,
		}, nil
	}
}

func makeUpdateTicketHandler(db *sql.DB, logger *slog.Logger) func(context.Context, UpdateTicketInput) (TicketResult, error) {
	return func(ctx context.Context, input UpdateTicketInput) (TicketResult, error) {
		patch := store.TicketPatch{}
		if input.Title != "" {
			patch.Title = &input.Title
		}
		if input.Description != "" {
			patch.Description = &input.Description
		}
		if input.Status != "" {
			patch.Status = &input.Status
		}
		if input.Priority != "" {
			patch.Priority = &input.Priority
		}
		if input.TeamID != "" {
			patch.TeamID = &input.TeamID
		}
		if input.AssignedTo != "" {
			patch.AssignedTo = &input.AssignedTo
		}

		rows, err := store.UpdateTicket(ctx, db, input.TicketID, patch)
		if err != nil {
			logger.Error("failed to update ticket", "ticket_id", input.TicketID, "error", err)
			return failTicket("Failed to update ticket", err), nil
		}
		if rows == 0 {
			return failTicket("Ticket not found", nil), nil
		}

		return TicketResult{
			Success:  true,
			Message:  "Ticket updated successfully",
			TicketID: input.TicketID,
		}, nil
	}
}

func makeAddTicketCommentHandler(db *sql.DB, caller authz.Identity, logger *slog.Logger) func(context.Context, AddTicketCommentInput) (BaseResult, error) {
	return func(ctx context.Context, input AddTicketCommentInput) (BaseResult, error) {
		entry := &store.TicketHistory{
			TicketID:   input.TicketID,
			UserID:     caller.UserID,
			Type:       store.HistoryTypeComment,
			Content:    input.Content,
			IsInternal: input.IsInternal,
		}

		if err := store.CreateTicketHistory(ctx, db, entry); err != nil {
			logger.Error("failed to add comment", "ticket_id", input.TicketID, "error", err)
			return failBase("Failed to add comment", err), nil
		}

		return BaseResult{
			Success: true,
			Message: "Comment added successfully",
		}, nil
	}
}

// CreateTicketTool returns the createTicket tool bound to the caller.
func CreateTicketTool(db *sql.DB, notifier notify.Notifier, caller authz.Identity, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(CreateTicketName, "Create a new support ticket",
		authz.StaffOnly(), makeCreateTicketHandler(db, notifier, caller, logger))
}

// UpdateTicketTool returns the updateTicket tool bound to the caller.
func UpdateTicketTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(UpdateTicketName, "Update an existing support ticket",
		authz.TicketScoped(), makeUpdateTicketHandler(db, logger))
}

// AddTicketCommentTool returns the addTicketComment tool bound to the caller.
func AddTicketCommentTool(db *sql.DB, caller authz.Identity, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(AddTicketCommentName, "Add a comment to a ticket optionally marking it as internal",
		authz.TicketScoped(), makeAddTicketCommentHandler(db, caller, logger))
}
