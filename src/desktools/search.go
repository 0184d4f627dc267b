package desktools

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/stackdesk/deskagent/src/agent"
	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/store"
)

const SearchTicketsName = "searchTickets"

// SearchTicketsInput represents the input for searching tickets
type SearchTicketsInput struct {
	Query string `json:"query" required:"true" description:"Text to match against ticket titles"`
	Limit int    `json:"limit,omitempty" description:"Maximum number of results to return (default 10)"`
}

// TicketSummary is one row of a search result.
type TicketSummary struct {
	TicketID string `json:"ticketId"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// SearchResult is the outcome of a ticket search.
type SearchResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Tickets []TicketSummary `json:"tickets,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func makeSearchTicketsHandler(db *sql.DB, logger *slog.Logger) func(context.Context, SearchTicketsInput) (SearchResult, error) {
	return func(ctx context.Context, input SearchTicketsInput) (SearchResult, error) {
		tickets, err := store.SearchTicketsByTitle(ctx, db, input.Query, input.Limit)
		if err != nil {
			logger.Error("ticket search failed", "query", input.Query, "error", err)
			return SearchResult{
				Success: false,
				Message: "Failed to search tickets",
				Error:   err.Error(),
			}, nil
		}

		summaries := make([]TicketSummary, 0, len(tickets))
		for _, t := range tickets {
			summaries = append(summaries, TicketSummary{
				TicketID: t.ID,
				Title:    t.Title,
				Status:   t.Status,
				Priority: t.Priority,
			})
		}

		message := "No matching tickets found"
		if len(summaries) > 0 {
			message = "Tickets found"
		}

		return SearchResult{
			Success: true,
			Message: message,
			Tickets: summaries,
		}, nil
	}
}

// SearchTicketsTool returns the searchTickets tool (staff only).
func SearchTicketsTool(db *sql.DB, logger *slog.Logger) (agent.Tool, error) {
	logger = ensureLogger(logger)
	return agent.NewGenericTool(SearchTicketsName, "Search tickets by title",
		authz.StaffOnly(), makeSearchTicketsHandler(db, logger))
}
