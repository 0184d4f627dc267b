package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// GetTicketByID retrieves a ticket by its ID, or nil if it does not exist
func GetTicketByID(ctx context.Context, db sqlscan.Querier, ticketID string) (*Ticket, error) {
	query := `SELECT id, title, description, status, priority, team_id, assigned_to, created_by, created_at, updated_at FROM tickets WHERE id = ?`
	var t Ticket
	err := sqlscan.Get(ctx, db, &t, query, ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// CreateTicket creates a new ticket. Status always starts as open.
func CreateTicket(ctx context.Context, db Execer, ticket *Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	ticket.Status = TicketStatusOpen
	if ticket.Priority == "" {
		ticket.Priority = TicketPriorityMedium
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = time.Now()
	}

	query := `INSERT INTO tickets (id, title, description, status, priority, team_id, assigned_to, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, ticket.ID, ticket.Title, ticket.Description, ticket.Status, ticket.Priority, ticket.TeamID, ticket.AssignedTo, ticket.CreatedBy, ticket.CreatedAt, ticket.UpdatedAt)
	return err
}

// UpdateTicket applies a partial update and reports the number of rows changed
func UpdateTicket(ctx context.Context, db Execer, ticketID string, patch TicketPatch) (int64, error) {
	sets := []string{}
	args := []interface{}{}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.TeamID != nil {
		sets = append(sets, "team_id = ?")
		args = append(args, *patch.TeamID)
	}
	if patch.AssignedTo != nil {
		sets = append(sets, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), ticketID)

	query := `UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SearchTicketsByTitle returns tickets whose title contains the query string,
// newest first.
func SearchTicketsByTitle(ctx context.Context, db sqlscan.Querier, titleQuery string, limit int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, title, description, status, priority, team_id, assigned_to, created_by, created_at, updated_at FROM tickets WHERE title LIKE ? ORDER BY created_at DESC LIMIT ?`
	var tickets []Ticket
	err := sqlscan.Select(ctx, db, &tickets, query, "%"+titleQuery+"%", limit)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
