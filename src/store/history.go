package store

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// CreateTicketHistory inserts a history entry for a ticket
func CreateTicketHistory(ctx context.Context, db Execer, entry *TicketHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Type == "" {
		entry.Type = HistoryTypeComment
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `INSERT INTO ticket_history (id, ticket_id, user_id, type, content, is_internal, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, entry.ID, entry.TicketID, entry.UserID, entry.Type, entry.Content, entry.IsInternal, entry.CreatedAt)
	return err
}

// GetTicketHistory retrieves all history entries for a ticket ordered by creation time
func GetTicketHistory(ctx context.Context, db sqlscan.Querier, ticketID string) ([]TicketHistory, error) {
	query := `SELECT id, ticket_id, user_id, type, content, is_internal, created_at FROM ticket_history WHERE ticket_id = ? ORDER BY created_at`
	var entries []TicketHistory
	err := sqlscan.Select(ctx, db, &entries, query, ticketID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
