package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/stackdesk/deskagent/src/aisdk"
)

// SQLStore stores checkpoints in the threads and thread_messages tables.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// threadMessage is the row shape for one checkpointed message.
type threadMessage struct {
	ID         string    `db:"id"`
	ThreadID   string    `db:"thread_id"`
	Seq        int       `db:"seq"`
	Role       string    `db:"role"`
	Content    string    `db:"content"`
	Name       *string   `db:"name"`
	ToolCallID *string   `db:"tool_call_id"`
	ToolCalls  *string   `db:"tool_calls"`
	CreatedAt  time.Time `db:"created_at"`
}

// Get returns the checkpointed messages for a thread ordered by sequence, or
// nil if the thread has no checkpoint.
func (s *SQLStore) Get(ctx context.Context, threadID string) ([]*aisdk.Message, error) {
	query := `SELECT id, thread_id, seq, role, content, name, tool_call_id, tool_calls, created_at FROM thread_messages WHERE thread_id = ? ORDER BY seq`
	var rows []threadMessage
	if err := sqlscan.Select(ctx, s.db, &rows, query, threadID); err != nil {
		return nil, fmt.Errorf("failed to load thread messages: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	messages := make([]*aisdk.Message, 0, len(rows))
	for _, row := range rows {
		msg := &aisdk.Message{
			Role:    row.Role,
			Content: row.Content,
		}
		if row.Name != nil {
			msg.Name = *row.Name
		}
		if row.ToolCallID != nil {
			msg.ToolCallID = *row.ToolCallID
		}
		if row.ToolCalls != nil && *row.ToolCalls != "" {
			if err := json.Unmarshal([]byte(*row.ToolCalls), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls for message %s: %w", row.ID, err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Put replaces the thread's checkpoint in a single transaction.
func (s *SQLStore) Put(ctx context.Context, threadID string, messages []*aisdk.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO threads (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		threadID, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert thread: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM thread_messages WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("failed to clear thread messages: %w", err)
	}

	for seq, msg := range messages {
		var toolCalls *string
		if len(msg.ToolCalls) > 0 {
			encoded, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("failed to encode tool calls: %w", err)
			}
			str := string(encoded)
			toolCalls = &str
		}
		var name, toolCallID *string
		if msg.Name != "" {
			name = &msg.Name
		}
		if msg.ToolCallID != "" {
			toolCallID = &msg.ToolCallID
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO thread_messages (id, thread_id, seq, role, content, name, tool_call_id, tool_calls, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), threadID, seq, msg.Role, msg.Content, name, toolCallID, toolCalls, now)
		if err != nil {
			return fmt.Errorf("failed to insert thread message: %w", err)
		}
	}

	return tx.Commit()
}

var _ Store = (*SQLStore)(nil)
