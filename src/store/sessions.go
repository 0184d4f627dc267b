package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// GetSessionByToken retrieves a session by its token, or nil if it does not exist
func GetSessionByToken(ctx context.Context, db sqlscan.Querier, token string) (*Session, error) {
	query := `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`
	var s Session
	err := sqlscan.Get(ctx, db, &s, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a session row
func CreateSession(ctx context.Context, db Execer, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query := `INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	return err
}
