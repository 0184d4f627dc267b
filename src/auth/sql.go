package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/stackdesk/deskagent/src/authz"
	"github.com/stackdesk/deskagent/src/store"
)

// SQLProvider resolves sessions against the sessions and profiles tables.
type SQLProvider struct {
	db store.ExecQuerier
}

func NewSQLProvider(db store.ExecQuerier) *SQLProvider {
	return &SQLProvider{db: db}
}

func (p *SQLProvider) CurrentUser(ctx context.Context, token string) (authz.Identity, error) {
	if token == "" {
		return authz.Identity{}, ErrUnauthenticated
	}

	session, err := store.GetSessionByToken(ctx, p.db, token)
	if err != nil {
		return authz.Identity{}, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || time.Now().After(session.ExpiresAt) {
		return authz.Identity{}, ErrUnauthenticated
	}

	profile, err := store.GetProfileByID(ctx, p.db, session.UserID)
	if err != nil {
		return authz.Identity{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return authz.Identity{}, ErrUnauthenticated
	}

	return authz.Identity{
		UserID: profile.ID,
		Role:   authz.Role(profile.Role),
	}, nil
}

var _ Provider = (*SQLProvider)(nil)
