// Package auth resolves bearer tokens to caller identities. Credentials are
// issued elsewhere; this package only answers "who is calling".
package auth

import (
	"context"
	"errors"

	"github.com/stackdesk/deskagent/src/authz"
)

// ErrUnauthenticated is returned when a token is missing, unknown, or expired.
var ErrUnauthenticated = errors.New("unauthenticated")

// Provider maps a session token to the caller it belongs to.
type Provider interface {
	CurrentUser(ctx context.Context, token string) (authz.Identity, error)
}
