// Package checkpoint persists conversation snapshots keyed by thread ID. The
// agent loop writes a checkpoint only when a turn completes; an in-progress
// turn that fails leaves the previous checkpoint untouched.
package checkpoint

import (
	"context"

	"github.com/stackdesk/deskagent/src/aisdk"
)

// Store is the pluggable checkpoint backend.
type Store interface {
	// Get returns the checkpointed messages for a thread, or nil if the
	// thread has no checkpoint yet.
	Get(ctx context.Context, threadID string) ([]*aisdk.Message, error)

	// Put replaces the thread's checkpoint with the given messages.
	Put(ctx context.Context, threadID string, messages []*aisdk.Message) error
}
