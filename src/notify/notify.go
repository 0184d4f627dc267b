// Package notify delivers outbound ticket notifications. Delivery is best
// effort: failures are logged by callers and never fail the originating
// operation.
package notify

import (
	"context"

	"github.com/stackdesk/deskagent/src/store"
)

// Notifier sends notifications about ticket activity.
type Notifier interface {
	TicketCreated(ctx context.Context, ticket *store.Ticket) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) TicketCreated(context.Context, *store.Ticket) error {
	return nil
}

var _ Notifier = NopNotifier{}
