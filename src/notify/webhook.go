package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stackdesk/deskagent/src/store"
)

const webhookTimeout = 10 * time.Second

// WebhookNotifier posts ticket events to a notification webhook, standing in
// for the hosted email-notification function.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: webhookTimeout},
		logger:     logger.With("component", "notify"),
	}
}

type ticketCreatedPayload struct {
	Event    string        `json:"event"`
	TicketID string        `json:"ticket_id"`
	Title    string        `json:"title"`
	Priority string        `json:"priority"`
	Ticket   *store.Ticket `json:"ticket"`
}

func (n *WebhookNotifier) TicketCreated(ctx context.Context, ticket *store.Ticket) error {
	payload := ticketCreatedPayload{
		Event:    "ticket.created",
		TicketID: ticket.ID,
		Title:    ticket.Title,
		Priority: ticket.Priority,
		Ticket:   ticket,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}

	n.logger.Debug("notification delivered", "ticket_id", ticket.ID)
	return nil
}

var _ Notifier = (*WebhookNotifier)(nil)
