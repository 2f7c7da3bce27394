// Package notify delivers operator alerts. Alerts are fanned out to every
// configured channel (Telegram, Discord) and filtered by event type so
// operators only hear about the conditions they subscribed to.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event types raised by the ingestion pipeline.
const (
	EventSystemicOutage = "systemic_outage"
	EventStoreError     = "store_error"
	EventArchiveError   = "archive_error"
)

// Sender is a single delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel, e.g. "telegram".
	Name() string
}

// Notifier fans notifications out to all senders. Only events whose type is
// in the configured allow list are forwarded; an empty list allows all.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers to all senders if the event type passes the filter.
// Delivery failures are logged per channel; the first failure is returned
// after all channels have been attempted.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}

	var firstErr error
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "notification delivery failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("notify: %s: %w", s.Name(), err)
			}
		}
	}
	return firstErr
}
