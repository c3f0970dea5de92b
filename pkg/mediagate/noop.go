package mediagate

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// RecordPublished does nothing and returns nil
func (n *NoopEventSink) RecordPublished(ctx context.Context, record *MediaRecord) error {
	return nil
}

// AccessGranted does nothing and returns nil
func (n *NoopEventSink) AccessGranted(ctx context.Context, userID int64, code string) error {
	return nil
}

// AccessDenied does nothing and returns nil
func (n *NoopEventSink) AccessDenied(ctx context.Context, userID int64, unmet []SubscriptionTarget) error {
	return nil
}

// DonationReceived does nothing and returns nil
func (n *NoopEventSink) DonationReceived(ctx context.Context, donation *Donation) error {
	return nil
}

// LogEventSink writes one structured log line per event.
type LogEventSink struct{}

// NewLogEventSink creates an event sink backed by the default slog logger
func NewLogEventSink() EventSink {
	return &LogEventSink{}
}

func (l *LogEventSink) RecordPublished(ctx context.Context, record *MediaRecord) error {
	slog.Info("record published", "code", record.Code, "kind", record.Kind, "title", record.Title)
	return nil
}

func (l *LogEventSink) AccessGranted(ctx context.Context, userID int64, code string) error {
	slog.Info("access granted", "user_id", userID, "code", code)
	return nil
}

func (l *LogEventSink) AccessDenied(ctx context.Context, userID int64, unmet []SubscriptionTarget) error {
	slog.Info("access denied", "user_id", userID, "unmet_targets", len(unmet))
	return nil
}

func (l *LogEventSink) DonationReceived(ctx context.Context, donation *Donation) error {
	slog.Info("donation received", "donation_id", donation.ID, "user_id", donation.UserID, "kind", donation.Kind)
	return nil
}
