package services

import "context"

// Mailer delivers outbound account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, resetURL string) error
}

// EventTracker records product analytics events. Implementations must not block the caller.
type EventTracker interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}
