package ports

import "context"

// Notifier is the outbound notification collaborator. Delivery is
// fire-and-forget: failures are logged by callers and never surface to the
// request that triggered the notification.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}
