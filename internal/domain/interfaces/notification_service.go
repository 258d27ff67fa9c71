package interfaces

import "context"

// NotificationService defines the interface for sending notifications to
// users. Delivery is fire-and-forget from the auth core's perspective: a
// failure is logged by the implementation and never rolls back the operation
// that triggered it.
type NotificationService interface {
	// SendVerificationEmail delivers the email-confirmation token to the user.
	SendVerificationEmail(ctx context.Context, email, username, token string) error
}
