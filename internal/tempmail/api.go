// Package tempmail provides a client for Barid-compatible disposable-email APIs.
package tempmail

import "context"

// MailboxAPI provides operations scoped to a single mailbox address.
type MailboxAPI interface {
	// Address returns the mailbox address this client is bound to.
	Address() string

	// Emails returns up to limit message summaries starting at offset.
	Emails(ctx context.Context, limit, offset int) ([]Email, error)

	// Count returns the total number of messages in the mailbox.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every message in the mailbox and returns how many were deleted.
	DeleteAll(ctx context.Context) (int, error)
}

// API defines the operations the email service exposes.
// This interface enables mocking for tests without hitting the real API.
type API interface {
	// Domains returns the domains addresses can be created under.
	Domains(ctx context.Context) ([]string, error)

	// Email returns a single message including its body.
	Email(ctx context.Context, id string) (*Email, error)

	// DeleteEmail removes a single message.
	DeleteEmail(ctx context.Context, id string) error

	// Attachments returns attachment metadata for a message.
	Attachments(ctx context.Context, emailID string) ([]Attachment, error)

	// Mailbox returns a client scoped to address. It fails only when the
	// address is malformed.
	Mailbox(address string) (MailboxAPI, error)
}
