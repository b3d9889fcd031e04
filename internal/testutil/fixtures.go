package testutil

import (
	"fmt"

	"github.com/wesm/tempbox/internal/tempmail"
)

// fixtureEpoch is the receive time of the first generated fixture message.
const fixtureEpoch = 1767225600 // 2026-01-01T00:00:00Z

// NewEmail returns a message summary addressed to to.
func NewEmail(id, to, subject string) tempmail.Email {
	return tempmail.Email{
		ID:          id,
		FromAddress: "sender@example.com",
		ToAddress:   to,
		Subject:     subject,
		ReceivedAt:  fixtureEpoch,
		TextContent: "Body of " + subject,
	}
}

// Emails returns n messages with IDs prefix-0 through prefix-(n-1), newest first.
func Emails(to, prefix string, n int) []tempmail.Email {
	emails := make([]tempmail.Email, n)
	for i := range emails {
		e := NewEmail(fmt.Sprintf("%s-%d", prefix, i), to, fmt.Sprintf("Message %d", i))
		e.ReceivedAt = fixtureEpoch + int64(n-i)*60
		emails[i] = e
	}
	return emails
}

// EmailIDs returns the IDs of emails in order.
func EmailIDs(emails []tempmail.Email) []string {
	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}
	return ids
}

// NewAttachment returns attachment metadata for emailID.
func NewAttachment(id, emailID, filename string) tempmail.Attachment {
	return tempmail.Attachment{
		ID:       id,
		EmailID:  emailID,
		Filename: filename,
		Size:     1024,
	}
}
