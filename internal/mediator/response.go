package mediator

import "github.com/wesm/tempbox/internal/tempmail"

// Response is the sealed interface for results the worker hands back to the
// UI. Each variant maps to exactly one state mutation.
type Response interface {
	isResponse()
}

func (Domains) isResponse()       {}
func (Emails) isResponse()        {}
func (EmailsMore) isResponse()    {}
func (Email) isResponse()         {}
func (Count) isResponse()         {}
func (EmailsDeleted) isResponse() {}
func (EmailDeleted) isResponse()  {}
func (Attachments) isResponse()   {}

// Domains replaces the known domain list.
type Domains struct {
	Domains []string
}

// Emails replaces the message list.
type Emails struct {
	Emails []tempmail.Email
}

// EmailsMore is appended to the message list.
type EmailsMore struct {
	Emails []tempmail.Email
}

// Email is the message to show in the detail view.
type Email struct {
	Email tempmail.Email
}

// Count is the server-side message total.
type Count struct {
	Count int
}

// EmailsDeleted reports that an inbox was emptied.
type EmailsDeleted struct{}

// EmailDeleted reports that the message at Index was deleted.
type EmailDeleted struct {
	Index int
}

// Attachments is the attachment metadata for the open message.
type Attachments struct {
	Attachments []tempmail.Attachment
}
