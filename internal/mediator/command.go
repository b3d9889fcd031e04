// Package mediator connects the terminal UI to the email API. The UI pushes
// commands onto a queue, a single worker executes them one at a time, and the
// results come back on a reply queue the UI polls without blocking.
package mediator

import "fmt"

// Command is the sealed interface for work the UI asks the worker to do.
type Command interface {
	// Op names the operation for logs and failure reports.
	Op() string

	// isCommand seals the interface to prevent external implementations.
	isCommand()
}

func (FetchDomains) isCommand()    {}
func (FetchEmails) isCommand()     {}
func (FetchMoreEmails) isCommand() {}
func (FetchEmail) isCommand()      {}
func (CountEmails) isCommand()     {}
func (DeleteEmail) isCommand()     {}
func (DeleteAllEmails) isCommand() {}
func (GetAttachments) isCommand()  {}

// FetchDomains lists the domains addresses can be created under.
type FetchDomains struct{}

// FetchEmails loads the first page of an inbox, replacing the current list.
type FetchEmails struct {
	Address string
}

// FetchMoreEmails loads the page after page counter Offset and appends it.
// Offset is a zero-based counter of "load more" requests, not a row offset.
type FetchMoreEmails struct {
	Address string
	Offset  int
}

// FetchEmail loads one message with its body.
type FetchEmail struct {
	ID string
}

// CountEmails asks for the server-side message total of an inbox.
type CountEmails struct {
	Address string
}

// DeleteEmail removes a message. Index is its position in the list the UI
// showed when the command was issued.
type DeleteEmail struct {
	ID    string
	Index int
}

// DeleteAllEmails empties an inbox.
type DeleteAllEmails struct {
	Address string
}

// GetAttachments loads attachment metadata for a message.
type GetAttachments struct {
	ID string
}

func (FetchDomains) Op() string    { return "fetch_domains" }
func (FetchEmails) Op() string     { return "fetch_emails" }
func (FetchMoreEmails) Op() string { return "fetch_more_emails" }
func (FetchEmail) Op() string      { return "fetch_email" }
func (CountEmails) Op() string     { return "count_emails" }
func (DeleteEmail) Op() string     { return "delete_email" }
func (DeleteAllEmails) Op() string { return "delete_all_emails" }
func (GetAttachments) Op() string  { return "get_attachments" }

// RequestID correlates a command with its reply or failure.
type RequestID uint64

func (id RequestID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Request is a command as it travels on the command queue.
type Request struct {
	ID      RequestID
	Command Command
}

// Reply is a successful result as it travels on the reply queue.
type Reply struct {
	ID       RequestID
	Response Response
}

// Failure reports that a request produced no response.
type Failure struct {
	ID  RequestID
	Op  string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.ID, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
