// Package session holds the UI-side state of a mailbox session and the
// bookkeeping that ties outstanding requests to their replies.
//
// A Session is owned by one goroutine (the UI loop). It never blocks: requests
// are pushed onto the command queue and results are collected by PollOnce.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/tempmail"
)

var (
	// ErrIndexOutOfRange is returned when a deletion names a list position
	// that does not exist.
	ErrIndexOutOfRange = errors.New("email index out of range")

	// ErrStaleIndex is returned when the message at a deletion's list position
	// is no longer the one that was deleted.
	ErrStaleIndex = errors.New("email list changed before deletion completed")
)

// Mode is what the UI should render.
type Mode int

const (
	// ModeList shows the message list.
	ModeList Mode = iota
	// ModeDetail shows the open message.
	ModeDetail
	// ModeBusy shows a progress indicator while requests are outstanding.
	ModeBusy
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeDetail:
		return "detail"
	case ModeBusy:
		return "busy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures a Session.
type Options struct {
	Name              string
	Domain            string
	AttachmentBaseURL string

	Commands *mediator.Queue[mediator.Request]
	Replies  *mediator.Queue[mediator.Reply]
	Failures *mediator.Queue[mediator.Failure]

	Logger *slog.Logger
}

// Session is the application state driven by the UI.
type Session struct {
	name    string
	domain  string
	attBase string

	domains     []string
	emails      []tempmail.Email
	viewed      *tempmail.Email
	attachments []tempmail.Attachment
	hasAtts     bool
	images      []ImageRef

	emailCount    int
	currentOffset int

	nextID  mediator.RequestID
	pending map[mediator.RequestID]mediator.Command
	lastErr string

	commands *mediator.Queue[mediator.Request]
	replies  *mediator.Queue[mediator.Reply]
	failures *mediator.Queue[mediator.Failure]
	logger   *slog.Logger
}

// New creates a session. Nothing is requested until Start or a Request call.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		name:     opts.Name,
		domain:   opts.Domain,
		attBase:  opts.AttachmentBaseURL,
		pending:  make(map[mediator.RequestID]mediator.Command),
		commands: opts.Commands,
		replies:  opts.Replies,
		failures: opts.Failures,
		logger:   logger,
	}
}

// Start requests the initial list, count, and domains for the current address.
func (s *Session) Start() error {
	addr := s.Address()
	return errors.Join(
		s.RequestList(addr),
		s.RequestCount(addr),
		s.RequestDomains(),
	)
}

// enqueue pushes cmd and records it as pending.
func (s *Session) enqueue(cmd mediator.Command) error {
	s.nextID++
	id := s.nextID
	if err := s.commands.Push(mediator.Request{ID: id, Command: cmd}); err != nil {
		s.lastErr = fmt.Sprintf("%s: %v", cmd.Op(), err)
		return fmt.Errorf("enqueue %s: %w", cmd.Op(), err)
	}
	s.pending[id] = cmd
	s.logger.Debug("request queued", "op", cmd.Op(), "id", uint64(id))
	return nil
}

// RequestDomains asks for the domain list.
func (s *Session) RequestDomains() error {
	return s.enqueue(mediator.FetchDomains{})
}

// RequestList asks for the first page of address and resets pagination.
func (s *Session) RequestList(address string) error {
	s.currentOffset = 0
	return s.enqueue(mediator.FetchEmails{Address: address})
}

// RequestMore asks for the next page of address.
func (s *Session) RequestMore(address string) error {
	if err := s.enqueue(mediator.FetchMoreEmails{Address: address, Offset: s.currentOffset}); err != nil {
		return err
	}
	s.currentOffset++
	return nil
}

// RequestDetail asks for the full message id.
func (s *Session) RequestDetail(id string) error {
	return s.enqueue(mediator.FetchEmail{ID: id})
}

// RequestCount asks for the message total of address.
func (s *Session) RequestCount(address string) error {
	return s.enqueue(mediator.CountEmails{Address: address})
}

// RequestDelete asks to delete message id, shown at list position index.
func (s *Session) RequestDelete(id string, index int) error {
	return s.enqueue(mediator.DeleteEmail{ID: id, Index: index})
}

// RequestDeleteAll asks to empty address and then reloads its list.
func (s *Session) RequestDeleteAll(address string) error {
	if err := s.enqueue(mediator.DeleteAllEmails{Address: address}); err != nil {
		return err
	}
	return s.RequestList(address)
}

// RequestAttachments asks for the attachment metadata of message id.
func (s *Session) RequestAttachments(id string) error {
	return s.enqueue(mediator.GetAttachments{ID: id})
}

// PollOnce takes at most one result off the queues without blocking and
// applies it. A reply is preferred over a failure. It reports whether a result
// was consumed. The returned error describes a reply that could not be applied;
// failures are recorded in LastError instead.
func (s *Session) PollOnce() (bool, error) {
	if r, ok := s.replies.TryPop(); ok {
		cmd := s.pending[r.ID]
		delete(s.pending, r.ID)
		if err := s.apply(r.Response, cmd); err != nil {
			s.lastErr = err.Error()
			s.logger.Warn("reply not applied", "id", uint64(r.ID), "error", err)
			return true, err
		}
		return true, nil
	}

	if s.failures == nil {
		return false, nil
	}
	if f, ok := s.failures.TryPop(); ok {
		delete(s.pending, f.ID)
		s.lastErr = f.Error()
		return true, nil
	}
	return false, nil
}

// Apply performs the state mutation for resp.
func (s *Session) Apply(resp mediator.Response) error {
	return s.apply(resp, nil)
}

// apply performs the state mutation for resp. cmd is the request resp answers,
// if known.
func (s *Session) apply(resp mediator.Response, cmd mediator.Command) error {
	switch r := resp.(type) {
	case mediator.Domains:
		s.domains = r.Domains
	case mediator.Emails:
		s.emails = r.Emails
	case mediator.EmailsMore:
		s.emails = append(s.emails, r.Emails...)
	case mediator.Email:
		email := r.Email
		s.viewed = &email
		s.attachments = nil
		s.hasAtts = false
	case mediator.Count:
		s.emailCount = r.Count
	case mediator.EmailsDeleted:
		s.emails = nil
		s.emailCount = 0
	case mediator.EmailDeleted:
		return s.removeAt(r.Index, cmd)
	case mediator.Attachments:
		s.attachments = r.Attachments
		s.hasAtts = true
	default:
		return fmt.Errorf("unknown response %T", resp)
	}
	return nil
}

func (s *Session) removeAt(index int, cmd mediator.Command) error {
	if index < 0 || index >= len(s.emails) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.emails))
	}
	if del, ok := cmd.(mediator.DeleteEmail); ok && s.emails[index].ID != del.ID {
		return fmt.Errorf("%w: position %d holds %s, not %s", ErrStaleIndex, index, s.emails[index].ID, del.ID)
	}
	s.emails = append(s.emails[:index:index], s.emails[index+1:]...)
	if s.emailCount > 0 {
		s.emailCount--
	}
	return nil
}

// Mode returns what the UI should render.
func (s *Session) Mode() Mode {
	switch {
	case s.Busy():
		return ModeBusy
	case s.viewed != nil:
		return ModeDetail
	default:
		return ModeList
	}
}

// Busy reports whether any request is outstanding.
func (s *Session) Busy() bool {
	return len(s.pending) > 0
}

// Pending returns the number of outstanding requests.
func (s *Session) Pending() int {
	return len(s.pending)
}

// CloseDetail leaves the detail view.
func (s *Session) CloseDetail() {
	s.viewed = nil
	s.attachments = nil
	s.hasAtts = false
}

// CanFetchMore reports whether the server holds messages not yet listed.
func (s *Session) CanFetchMore() bool {
	return s.emailCount > len(s.emails)
}

// Address returns the current mailbox address.
func (s *Session) Address() string {
	return s.name + "@" + s.domain
}

// Name returns the local part of the address.
func (s *Session) Name() string { return s.name }

// Domain returns the domain of the address.
func (s *Session) Domain() string { return s.domain }

// Domains returns the known domains.
func (s *Session) Domains() []string { return s.domains }

// Emails returns the listed messages. The slice must not be modified.
func (s *Session) Emails() []tempmail.Email { return s.emails }

// Viewed returns the open message, or nil.
func (s *Session) Viewed() *tempmail.Email { return s.viewed }

// Attachments returns the attachments of the open message and whether they
// have been fetched.
func (s *Session) Attachments() ([]tempmail.Attachment, bool) {
	return s.attachments, s.hasAtts
}

// EmailCount returns the last server-side message total.
func (s *Session) EmailCount() int { return s.emailCount }

// CurrentOffset returns the page counter the next RequestMore will send.
func (s *Session) CurrentOffset() int { return s.currentOffset }

// LastError returns the most recent failure message, or "".
func (s *Session) LastError() string { return s.lastErr }

// ClearError dismisses the last failure message.
func (s *Session) ClearError() { s.lastErr = "" }
