package tempmail

import (
	"context"
	"fmt"
	"sync"
)

// Mock operation names used for error injection and call tracking.
const (
	OpDomains     = "domains"
	OpEmails      = "emails"
	OpEmail       = "email"
	OpCount       = "count"
	OpDelete      = "delete"
	OpDeleteAll   = "delete_all"
	OpAttachments = "attachments"
)

// MockAPI is an in-memory implementation of API for testing.
type MockAPI struct {
	mu sync.Mutex

	// DomainList is returned by Domains.
	DomainList []string

	// Inboxes maps an address to its messages in display order.
	Inboxes map[string][]Email

	// Details maps a message ID to its full content. Messages missing here
	// are served from Inboxes.
	Details map[string]*Email

	// AttachmentMap maps a message ID to its attachments.
	AttachmentMap map[string][]Attachment

	// Errors injects a failure for an operation (keyed by the Op* constants).
	Errors map[string]error

	// BeforeCall, when set, runs before every operation without the mock's
	// lock held. Tests use it to block or observe calls.
	BeforeCall func(op, arg string)

	// Calls records each operation as "op:arg" in call order.
	Calls []string
}

// NewMockAPI creates a new mock API with empty state.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Inboxes:       make(map[string][]Email),
		Details:       make(map[string]*Email),
		AttachmentMap: make(map[string][]Attachment),
		Errors:        make(map[string]error),
	}
}

// AddEmails appends messages to an address's inbox.
func (m *MockAPI) AddEmails(address string, emails ...Email) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inboxes[address] = append(m.Inboxes[address], emails...)
}

// SetError injects err for op. A nil err clears the injection.
func (m *MockAPI) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errors, op)
		return
	}
	m.Errors[op] = err
}

// CallLog returns a copy of the recorded calls.
func (m *MockAPI) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// begin runs the hook, records the call, and returns any injected error.
// The caller must not hold m.mu; on return m.mu is held.
func (m *MockAPI) begin(op, arg string) error {
	m.mu.Lock()
	hook := m.BeforeCall
	m.mu.Unlock()
	if hook != nil {
		hook(op, arg)
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, op+":"+arg)
	return m.Errors[op]
}

// Domains returns the mock domain list.
func (m *MockAPI) Domains(ctx context.Context) ([]string, error) {
	err := m.begin(OpDomains, "")
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), m.DomainList...), nil
}

// Email returns a message by ID.
func (m *MockAPI) Email(ctx context.Context, id string) (*Email, error) {
	err := m.begin(OpEmail, id)
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if e, ok := m.Details[id]; ok {
		cp := *e
		return &cp, nil
	}
	for _, inbox := range m.Inboxes {
		for _, e := range inbox {
			if e.ID == id {
				return &e, nil
			}
		}
	}
	return nil, &NotFoundError{Path: "/inbox/" + id}
}

// DeleteEmail removes a message from whichever inbox holds it.
func (m *MockAPI) DeleteEmail(ctx context.Context, id string) error {
	err := m.begin(OpDelete, id)
	defer m.mu.Unlock()
	if err != nil {
		return err
	}
	found := false
	for addr, inbox := range m.Inboxes {
		for i, e := range inbox {
			if e.ID == id {
				m.Inboxes[addr] = append(inbox[:i:i], inbox[i+1:]...)
				found = true
				break
			}
		}
	}
	if _, ok := m.Details[id]; ok {
		delete(m.Details, id)
		found = true
	}
	if !found {
		return &NotFoundError{Path: "/inbox/" + id}
	}
	return nil
}

// Attachments returns attachment metadata for a message.
func (m *MockAPI) Attachments(ctx context.Context, emailID string) ([]Attachment, error) {
	err := m.begin(OpAttachments, emailID)
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return append([]Attachment(nil), m.AttachmentMap[emailID]...), nil
}

// Mailbox returns a mock mailbox for address.
func (m *MockAPI) Mailbox(address string) (MailboxAPI, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	return &mockMailbox{api: m, address: address}, nil
}

type mockMailbox struct {
	api     *MockAPI
	address string
}

func (b *mockMailbox) Address() string { return b.address }

func (b *mockMailbox) Emails(ctx context.Context, limit, offset int) ([]Email, error) {
	m := b.api
	err := m.begin(OpEmails, fmt.Sprintf("%s:%d:%d", b.address, limit, offset))
	defer m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	inbox := m.Inboxes[b.address]
	if offset >= len(inbox) {
		return []Email{}, nil
	}
	end := offset + limit
	if end > len(inbox) {
		end = len(inbox)
	}
	return append([]Email(nil), inbox[offset:end]...), nil
}

func (b *mockMailbox) Count(ctx context.Context) (int, error) {
	m := b.api
	err := m.begin(OpCount, b.address)
	defer m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return len(m.Inboxes[b.address]), nil
}

func (b *mockMailbox) DeleteAll(ctx context.Context) (int, error) {
	m := b.api
	err := m.begin(OpDeleteAll, b.address)
	defer m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	n := len(m.Inboxes[b.address])
	delete(m.Inboxes, b.address)
	return n, nil
}

// Ensure MockAPI implements API interface.
var _ API = (*MockAPI)(nil)
