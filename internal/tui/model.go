// Package tui provides the interactive terminal client for tempbox.
package tui

import (
	"io"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/tempbox/internal/launch"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/store"
)

// DefaultFrameInterval is the redraw period when none is configured.
const DefaultFrameInterval = 50 * time.Millisecond

// PreferenceStore persists the chosen identity.
type PreferenceStore interface {
	SavePreferences(p store.Preferences) error
	RecordAddress(address string, at time.Time) error
}

// Options configures the TUI model.
type Options struct {
	// FrameInterval is how often queued results are polled and the screen
	// redrawn.
	FrameInterval time.Duration

	// NameLength is the length of generated mailbox names.
	NameLength int

	// Store saves preferences and address history. May be nil.
	Store PreferenceStore

	// Opener opens attachment URLs. Nil means launch.Default.
	Opener launch.Opener

	// CopyText writes to the system clipboard. Nil means clipboard.WriteAll.
	CopyText func(string) error

	Version string
	Logger  *slog.Logger
}

// modalType represents the type of modal dialog.
type modalType int

const (
	modalNone modalType = iota
	modalDeleteAllConfirm
	modalHelp
)

// Model is the main TUI model following the Elm architecture.
type Model struct {
	sess *session.Session
	opts Options

	// List view
	cursor       int
	scrollOffset int

	// Detail view
	detail    viewport.Model
	detailID  string // ID of the message loaded into detail
	attCursor int

	// Name editing
	nameInput   textinput.Model
	editingName bool

	// Modal state
	modal      modalType
	helpScroll int

	// Terminal dimensions
	width  int
	height int

	spinnerFrame int

	// Flash message (temporary notification)
	flashMessage   string
	flashExpiresAt time.Time

	quitting bool
}

// frameMsg drives polling and redraws.
type frameMsg time.Time

// RefreshMsg asks the model to reload the list and count, as if the user
// pressed "r". It is sent by scheduled jobs.
type RefreshMsg struct{}

// SaveMsg asks the model to persist preferences. It is sent by scheduled jobs.
type SaveMsg struct{}

// spinnerFrames are the Braille dot animation frames for the busy indicator.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// flashDuration is how long flash messages are displayed.
const flashDuration = 4 * time.Second

// New creates a TUI model over sess. The caller starts the session.
func New(sess *session.Session, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.NameLength <= 0 {
		opts.NameLength = session.DefaultNameLength
	}
	if opts.Opener == nil {
		opts.Opener = launch.Default
	}
	if opts.CopyText == nil {
		opts.CopyText = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ti := textinput.New()
	ti.Placeholder = "mailbox name"
	ti.CharLimit = 64
	ti.Width = 30

	return Model{
		sess:      sess,
		opts:      opts,
		detail:    viewport.New(0, 0),
		nameInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.detail.Width = m.width
		m.detail.Height = m.detailBodyHeight()
		if m.detailID != "" {
			m.loadDetailContent()
		}
		return m, nil

	case frameMsg:
		m.onFrame(time.Time(msg))
		if m.quitting {
			return m, nil
		}
		return m, m.frameTick()

	case RefreshMsg:
		if !m.sess.Busy() && !m.editingName {
			m.refresh()
		}
		return m, nil

	case SaveMsg:
		m.savePreferences()
		return m, nil
	}

	return m, nil
}

// onFrame takes at most one result off the reply queue and reconciles view
// state with it.
func (m *Model) onFrame(now time.Time) {
	if _, err := m.sess.PollOnce(); err != nil {
		m.flash(err.Error())
	}

	if m.sess.Busy() {
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
	}
	if m.flashMessage != "" && now.After(m.flashExpiresAt) {
		m.flashMessage = ""
	}

	// Keep the cursor on a row that exists.
	if n := len(m.sess.Emails()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.ensureCursorVisible()

	viewed := m.sess.Viewed()
	switch {
	case viewed == nil && m.detailID != "":
		m.detailID = ""
		m.attCursor = 0
	case viewed != nil && viewed.ID != m.detailID:
		m.detailID = viewed.ID
		m.attCursor = 0
		m.loadDetailContent()
		m.detail.GotoTop()
	}
	if atts, ok := m.sess.Attachments(); ok && m.attCursor >= len(atts) {
		m.attCursor = max(len(atts)-1, 0)
	}
	m.detail.Height = m.detailBodyHeight()
}

// loadDetailContent renders the open message body into the viewport.
func (m *Model) loadDetailContent() {
	viewed := m.sess.Viewed()
	if viewed == nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.detail.SetContent(joinLines(wrapText(viewed.Body(), width)))
}

func (m *Model) flash(msg string) {
	m.flashMessage = msg
	m.flashExpiresAt = time.Now().Add(flashDuration)
}

// refresh reloads the first page and the count for the current address.
func (m *Model) refresh() {
	addr := m.sess.Address()
	m.cursor = 0
	m.scrollOffset = 0
	m.sess.ClearError()
	_ = m.sess.RequestList(addr)
	_ = m.sess.RequestCount(addr)
}

// addressChanged records the new address and loads its inbox.
func (m *Model) addressChanged() {
	m.sess.CloseDetail()
	if m.opts.Store != nil {
		if err := m.opts.Store.RecordAddress(m.sess.Address(), time.Now()); err != nil {
			m.opts.Logger.Warn("record address", "address", m.sess.Address(), "error", err)
		}
	}
	m.refresh()
}

// savePreferences persists the current identity.
func (m *Model) savePreferences() {
	if m.opts.Store == nil {
		return
	}
	p := store.Preferences{Name: m.sess.Name(), Domain: m.sess.Domain()}
	if err := m.opts.Store.SavePreferences(p); err != nil {
		m.opts.Logger.Error("save preferences", "error", err)
		m.flash("Could not save preferences: " + err.Error())
		return
	}
	m.opts.Logger.Debug("preferences saved", "name", p.Name, "domain", p.Domain)
}

// listPageSize returns the number of list rows visible at once.
// Reserves title bar, column header, separator, info line and footer.
func (m Model) listPageSize() int {
	return max(m.height-5, 1)
}

// detailBodyHeight returns the viewport height of the detail view.
// Reserves title bar, subject, from, to, date, separator, info line and footer.
func (m Model) detailBodyHeight() int {
	h := m.height - 8
	if atts, ok := m.sess.Attachments(); ok {
		h -= len(atts) + 1
	}
	return max(h, 1)
}

func (m *Model) ensureCursorVisible() {
	page := m.listPageSize()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+page {
		m.scrollOffset = m.cursor - page + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// Session returns the session the model drives.
func (m Model) Session() *session.Session {
	return m.sess
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}
