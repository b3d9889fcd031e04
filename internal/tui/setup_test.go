package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/store"
	"github.com/wesm/tempbox/internal/tempmail"
	"github.com/wesm/tempbox/internal/testutil"
)

const (
	testAddr    = "alice@vwh.sh"
	testAttBase = "https://api.barid.site"
	testWidth   = 100
	testHeight  = 30
)

// colorProfileMu serializes tests that mutate the global lipgloss color profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that assert
// on styled output and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// fakeStore records what the model persists.
type fakeStore struct {
	prefs     []store.Preferences
	addresses []string
	err       error
}

func (s *fakeStore) SavePreferences(p store.Preferences) error {
	if s.err != nil {
		return s.err
	}
	s.prefs = append(s.prefs, p)
	return nil
}

func (s *fakeStore) RecordAddress(address string, at time.Time) error {
	s.addresses = append(s.addresses, address)
	return s.err
}

// fakeOpener records opened URLs instead of launching anything.
type fakeOpener struct {
	urls []string
	err  error
}

func (o *fakeOpener) Open(url string) error {
	if o.err != nil {
		return o.err
	}
	o.urls = append(o.urls, url)
	return nil
}

// harness wires a Model to a session whose commands are executed
// synchronously by a real Worker over a MockAPI.
type harness struct {
	m Model

	api      *tempmail.MockAPI
	worker   *mediator.Worker
	commands *mediator.Queue[mediator.Request]
	replies  *mediator.Queue[mediator.Reply]
	failures *mediator.Queue[mediator.Failure]

	store   *fakeStore
	opener  *fakeOpener
	copied  []string
	copyErr error
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	pageSize int
	width    int
	height   int
}

func withPageSize(n int) harnessOption {
	return func(c *harnessConfig) { c.pageSize = n }
}

func withSize(width, height int) harnessOption {
	return func(c *harnessConfig) { c.width, c.height = width, height }
}

// newHarness creates a started model whose inbox holds emails.
func newHarness(t *testing.T, emails []tempmail.Email, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{pageSize: mediator.DefaultPageSize, width: testWidth, height: testHeight}
	for _, o := range opts {
		o(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		api:      tempmail.NewMockAPI(),
		commands: mediator.NewQueue[mediator.Request](),
		replies:  mediator.NewQueue[mediator.Reply](),
		failures: mediator.NewQueue[mediator.Failure](),
		store:    &fakeStore{},
		opener:   &fakeOpener{},
	}
	h.api.DomainList = []string{"vwh.sh", "barid.site"}
	h.api.AddEmails(testAddr, emails...)
	h.worker = mediator.NewWorker(h.api, h.commands, h.replies, h.failures,
		mediator.WithPageSize(cfg.pageSize), mediator.WithLogger(logger))

	sess := session.New(session.Options{
		Name:              "alice",
		Domain:            "vwh.sh",
		AttachmentBaseURL: testAttBase,
		Commands:          h.commands,
		Replies:           h.replies,
		Failures:          h.failures,
		Logger:            logger,
	})
	h.m = New(sess, Options{
		Store:  h.store,
		Opener: h.opener,
		CopyText: func(s string) error {
			if h.copyErr != nil {
				return h.copyErr
			}
			h.copied = append(h.copied, s)
			return nil
		},
		Version: "v1.2.3",
		Logger:  logger,
	})
	h.send(t, tea.WindowSizeMsg{Width: cfg.width, Height: cfg.height})

	testutil.MustNoErr(t, sess.Start(), "Start")
	h.settle(t)
	return h
}

// send delivers msg to the model and keeps the result.
func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// press delivers a key to the model.
func (h *harness) press(t *testing.T, k tea.KeyMsg) tea.Cmd {
	t.Helper()
	return h.send(t, k)
}

// typeText delivers each rune of s as a key press.
func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		h.press(t, key(r))
	}
}

// settle runs queued commands through the worker and delivers frames until
// the session has nothing outstanding.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for range 200 {
		if req, ok := h.commands.TryPop(); ok {
			resp, err := h.worker.Execute(ctx, req.Command)
			if err != nil {
				testutil.MustNoErr(t, h.failures.Push(mediator.Failure{ID: req.ID, Op: req.Command.Op(), Err: err}), "push failure")
			} else {
				testutil.MustNoErr(t, h.replies.Push(mediator.Reply{ID: req.ID, Response: resp}), "push reply")
			}
		}
		h.send(t, frameMsg(time.Now()))
		if !h.m.sess.Busy() && h.commands.Len() == 0 && h.replies.Len() == 0 && h.failures.Len() == 0 {
			return
		}
	}
	t.Fatalf("session did not settle: %d pending", h.m.sess.Pending())
}

// view renders the model with ANSI codes removed.
func (h *harness) view() string {
	return stripANSI(h.m.View())
}

func (h *harness) emailIDs() []string {
	return testutil.EmailIDs(h.m.sess.Emails())
}

func (h *harness) calls() []string {
	return h.api.CallLog()
}

func (h *harness) called(call string) bool {
	for _, c := range h.calls() {
		if c == call {
			return true
		}
	}
	return false
}

// key returns a KeyMsg for a rune.
func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyEnter() tea.KeyMsg     { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyEsc() tea.KeyMsg       { return tea.KeyMsg{Type: tea.KeyEscape} }
func keyTab() tea.KeyMsg       { return tea.KeyMsg{Type: tea.KeyTab} }
func keyDown() tea.KeyMsg      { return tea.KeyMsg{Type: tea.KeyDown} }
func keyUp() tea.KeyMsg        { return tea.KeyMsg{Type: tea.KeyUp} }
func keyRight() tea.KeyMsg     { return tea.KeyMsg{Type: tea.KeyRight} }
func keyCtrlC() tea.KeyMsg     { return tea.KeyMsg{Type: tea.KeyCtrlC} }
func keyBackspace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyBackspace} }

// isQuit reports whether cmd produces tea.QuitMsg.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func assertMode(t *testing.T, h *harness, want session.Mode) {
	t.Helper()
	if got := h.m.sess.Mode(); got != want {
		t.Errorf("mode = %v, want %v", got, want)
	}
}

func assertModal(t *testing.T, h *harness, want modalType) {
	t.Helper()
	if h.m.modal != want {
		t.Errorf("modal = %v, want %v", h.m.modal, want)
	}
}

// assertScreenFits checks the rendered screen fills the terminal exactly.
func assertScreenFits(t *testing.T, h *harness) {
	t.Helper()
	lines := strings.Split(h.m.View(), "\n")
	if len(lines) != h.m.height {
		t.Errorf("rendered %d lines, want %d", len(lines), h.m.height)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > h.m.width {
			t.Errorf("line %d width = %d, exceeds %d: %q", i, w, h.m.width, stripANSI(line))
		}
	}
}

var errBoom = errors.New("boom")
