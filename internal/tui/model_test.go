package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/store"
	"github.com/wesm/tempbox/internal/tempmail"
	"github.com/wesm/tempbox/internal/testutil"
)

func TestStartupLoadsInbox(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 3))

	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-1", "m-2")
	if got := h.m.sess.EmailCount(); got != 3 {
		t.Errorf("EmailCount = %d, want 3", got)
	}
	testutil.AssertStrings(t, h.m.sess.Domains(), "vwh.sh", "barid.site")
	assertMode(t, h, session.ModeList)
}

func TestInitStartsFrameTick(t *testing.T) {
	h := newHarness(t, nil)
	if h.m.Init() == nil {
		t.Fatal("Init() returned nil, want frame tick")
	}
	if cmd := h.send(t, frameMsg(time.Now())); cmd == nil {
		t.Error("frame did not re-arm the tick")
	}
}

func TestBusyOnlyAcceptsGlobalKeys(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 3))

	h.press(t, key('r'))
	assertMode(t, h, session.ModeBusy)

	h.press(t, key('j'))
	h.press(t, keyEnter())
	if h.m.cursor != 0 {
		t.Errorf("cursor moved while busy: %d", h.m.cursor)
	}
	if got := h.commands.Len(); got != 2 {
		t.Errorf("queued commands = %d, want list and count only", got)
	}
	if !strings.Contains(h.view(), "Loading...") {
		t.Error("busy view should show the loading indicator")
	}

	h.press(t, key('?'))
	assertModal(t, h, modalHelp)

	h.press(t, keyEsc())
	h.settle(t)
	assertMode(t, h, session.ModeList)
}

func TestListNavigation(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 5))

	h.press(t, key('j'))
	h.press(t, keyDown())
	if h.m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", h.m.cursor)
	}
	h.press(t, key('k'))
	if h.m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", h.m.cursor)
	}
	h.press(t, key('G'))
	if h.m.cursor != 4 {
		t.Errorf("cursor after G = %d, want 4", h.m.cursor)
	}
	h.press(t, keyDown())
	if h.m.cursor != 4 {
		t.Errorf("cursor moved past the end: %d", h.m.cursor)
	}
	h.press(t, key('g'))
	h.press(t, keyUp())
	if h.m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", h.m.cursor)
	}
}

func TestScrollFollowsCursor(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 40), withSize(testWidth, 10))

	// 10 rows minus title, header, separator, info and footer.
	if got := h.m.listPageSize(); got != 5 {
		t.Fatalf("listPageSize = %d, want 5", got)
	}
	h.press(t, key('G'))
	if h.m.scrollOffset != 35 {
		t.Errorf("scrollOffset = %d, want 35", h.m.scrollOffset)
	}
	if !strings.Contains(h.view(), "Message 39") {
		t.Error("last message not visible after G")
	}
	h.press(t, key('g'))
	if h.m.scrollOffset != 0 {
		t.Errorf("scrollOffset = %d, want 0", h.m.scrollOffset)
	}
}

func TestOpenAndCloseDetail(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 3))

	h.press(t, key('j'))
	h.press(t, keyEnter())
	assertMode(t, h, session.ModeBusy)
	h.settle(t)

	assertMode(t, h, session.ModeDetail)
	if h.m.detailID != "m-1" {
		t.Errorf("detailID = %q, want m-1", h.m.detailID)
	}
	if !h.called("email:m-1") {
		t.Errorf("calls = %v, want email:m-1", h.calls())
	}
	testutil.AssertContainsAll(t, h.view(), []string{"Message 1", "From: sender@example.com", "Body of Message 1"})

	h.press(t, keyEsc())
	assertMode(t, h, session.ModeList)
	if h.m.detailID != "" {
		t.Errorf("detailID = %q after esc", h.m.detailID)
	}
	if h.m.cursor != 1 {
		t.Errorf("cursor = %d, want it kept at 1", h.m.cursor)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 3))

	h.press(t, key('j'))
	h.press(t, key('d'))
	h.settle(t)

	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-2")
	if !h.called("delete:m-1") {
		t.Errorf("calls = %v, want delete:m-1", h.calls())
	}
}

func TestDeleteLastRowClampsCursor(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 2))

	h.press(t, key('G'))
	h.press(t, key('d'))
	h.settle(t)

	testutil.AssertStrings(t, h.emailIDs(), "m-0")
	if h.m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", h.m.cursor)
	}
}

func TestDeleteAllConfirm(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 3))

	h.press(t, key('D'))
	assertModal(t, h, modalDeleteAllConfirm)
	if !strings.Contains(h.view(), "Delete every message for "+testAddr) {
		t.Error("confirm modal not rendered")
	}

	h.press(t, key('n'))
	assertModal(t, h, modalNone)
	if h.commands.Len() != 0 {
		t.Fatal("cancel queued a command")
	}

	h.press(t, key('D'))
	h.press(t, key('y'))
	assertModal(t, h, modalNone)
	h.settle(t)

	if len(h.m.sess.Emails()) != 0 {
		t.Errorf("emails = %v, want none", h.emailIDs())
	}
	if !h.called("delete_all:" + testAddr) {
		t.Errorf("calls = %v, want delete_all", h.calls())
	}
}

func TestDeleteAllNeedsMessages(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('D'))
	assertModal(t, h, modalNone)
}

func TestLoadMore(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 5), withPageSize(2))

	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-1")
	if !h.m.sess.CanFetchMore() {
		t.Fatal("CanFetchMore = false with 2 of 5 loaded")
	}
	if !strings.Contains(h.view(), "[m] load more") {
		t.Error("load more hint missing")
	}

	h.press(t, key('m'))
	h.settle(t)
	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-1", "m-2", "m-3")

	h.press(t, key('m'))
	h.settle(t)
	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-1", "m-2", "m-3", "m-4")

	if strings.Contains(h.view(), "[m] load more") {
		t.Error("load more hint shown with everything loaded")
	}
	h.press(t, key('m'))
	if h.commands.Len() != 0 {
		t.Error("m queued a request with nothing left to load")
	}
	if !h.called("emails:"+testAddr+":2:4") || !h.called("emails:"+testAddr+":2:2") {
		t.Errorf("calls = %v, want offsets 2 and 4", h.calls())
	}
}

func TestRefreshReloadsFirstPage(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 5), withPageSize(2))

	h.press(t, key('m'))
	h.settle(t)
	h.press(t, key('j'))

	h.press(t, key('r'))
	h.settle(t)
	testutil.AssertStrings(t, h.emailIDs(), "m-0", "m-1")
	if h.m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after refresh", h.m.cursor)
	}
	if h.m.sess.CurrentOffset() != 0 {
		t.Errorf("CurrentOffset = %d, want 0", h.m.sess.CurrentOffset())
	}
}

func TestEditName(t *testing.T) {
	h := newHarness(t, nil)
	h.api.AddEmails("alice2@vwh.sh", testutil.Emails("alice2@vwh.sh", "b", 2)...)

	h.press(t, key('e'))
	if !h.m.editingName {
		t.Fatal("e did not start editing")
	}
	if !strings.Contains(h.view(), "Enter save") {
		t.Error("footer should show editing keys")
	}

	// Keys go to the input, not the list.
	h.typeText(t, "2")
	h.press(t, keyEnter())
	if h.m.editingName {
		t.Error("still editing after enter")
	}
	if got := h.m.sess.Address(); got != "alice2@vwh.sh" {
		t.Errorf("Address = %q, want alice2@vwh.sh", got)
	}
	testutil.AssertStrings(t, h.store.addresses, "alice2@vwh.sh")

	h.settle(t)
	testutil.AssertStrings(t, h.emailIDs(), "b-0", "b-1")
}

func TestEditNameCancel(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('e'))
	h.typeText(t, "xyz")
	h.press(t, keyEsc())

	if h.m.editingName {
		t.Error("still editing after esc")
	}
	if got := h.m.sess.Name(); got != "alice" {
		t.Errorf("Name = %q, want alice", got)
	}
	if h.commands.Len() != 0 {
		t.Error("cancel queued a request")
	}
}

func TestEditNameRejectsAt(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('e'))
	h.press(t, keyBackspace())
	h.typeText(t, "@x")
	h.press(t, keyEnter())

	if got := h.m.sess.Name(); got != "alice" {
		t.Errorf("Name = %q, want alice", got)
	}
	if !strings.Contains(h.m.flashMessage, "cannot contain") {
		t.Errorf("flash = %q", h.m.flashMessage)
	}
}

func TestRegenerateName(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('n'))
	name := h.m.sess.Name()
	if name == "alice" || len(name) != session.DefaultNameLength {
		t.Errorf("Name = %q, want a fresh %d-character name", name, session.DefaultNameLength)
	}
	testutil.AssertStrings(t, h.store.addresses, name+"@vwh.sh")
	assertMode(t, h, session.ModeBusy)
	h.settle(t)
	if !h.called("emails:" + name + "@vwh.sh:50:0") {
		t.Errorf("calls = %v, want list for new address", h.calls())
	}
}

func TestTabCyclesDomain(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, keyTab())
	if got := h.m.sess.Domain(); got != "barid.site" {
		t.Errorf("Domain = %q, want barid.site", got)
	}
	h.settle(t)
	h.press(t, keyTab())
	if got := h.m.sess.Domain(); got != "vwh.sh" {
		t.Errorf("Domain = %q, want wrap to vwh.sh", got)
	}
	testutil.AssertStrings(t, h.store.addresses, "alice@barid.site", "alice@vwh.sh")
}

func TestCopyAddress(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('c'))
	testutil.AssertStrings(t, h.copied, testAddr)
	if !strings.Contains(h.view(), "Copied "+testAddr) {
		t.Error("copy flash not shown")
	}

	h.copyErr = errors.New("no clipboard")
	h.press(t, key('c'))
	if !strings.Contains(h.m.flashMessage, "Copy failed") {
		t.Errorf("flash = %q", h.m.flashMessage)
	}
}

func TestFlashExpires(t *testing.T) {
	h := newHarness(t, nil)

	h.press(t, key('c'))
	h.send(t, frameMsg(time.Now()))
	if h.m.flashMessage == "" {
		t.Fatal("flash cleared too early")
	}
	h.send(t, frameMsg(time.Now().Add(flashDuration+time.Second)))
	if h.m.flashMessage != "" {
		t.Errorf("flash = %q, want cleared", h.m.flashMessage)
	}
}

func attachmentHarness(t *testing.T) *harness {
	t.Helper()
	e := testutil.NewEmail("m-0", testAddr, "Photos")
	e.HasAttachments = true
	e.AttachmentCount = 2
	h := newHarness(t, []tempmail.Email{e})
	h.api.AttachmentMap["m-0"] = []tempmail.Attachment{
		testutil.NewAttachment("att-1", "m-0", "photo.png"),
		testutil.NewAttachment("att-2", "m-0", "report.pdf"),
	}

	h.press(t, keyEnter())
	h.settle(t)
	assertMode(t, h, session.ModeDetail)
	return h
}

func TestAttachmentsLoadOnDemand(t *testing.T) {
	h := attachmentHarness(t)

	if h.called("attachments:m-0") {
		t.Fatal("attachments fetched before a was pressed")
	}
	if !strings.Contains(h.view(), "[a] load") {
		t.Error("attachment hint missing")
	}

	h.press(t, key('a'))
	h.settle(t)
	testutil.AssertContainsAll(t, h.view(), []string{"Attachments (2)", "photo.png (1.00 KB) [image]", "report.pdf"})

	// Already fetched: a second press does nothing.
	h.press(t, key('a'))
	if h.commands.Len() != 0 {
		t.Error("a queued a second attachments request")
	}
}

func TestAttachmentOpenAndPreview(t *testing.T) {
	h := attachmentHarness(t)
	h.press(t, key('a'))
	h.settle(t)

	h.press(t, key('p'))
	testutil.AssertEqualSlices(t, h.m.sess.Images(), session.ImageRef{URL: testAttBase + "/attachments/att-1", Name: "photo.png"})
	if !strings.Contains(h.view(), "🖼 photo.png") {
		t.Error("image popup not rendered")
	}

	h.press(t, keyRight())
	if h.m.attCursor != 1 {
		t.Fatalf("attCursor = %d, want 1", h.m.attCursor)
	}
	h.press(t, key('o'))
	testutil.AssertStrings(t, h.opener.urls, testAttBase+"/attachments/att-2")

	h.press(t, key('p'))
	if !strings.Contains(h.m.flashMessage, "not an image") {
		t.Errorf("flash = %q", h.m.flashMessage)
	}
	if len(h.m.sess.Images()) != 1 {
		t.Error("non-image opened a popup")
	}

	h.press(t, key('x'))
	if len(h.m.sess.Images()) != 0 {
		t.Error("x did not close the popup")
	}
}

func TestAttachmentOpenError(t *testing.T) {
	h := attachmentHarness(t)
	h.press(t, key('a'))
	h.settle(t)

	h.opener.err = errors.New("no handler")
	h.press(t, key('o'))
	if !strings.Contains(h.m.flashMessage, "Open failed") {
		t.Errorf("flash = %q", h.m.flashMessage)
	}
}

func TestFailureDoesNotLeaveBusy(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 2))
	h.api.SetError(tempmail.OpEmail, errBoom)

	h.press(t, keyEnter())
	h.settle(t)

	assertMode(t, h, session.ModeList)
	if !strings.Contains(h.m.sess.LastError(), "boom") {
		t.Errorf("LastError = %q", h.m.sess.LastError())
	}
	if !strings.Contains(h.view(), "Error: ") {
		t.Error("error not shown on the info line")
	}

	// Refresh clears it.
	h.api.SetError(tempmail.OpEmail, nil)
	h.press(t, key('r'))
	h.settle(t)
	if h.m.sess.LastError() != "" {
		t.Errorf("LastError = %q after refresh", h.m.sess.LastError())
	}
}

func TestQuitSavesPreferences(t *testing.T) {
	for _, k := range []tea.KeyMsg{key('q'), keyCtrlC()} {
		t.Run(k.String(), func(t *testing.T) {
			h := newHarness(t, nil)

			cmd := h.press(t, k)
			if !isQuit(cmd) {
				t.Error("expected tea.Quit")
			}
			if !h.m.Quitting() {
				t.Error("Quitting() = false")
			}
			testutil.AssertEqualSlices(t, h.store.prefs, store.Preferences{Name: "alice", Domain: "vwh.sh"})
			if h.m.View() != "" {
				t.Error("View() should be empty after quit")
			}
		})
	}
}

func TestQuitWhileEditing(t *testing.T) {
	h := newHarness(t, nil)
	h.press(t, key('e'))

	// q is text while editing; ctrl+c still quits.
	h.press(t, key('q'))
	if h.m.Quitting() {
		t.Fatal("q quit while editing")
	}
	if !isQuit(h.press(t, keyCtrlC())) {
		t.Error("ctrl+c did not quit while editing")
	}
}

func TestSaveMsg(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, SaveMsg{})
	testutil.AssertEqualSlices(t, h.store.prefs, store.Preferences{Name: "alice", Domain: "vwh.sh"})

	h.store.err = errors.New("disk full")
	h.send(t, SaveMsg{})
	if !strings.Contains(h.m.flashMessage, "disk full") {
		t.Errorf("flash = %q", h.m.flashMessage)
	}
}

func TestRefreshMsg(t *testing.T) {
	h := newHarness(t, testutil.Emails(testAddr, "m", 1))

	h.send(t, RefreshMsg{})
	if got := h.commands.Len(); got != 2 {
		t.Fatalf("queued = %d, want list and count", got)
	}

	// Ignored while busy.
	h.send(t, RefreshMsg{})
	if got := h.commands.Len(); got != 2 {
		t.Errorf("queued = %d after busy refresh, want 2", got)
	}
	h.settle(t)

	// Ignored while editing.
	h.press(t, key('e'))
	h.send(t, RefreshMsg{})
	if h.commands.Len() != 0 {
		t.Error("refresh ran while editing the name")
	}
}

func TestHelpModal(t *testing.T) {
	h := newHarness(t, nil, withSize(testWidth, 12))

	h.press(t, key('?'))
	assertModal(t, h, modalHelp)
	if !strings.Contains(h.view(), "Keyboard Shortcuts") {
		t.Error("help modal not rendered")
	}

	h.press(t, key('j'))
	h.press(t, key('j'))
	if h.m.helpScroll != 2 {
		t.Errorf("helpScroll = %d, want 2", h.m.helpScroll)
	}
	h.press(t, key('k'))
	if h.m.helpScroll != 1 {
		t.Errorf("helpScroll = %d, want 1", h.m.helpScroll)
	}

	h.press(t, key('z'))
	assertModal(t, h, modalNone)
	if h.m.helpScroll != 0 {
		t.Errorf("helpScroll = %d after close", h.m.helpScroll)
	}
}

func TestHelpScrollStopsAtEnd(t *testing.T) {
	h := newHarness(t, nil, withSize(testWidth, 12))
	h.press(t, key('?'))

	for range len(rawHelpLines) + 5 {
		h.press(t, keyDown())
	}
	if want := len(rawHelpLines) - h.m.helpMaxVisible(); h.m.helpScroll != want {
		t.Errorf("helpScroll = %d, want %d", h.m.helpScroll, want)
	}
}
