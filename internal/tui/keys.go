package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/tempbox/internal/session"
)

// handleKeyPress routes keyboard input by what currently has focus.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingName {
		return m.handleNameInputKeys(msg)
	}
	if m.modal != modalNone {
		return m.handleModalKeys(msg)
	}
	if m2, cmd, handled := m.handleGlobalKeys(msg); handled {
		return m2, cmd
	}

	switch m.sess.Mode() {
	case session.ModeBusy:
		// Only global keys work while requests are outstanding.
		return m, nil
	case session.ModeDetail:
		return m.handleDetailKeys(msg)
	default:
		return m.handleListKeys(msg)
	}
}

// handleGlobalKeys handles keys that work in every mode.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.savePreferences()
		m.quitting = true
		return m, tea.Quit, true
	case "?":
		m.modal = modalHelp
		m.helpScroll = 0
		return m, nil, true
	case "x":
		images := m.sess.Images()
		if len(images) == 0 {
			return m, nil, false
		}
		m.sess.CloseImage(images[len(images)-1])
		return m, nil, true
	case "c":
		if err := m.opts.CopyText(m.sess.Address()); err != nil {
			m.flash("Copy failed: " + err.Error())
		} else {
			m.flash("Copied " + m.sess.Address())
		}
		return m, nil, true
	}
	return m, nil, false
}

// handleListKeys handles keys in the message list.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	emails := m.sess.Emails()

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(emails)-1 {
			m.cursor++
		}
	case "pgup":
		m.cursor = max(m.cursor-m.listPageSize(), 0)
	case "pgdown":
		m.cursor = max(min(m.cursor+m.listPageSize(), len(emails)-1), 0)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(emails)-1, 0)

	case "enter":
		if m.cursor < len(emails) {
			_ = m.sess.RequestDetail(emails[m.cursor].ID)
		}
	case "d":
		if m.cursor < len(emails) {
			_ = m.sess.RequestDelete(emails[m.cursor].ID, m.cursor)
		}
	case "D":
		if len(emails) > 0 {
			m.modal = modalDeleteAllConfirm
		}
	case "r":
		m.refresh()
	case "m":
		if m.sess.CanFetchMore() {
			_ = m.sess.RequestMore(m.sess.Address())
		}

	case "e":
		m.editingName = true
		m.nameInput.SetValue(m.sess.Name())
		m.nameInput.CursorEnd()
		cmd := m.nameInput.Focus()
		return m, cmd
	case "n":
		name := m.sess.RegenerateName(m.opts.NameLength)
		m.flash("New address " + name + "@" + m.sess.Domain())
		m.addressChanged()
	case "tab":
		if m.sess.NextDomain() {
			m.addressChanged()
		}
	}

	m.ensureCursorVisible()
	return m, nil
}

// handleDetailKeys handles keys in the message detail view.
func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	viewed := m.sess.Viewed()
	atts, fetched := m.sess.Attachments()

	switch msg.String() {
	case "esc", "backspace":
		m.sess.CloseDetail()
		m.detailID = ""
		m.attCursor = 0
		return m, nil

	case "a":
		if viewed != nil && viewed.HasAttachments && !fetched {
			_ = m.sess.RequestAttachments(viewed.ID)
		}
		return m, nil

	case "left", "h":
		if m.attCursor > 0 {
			m.attCursor--
		}
		return m, nil
	case "right", "l":
		if m.attCursor < len(atts)-1 {
			m.attCursor++
		}
		return m, nil

	case "o":
		if m.attCursor < len(atts) {
			url := m.sess.AttachmentURL(atts[m.attCursor])
			if err := m.opts.Opener.Open(url); err != nil {
				m.flash("Open failed: " + err.Error())
			} else {
				m.flash("Opening " + atts[m.attCursor].Filename)
			}
		}
		return m, nil

	case "p":
		if m.attCursor < len(atts) && !m.sess.PreviewImage(atts[m.attCursor]) {
			m.flash(atts[m.attCursor].Filename + " is not an image")
		}
		return m, nil
	}

	// Everything else scrolls the body.
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// handleNameInputKeys handles keys while the mailbox name is being edited.
func (m Model) handleNameInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		m.editingName = false
		m.nameInput.Blur()
		if name == "" || name == m.sess.Name() {
			return m, nil
		}
		if strings.ContainsAny(name, "@ \t") {
			m.flash("Name cannot contain '@' or spaces")
			return m, nil
		}
		m.sess.SetName(name)
		m.addressChanged()
		return m, nil
	case "esc":
		m.editingName = false
		m.nameInput.Blur()
		return m, nil
	case "ctrl+c":
		m.savePreferences()
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// handleModalKeys handles keys while a modal is open.
func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalDeleteAllConfirm:
		switch msg.String() {
		case "y", "Y":
			m.modal = modalNone
			m.cursor = 0
			m.scrollOffset = 0
			_ = m.sess.RequestDeleteAll(m.sess.Address())
		case "n", "N", "esc":
			m.modal = modalNone
		case "ctrl+c":
			m.savePreferences()
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case modalHelp:
		switch msg.String() {
		case "up", "k":
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		case "down", "j":
			if m.helpScroll < len(rawHelpLines)-m.helpMaxVisible() {
				m.helpScroll++
			}
		default:
			m.modal = modalNone
			m.helpScroll = 0
		}
		return m, nil
	}

	m.modal = modalNone
	return m, nil
}
