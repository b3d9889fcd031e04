package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wesm/tempbox/internal/session"
	"github.com/wesm/tempbox/internal/textutil"
)

// Monochrome theme - adaptive for light and dark terminals
var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgAlt    = lipgloss.AdaptiveColor{Light: "#f0f0f0", Dark: "#181818"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	// Spinner style - NOT faint so it's visible
	spinnerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgBase)

	separatorStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	cursorRowStyle = lipgloss.NewStyle().
			Background(bgCursor)

	normalRowStyle = lipgloss.NewStyle().
			Background(bgBase)

	altRowStyle = lipgloss.NewStyle().
			Background(bgAlt)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	loadingStyle = lipgloss.NewStyle().
			Italic(true).
			Background(bgBase)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Background(bgBase)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Background(bgBase)

	flashStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"}). // Amber for visibility
			Background(bgBase)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch m.sess.Mode() {
	case session.ModeBusy:
		body = m.busyView()
	case session.ModeDetail:
		body = m.detailView()
	default:
		body = m.listView()
	}

	screen := fmt.Sprintf("%s\n%s\n%s", m.buildTitleBar(), body, m.footerView())
	screen = m.overlayImages(screen)
	if m.modal != modalNone {
		screen = m.overlayModal(screen)
	}
	return screen
}

// joinLines joins rendered lines with newlines.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// buildTitleBar renders "tempbox [version] - address" with the server-side
// message count right-aligned.
func (m Model) buildTitleBar() string {
	titleText := "tempbox"
	if v := m.opts.Version; v != "" && v != "dev" && v != "unknown" {
		titleText = fmt.Sprintf("tempbox [%s]", v)
	}

	var addr string
	if m.editingName {
		addr = m.nameInput.View() + "@" + m.sess.Domain()
	} else {
		addr = m.sess.Address()
	}

	line := fmt.Sprintf("%s - %s", titleText, addr)
	count := fmt.Sprintf("%d emails", m.sess.EmailCount())
	if m.sess.EmailCount() == 1 {
		count = "1 email"
	}
	if gap := m.width - 2 - lipgloss.Width(line) - lipgloss.Width(count); gap > 1 {
		line += strings.Repeat(" ", gap) + count
	}
	return titleBarStyle.Render(padRight(line, m.width-2)) // -2 for padding
}

// listView renders the column header, message rows and info line.
func (m Model) listView() string {
	emails := m.sess.Emails()
	pageSize := m.listPageSize()

	dateWidth := 10
	fromWidth := 28
	attWidth := 4
	subjectWidth := max(m.width-dateWidth-fromWidth-attWidth-9, 10)

	var sb strings.Builder

	header := fmt.Sprintf("   %-*s  %-*s  %-*s  %*s",
		dateWidth, "Date",
		fromWidth, "From",
		subjectWidth, "Subject",
		attWidth, "📎")
	sb.WriteString(tableHeaderStyle.Render(padRight(header, m.width)))
	sb.WriteString("\n")
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", m.width)))
	sb.WriteString("\n")

	now := time.Now()
	endRow := min(m.scrollOffset+pageSize, len(emails))
	rows := 0
	if len(emails) == 0 {
		sb.WriteString(normalRowStyle.Render(padRight("   No messages for "+m.sess.Address(), m.width)))
		sb.WriteString("\n")
		rows++
	}
	for i := m.scrollOffset; i < endRow; i++ {
		e := emails[i]
		isCursor := i == m.cursor

		indicator := "   "
		if isCursor {
			indicator = cursorRowStyle.Render("▶  ")
		}

		from := fmt.Sprintf("%-*s", fromWidth, truncateRunes(e.FromAddress, fromWidth))
		subject := e.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		subject = fmt.Sprintf("%-*s", subjectWidth, truncateRunes(subject, subjectWidth))
		att := ""
		if e.HasAttachments {
			att = fmt.Sprintf("%d", max(e.AttachmentCount, 1))
		}

		line := fmt.Sprintf("%-*s  %s  %s  %*s",
			dateWidth, formatListDate(e.Received(), now),
			from,
			subject,
			attWidth, att)

		style := normalRowStyle
		switch {
		case isCursor:
			style = cursorRowStyle
		case i%2 == 1:
			style = altRowStyle
		}
		sb.WriteString(indicator)
		sb.WriteString(style.Render(padRight(line, m.width-3)))
		sb.WriteString("\n")
		rows++
	}
	for ; rows < pageSize; rows++ {
		sb.WriteString(normalRowStyle.Render(strings.Repeat(" ", m.width)))
		sb.WriteString("\n")
	}

	var info string
	if len(emails) > 0 {
		info = fmt.Sprintf("%d of %d", len(emails), m.sess.EmailCount())
		if m.sess.CanFetchMore() {
			info += " - [m] load more"
		}
	}
	sb.WriteString(m.renderInfoLine(info, false))
	return sb.String()
}

// detailView renders the open message: headers, scrollable body and, once
// fetched, its attachments.
func (m Model) detailView() string {
	e := m.sess.Viewed()
	if e == nil {
		return m.busyView()
	}

	var lines []string
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	lines = append(lines,
		labelStyle.Render(padRight(truncateRunes(subject, m.width), m.width)),
		m.headerLine("From: ", e.FromAddress),
		m.headerLine("To:   ", e.ToAddress),
		m.headerLine("Date: ", formatReceived(e.Received())),
		separatorStyle.Render(strings.Repeat("─", m.width)),
		m.detail.View(),
	)

	if atts, ok := m.sess.Attachments(); ok {
		lines = append(lines, labelStyle.Render(padRight(fmt.Sprintf("Attachments (%d)", len(atts)), m.width)))
		for i, a := range atts {
			indicator := "   "
			style := normalRowStyle
			if i == m.attCursor {
				indicator = "▶  "
				style = cursorRowStyle
			}
			kind := ""
			if a.IsImage() {
				kind = " [image]"
			}
			row := fmt.Sprintf("%s%s (%s)%s", indicator, a.Filename, formatBytes(a.Size), kind)
			lines = append(lines, style.Render(padRight(truncateRunes(row, m.width), m.width)))
		}
	}

	var info string
	if _, ok := m.sess.Attachments(); !ok && e.HasAttachments {
		info = fmt.Sprintf("%d attachment(s) - [a] load", max(e.AttachmentCount, 1))
	} else if m.detail.TotalLineCount() > m.detail.Height {
		info = fmt.Sprintf("%3.f%%", m.detail.ScrollPercent()*100)
	}
	lines = append(lines, m.renderInfoLine(info, false))
	return joinLines(lines)
}

func (m Model) headerLine(label, value string) string {
	return labelStyle.Render(label) + normalRowStyle.Render(padRight(truncateRunes(value, m.width-len(label)), m.width-len(label)))
}

// busyView is shown while any request is outstanding.
func (m Model) busyView() string {
	height := max(m.height-3, 1)
	msg := loadingStyle.Render(m.spinnerIndicator() + " Loading...")
	pad := max((m.width-lipgloss.Width(msg))/2, 0)

	lines := make([]string, 0, height+1)
	for i := 0; i < height; i++ {
		if i == height/2 {
			lines = append(lines, normalRowStyle.Render(strings.Repeat(" ", pad))+msg)
			continue
		}
		lines = append(lines, normalRowStyle.Render(strings.Repeat(" ", m.width)))
	}
	lines = append(lines, m.renderInfoLine(fmt.Sprintf("%d pending", m.sess.Pending()), true))
	return joinLines(lines)
}

// footerView renders the key hints for the current mode.
func (m Model) footerView() string {
	var keys []string
	switch {
	case m.editingName:
		keys = []string{"Enter save", "Esc cancel"}
	case m.sess.Mode() == session.ModeBusy:
		keys = []string{"? help", "q quit"}
	case m.sess.Mode() == session.ModeDetail:
		keys = []string{"↑/↓ scroll", "Esc back"}
		if e := m.sess.Viewed(); e != nil && e.HasAttachments {
			if atts, ok := m.sess.Attachments(); !ok {
				keys = append(keys, "a attachments")
			} else if len(atts) > 0 {
				keys = append(keys, "←/→ select", "o open", "p preview")
			}
		}
		keys = append(keys, "? help")
	default:
		keys = []string{"↑/↓ navigate", "Enter open", "d delete", "r refresh"}
		if m.sess.CanFetchMore() {
			keys = append(keys, "m more")
		}
		keys = append(keys, "e name", "n new", "Tab domain", "c copy", "? help")
	}
	if len(m.sess.Images()) > 0 {
		keys = append(keys, "x close image")
	}

	return footerStyle.Render(padRight(strings.Join(keys, " │ "), m.width-2))
}

// spinnerIndicator returns the current spinner frame string.
func (m Model) spinnerIndicator() string {
	if m.spinnerFrame < len(spinnerFrames) {
		return spinnerFrames[m.spinnerFrame]
	}
	return spinnerFrames[0]
}

// renderInfoLine renders the line above the footer. A flash message or the
// last session error takes precedence over content.
func (m Model) renderInfoLine(content string, loading bool) string {
	// statsStyle has Padding(0, 1) which adds 2 characters
	contentWidth := max(m.width-2, 1)

	if m.flashMessage != "" {
		return flashStyle.Render(padRight(" "+m.flashMessage, m.width))
	}
	if msg := m.sess.LastError(); msg != "" {
		msg = textutil.FirstLine(textutil.Sanitize(msg))
		return errorStyle.Render(padRight(" Error: "+msg, m.width))
	}

	if loading {
		indicator := m.spinnerIndicator()
		gap := max(contentWidth-lipgloss.Width(content)-lipgloss.Width(indicator), 1)
		content += strings.Repeat(" ", gap) + spinnerStyle.Render(indicator)
	}
	return statsStyle.Render(padRight(content, contentWidth))
}

// rawHelpLines contains the help modal content. The first line is the title.
var rawHelpLines = []string{
	"Keyboard Shortcuts",
	"",
	"Inbox",
	"  ↑/k, ↓/j    Move cursor up/down",
	"  PgUp/PgDn   Page up/down",
	"  Home/End    Go to first/last",
	"  Enter       Open message",
	"  d           Delete message",
	"  D           Delete all messages",
	"  r           Refresh",
	"  m           Load more",
	"",
	"Message",
	"  ↑/↓         Scroll body",
	"  Esc         Back to inbox",
	"  a           Load attachments",
	"  ←/h, →/l    Select attachment",
	"  o           Open attachment",
	"  p           Preview image",
	"  x           Close newest image",
	"",
	"Address",
	"  e           Edit name",
	"  n           New random name",
	"  Tab         Next domain",
	"  c           Copy address",
	"",
	"  q           Quit",
	"",
	"[↑/↓] Scroll  [Any other key] Close",
}

// helpMaxVisible returns the max visible lines for the help modal given terminal height.
func (m Model) helpMaxVisible() int {
	return max(min(m.height-6, len(rawHelpLines)), 1)
}

func (m Model) renderHelpModal() string {
	maxVisible := m.helpMaxVisible()
	scroll := min(m.helpScroll, max(len(rawHelpLines)-maxVisible, 0))

	visible := rawHelpLines[scroll : scroll+maxVisible]
	rendered := make([]string, len(visible))
	for i, line := range visible {
		if scroll+i == 0 {
			rendered[i] = modalTitleStyle.Render(line)
		} else {
			rendered[i] = line
		}
	}
	return joinLines(rendered)
}

func (m Model) renderDeleteAllConfirmModal() string {
	return modalTitleStyle.Render("Delete All?") + "\n\n" +
		fmt.Sprintf("Delete every message for %s?\n", m.sess.Address()) +
		"This cannot be undone.\n\n" +
		"[Y] Yes    [N] No"
}

// overlayModal renders the active modal centered over background.
func (m Model) overlayModal(background string) string {
	var content string
	switch m.modal {
	case modalHelp:
		content = m.renderHelpModal()
	case modalDeleteAllConfirm:
		content = m.renderDeleteAllConfirmModal()
	}
	if content == "" {
		return background
	}

	modal := modalStyle.Render(content)
	top := max((strings.Count(background, "\n")+1-lipgloss.Height(modal))/2, 0)
	left := max((m.width-lipgloss.Width(modal))/2, 0)
	return overlayAt(background, modal, top, left)
}

// overlayImages stacks one popup per open image preview along the right edge,
// newest on top.
func (m Model) overlayImages(background string) string {
	images := m.sess.Images()
	top := 1
	for i := len(images) - 1; i >= 0; i-- {
		img := images[i]
		width := max(min(m.width/2, 60), 20)
		body := modalTitleStyle.Render(truncateRunes("🖼 "+img.Name, width)) + "\n" +
			truncateRunes(img.URL, width)
		popup := popupStyle.Render(body)
		background = overlayAt(background, popup, top, max(m.width-lipgloss.Width(popup), 0))
		top += lipgloss.Height(popup)
		if top >= m.height-2 {
			break
		}
	}
	return background
}

// overlayAt draws box over background with its top-left corner at (top, left),
// preserving the background where the box doesn't cover.
func overlayAt(background, box string, top, left int) string {
	bgLines := strings.Split(background, "\n")
	boxLines := strings.Split(box, "\n")
	boxWidth := lipgloss.Width(box)

	for i, boxLine := range boxLines {
		lineIdx := top + i
		if lineIdx >= len(bgLines) {
			break
		}
		bgLine := bgLines[lineIdx]

		var composite strings.Builder
		if left > 0 {
			leftBg := truncateToWidth(bgLine, left)
			composite.WriteString(leftBg)
			if w := lipgloss.Width(leftBg); w < left {
				composite.WriteString(strings.Repeat(" ", left-w))
			}
		}
		composite.WriteString(boxLine)
		if rightStart := left + boxWidth; rightStart < lipgloss.Width(bgLine) {
			composite.WriteString(skipToWidth(bgLine, rightStart))
		}
		bgLines[lineIdx] = composite.String()
	}
	return joinLines(bgLines)
}
