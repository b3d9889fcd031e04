package tempmail

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
	"github.com/wesm/tempbox/internal/textutil"
)

// Email is a message as returned by the API. List calls leave the content
// fields empty; detail calls fill them.
type Email struct {
	ID              string `json:"id"`
	FromAddress     string `json:"from_address"`
	ToAddress       string `json:"to_address"`
	Subject         string `json:"subject"`
	ReceivedAt      int64  `json:"received_at"` // Unix seconds
	HasAttachments  bool   `json:"has_attachments"`
	AttachmentCount int    `json:"attachment_count"`
	TextContent     string `json:"text_content,omitempty"`
	HTMLContent     string `json:"html_content,omitempty"`
}

// Received returns the receive time in the local zone.
func (e Email) Received() time.Time {
	return time.Unix(e.ReceivedAt, 0)
}

// Body returns the plain-text body, converting HTML when no text part exists.
func (e Email) Body() string {
	if strings.TrimSpace(e.TextContent) != "" {
		return textutil.Sanitize(e.TextContent)
	}
	if e.HTMLContent == "" {
		return ""
	}
	// Entities can decode to control characters, so clean after converting.
	text, err := html2text.FromString(e.HTMLContent, html2text.Options{OmitLinks: false})
	if err != nil {
		return textutil.Sanitize(e.HTMLContent)
	}
	return textutil.Sanitize(text)
}

// sanitize cleans the header fields shown in listings.
func (e *Email) sanitize() {
	e.FromAddress = textutil.Sanitize(e.FromAddress)
	e.ToAddress = textutil.Sanitize(e.ToAddress)
	e.Subject = textutil.Sanitize(e.Subject)
}

// Attachment is attachment metadata for a message.
type Attachment struct {
	ID       string `json:"id"`
	EmailID  string `json:"email_id,omitempty"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size"` // Bytes
}

func (a *Attachment) sanitize() {
	a.Filename = textutil.Sanitize(a.Filename)
	a.MimeType = textutil.Sanitize(a.MimeType)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImage reports whether the attachment can be previewed as an image.
func (a Attachment) IsImage() bool {
	return imageExtensions[strings.ToLower(path.Ext(a.Filename))]
}

// AttachmentURL builds the download URL for an attachment ID. The ID is
// escaped as a single path segment.
func AttachmentURL(baseURL, attachmentID string) string {
	return strings.TrimRight(baseURL, "/") + "/attachments/" + url.PathEscape(attachmentID)
}
