package session

import (
	"slices"

	"github.com/wesm/tempbox/internal/tempmail"
)

// ImageRef identifies an image preview popup.
type ImageRef struct {
	URL  string
	Name string
}

// AttachmentURL returns the download URL of a.
func (s *Session) AttachmentURL(a tempmail.Attachment) string {
	return tempmail.AttachmentURL(s.attBase, a.ID)
}

// PreviewImage opens a preview popup for a. It reports false when a is not an
// image. Opening an already open image does nothing.
func (s *Session) PreviewImage(a tempmail.Attachment) bool {
	if !a.IsImage() {
		return false
	}
	ref := ImageRef{URL: s.AttachmentURL(a), Name: a.Filename}
	if !slices.Contains(s.images, ref) {
		s.images = append(s.images, ref)
	}
	return true
}

// CloseImage closes the popup for ref. Unknown refs are ignored.
func (s *Session) CloseImage(ref ImageRef) {
	if i := slices.Index(s.images, ref); i >= 0 {
		s.images = slices.Delete(s.images, i, i+1)
	}
}

// Images returns the open popups, oldest first.
func (s *Session) Images() []ImageRef {
	return slices.Clone(s.images)
}
