package domain

import (
	"strings"
)

// PaymentConfig holds the UPI QR code shown on every pass purchase.
type PaymentConfig struct {
	PaymentQRURL *string `json:"paymentQrUrl"`
}

// Configured reports whether a QR code is set.
func (c PaymentConfig) Configured() bool {
	return c.PaymentQRURL != nil && *c.PaymentQRURL != ""
}

// AcceptedImageTypes lists the content types accepted for QR uploads.
var AcceptedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// AcceptedImageType reports whether contentType may be uploaded.
func AcceptedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range AcceptedImageTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Upload is an image file selected for upload.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// QRSource is the draft of a payment-config save: either a file to upload
// or a pasted URL, never both. Selecting one clears the other.
type QRSource struct {
	file *Upload
	url  string
}

// SelectFile chooses a file and discards any pasted URL.
func (s *QRSource) SelectFile(u Upload) {
	s.file = &u
	s.url = ""
}

// EnterURL sets a pasted URL and discards any selected file.
func (s *QRSource) EnterURL(raw string) {
	s.url = raw
	s.file = nil
}

// File returns the selected file, if any.
func (s QRSource) File() (Upload, bool) {
	if s.file == nil {
		return Upload{}, false
	}
	return *s.file, true
}

// URL returns the trimmed pasted URL.
func (s QRSource) URL() string {
	return strings.TrimSpace(s.url)
}

// Empty reports whether there is nothing to save.
func (s QRSource) Empty() bool {
	return s.file == nil && s.URL() == ""
}
