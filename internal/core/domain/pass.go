package domain

import (
	"fmt"
	"strings"
	"time"
)

// RequestKind distinguishes the two moderation queues.
type RequestKind string

const (
	KindPayment RequestKind = "payment"
	KindUpgrade RequestKind = "upgrade"
)

// ParseRequestKind accepts both the short kind and the plural route segment
// ("payment-requests").
func ParseRequestKind(s string) (RequestKind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-requests") {
	case string(KindPayment):
		return KindPayment, nil
	case string(KindUpgrade):
		return KindUpgrade, nil
	}
	return "", fmt.Errorf("%w: unknown request kind %q", ErrValidation, s)
}

// Label is the human-readable noun used in notices ("Payment request").
func (k RequestKind) Label() string {
	if k == KindUpgrade {
		return "Upgrade request"
	}
	return "Payment request"
}

// RequestStatus represents the moderation state of a pass request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// DefaultStatusFilter is applied when a list is requested without a filter.
const DefaultStatusFilter = StatusPending

// ParseStatusFilter resolves the list filter. An absent parameter means the
// default (pending); an empty value or "all" means no filter.
func ParseStatusFilter(raw string, present bool) (RequestStatus, error) {
	if !present {
		return DefaultStatusFilter, nil
	}
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	s := RequestStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	return s, nil
}

// Requester is the user embedded in a pass request.
type Requester struct {
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  *string `json:"lastName,omitempty"`
}

// PassTypeSummary is the pass a request pays for (or upgrades to).
type PassTypeSummary struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
}

// PassRequest is a payment or upgrade request awaiting (or past) review.
// Amounts are integer minor units.
type PassRequest struct {
	ID              string          `json:"id"`
	Kind            RequestKind     `json:"kind"`
	UserID          string          `json:"userId"`
	PassTypeID      string          `json:"passTypeId"`
	FromUserPassID  *string         `json:"fromUserPassId,omitempty"`
	AmountCents     int64           `json:"amountCents"`
	ScreenshotURL   *string         `json:"screenshotUrl"`
	Status          RequestStatus   `json:"status"`
	ReviewedAt      *time.Time      `json:"reviewedAt"`
	RejectionReason *string         `json:"rejectionReason"`
	CreatedAt       time.Time       `json:"createdAt"`
	User            Requester       `json:"user"`
	PassType        PassTypeSummary `json:"passType"`
}

// Reviewable reports whether the request still accepts a decision. Once a
// request leaves pending it is immutable.
func (r PassRequest) Reviewable() bool {
	return r.Status == StatusPending
}

// HasScreenshot reports whether a payment screenshot can be viewed.
func (r PassRequest) HasScreenshot() bool {
	return r.ScreenshotURL != nil && strings.TrimSpace(*r.ScreenshotURL) != ""
}

// FormatAmount renders minor units as whole rupees, rounded.
func FormatAmount(cents int64) string {
	whole := cents / 100
	if rem := cents % 100; rem >= 50 {
		whole++
	} else if rem <= -50 {
		whole--
	}
	return fmt.Sprintf("₹%d", whole)
}

// ReviewDecision is the outcome an admin submits for a pending request.
type ReviewDecision struct {
	Status          RequestStatus
	RejectionReason string
}

// Validate rejects anything other than an approve or reject decision.
func (d ReviewDecision) Validate() error {
	if d.Status != StatusApproved && d.Status != StatusRejected {
		return fmt.Errorf("%w: decision must be approved or rejected, got %q", ErrValidation, d.Status)
	}
	return nil
}

// Reason returns the rejection reason to send, or nil. The reason is only
// ever sent with a rejection, and is optional there.
func (d ReviewDecision) Reason() *string {
	if d.Status != StatusRejected {
		return nil
	}
	reason := strings.TrimSpace(d.RejectionReason)
	if reason == "" {
		return nil
	}
	return &reason
}

// Notice returns the success message for the decision, e.g.
// "Upgrade request approved".
func (d ReviewDecision) Notice(kind RequestKind) string {
	return fmt.Sprintf("%s %s", kind.Label(), d.Status)
}
