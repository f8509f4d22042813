package handler

import (
	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/query"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// queryErrorResponse is returned when a screen's query failed. Retry is the
// manual retry URL.
type queryErrorResponse struct {
	Error string `json:"error"`
	Retry string `json:"retry"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type requestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type requestOTPResponse struct {
	Message string `json:"message"`
	Step    string `json:"step"`
}

type verifyOTPResponse struct {
	User *domain.Identity `json:"user"`
}

type loginScreenResponse struct {
	Step          string           `json:"step"`
	Authenticated bool             `json:"authenticated"`
	User          *domain.Identity `json:"user"`
	Next          string           `json:"next,omitempty"`
}

// --- Users ---

type userView struct {
	domain.Identity
	DisplayName string `json:"displayName"`
	Initials    string `json:"initials"`
}

type usersResponse struct {
	Status     query.Status      `json:"status"`
	Items      []userView        `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
	Pager      []int             `json:"pager"`
}

func toUserView(u domain.Identity) userView {
	return userView{
		Identity:    u,
		DisplayName: u.DisplayName(),
		Initials:    domain.Initials(u.FirstName, u.LastName),
	}
}

// --- Moderation ---

type reviewRequest struct {
	Status          string `json:"status"          validate:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

type requestView struct {
	domain.PassRequest
	Amount        string   `json:"amount"`
	RequesterName string   `json:"requesterName"`
	Initials      string   `json:"initials"`
	HasScreenshot bool     `json:"hasScreenshot"`
	Actions       []string `json:"actions"`
}

type requestsResponse struct {
	Status     query.Status         `json:"status"`
	Filter     domain.RequestStatus `json:"filter"`
	Items      []requestView        `json:"items"`
	Pagination domain.Pagination    `json:"pagination"`
	Pager      []int                `json:"pager"`
}

func toRequestView(r domain.PassRequest) requestView {
	name := domain.Identity{FirstName: r.User.FirstName, LastName: r.User.LastName}.DisplayName()
	if name == "" {
		name = r.User.Email
	}
	actions := []string{}
	if r.Reviewable() {
		actions = append(actions, string(domain.StatusApproved), string(domain.StatusRejected))
	}
	return requestView{
		PassRequest:   r,
		Amount:        domain.FormatAmount(r.AmountCents),
		RequesterName: name,
		Initials:      domain.Initials(r.User.FirstName, r.User.LastName),
		HasScreenshot: r.HasScreenshot(),
		Actions:       actions,
	}
}

func toRequestViews(items []domain.PassRequest) []requestView {
	views := make([]requestView, 0, len(items))
	for _, r := range items {
		views = append(views, toRequestView(r))
	}
	return views
}

// --- Payment config ---

type paymentConfigRequest struct {
	PaymentQRURL string `json:"paymentQrUrl" form:"paymentQrUrl" validate:"omitempty,url"`
}

type paymentConfigResponse struct {
	Status       query.Status `json:"status"`
	PaymentQRURL *string      `json:"paymentQrUrl"`
	Configured   bool         `json:"configured"`
}

type paymentConfigSavedResponse struct {
	Message      string  `json:"message"`
	PaymentQRURL *string `json:"paymentQrUrl"`
}

// --- Notifications & activity ---

type notificationsResponse struct {
	Notices []mutation.Notice `json:"notices"`
}

type activityResponse struct {
	Items      []domain.Activity `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
	Pager      []int             `json:"pager"`
}
