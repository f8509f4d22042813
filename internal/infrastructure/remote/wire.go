package remote

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/roots/admin-console/internal/core/domain"
)

var errTooManyRequests = gobreaker.ErrTooManyRequests

type verifyPayload struct {
	AccessToken          string          `json:"accessToken"`
	AccessTokenExpiresAt time.Time       `json:"accessTokenExpiresAt"`
	User                 domain.Identity `json:"user"`
}

type mePayload struct {
	User *domain.Identity `json:"user"`
}

type usersPayload struct {
	Users      []domain.Identity `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

type requestsPayload struct {
	PaymentRequests []passRequestDTO  `json:"paymentRequests"`
	UpgradeRequests []passRequestDTO  `json:"upgradeRequests"`
	Pagination      domain.Pagination `json:"pagination"`
}

type uploadPayload struct {
	URL string `json:"url"`
}

type reviewBody struct {
	Status          domain.RequestStatus `json:"status"`
	RejectionReason *string              `json:"rejectionReason,omitempty"`
}

// passRequestDTO covers both queues: upgrade requests name their target
// pass toPassTypeId/toPassType and carry the pass being upgraded.
type passRequestDTO struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"userId"`
	PassTypeID      string                  `json:"passTypeId"`
	ToPassTypeID    string                  `json:"toPassTypeId"`
	FromUserPassID  *string                 `json:"fromUserPassId"`
	AmountCents     int64                   `json:"amountCents"`
	ScreenshotURL   *string                 `json:"screenshotUrl"`
	Status          domain.RequestStatus    `json:"status"`
	ReviewedAt      *time.Time              `json:"reviewedAt"`
	RejectionReason *string                 `json:"rejectionReason"`
	CreatedAt       time.Time               `json:"createdAt"`
	User            domain.Requester        `json:"user"`
	PassType        *domain.PassTypeSummary `json:"passType"`
	ToPassType      *domain.PassTypeSummary `json:"toPassType"`
}

func (d passRequestDTO) toDomain(kind domain.RequestKind) domain.PassRequest {
	r := domain.PassRequest{
		ID:              d.ID,
		Kind:            kind,
		UserID:          d.UserID,
		PassTypeID:      d.PassTypeID,
		FromUserPassID:  d.FromUserPassID,
		AmountCents:     d.AmountCents,
		ScreenshotURL:   d.ScreenshotURL,
		Status:          d.Status,
		ReviewedAt:      d.ReviewedAt,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		User:            d.User,
	}
	if r.PassTypeID == "" {
		r.PassTypeID = d.ToPassTypeID
	}
	switch {
	case d.PassType != nil:
		r.PassType = *d.PassType
	case d.ToPassType != nil:
		r.PassType = *d.ToPassType
	}
	// A reason only means something on a rejected request.
	if r.Status != domain.StatusRejected {
		r.RejectionReason = nil
	}
	return r
}
