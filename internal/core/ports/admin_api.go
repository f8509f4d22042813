package ports

import (
	"context"
	"time"

	"github.com/roots/admin-console/internal/core/domain"
)

// VerifyResult is returned by a successful one-time-code verification.
type VerifyResult struct {
	AccessToken          string
	AccessTokenExpiresAt time.Time
	User                 domain.Identity
}

// AdminAPI is the remote REST API the console orchestrates. Credentials
// travel as cookies held by the implementation; callers never see tokens
// beyond VerifyResult.
//
// Failures are *domain.APIError values classified as transport,
// unauthorized, validation or not-found.
type AdminAPI interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (*VerifyResult, error)
	// Me returns the identity behind the current cookies. A payload without
	// a user yields a nil identity and no error.
	Me(ctx context.Context) (*domain.Identity, error)
	Logout(ctx context.Context) error

	ListUsers(ctx context.Context, page, limit int) (domain.Page[domain.Identity], error)
	// ListRequests lists one moderation queue. An empty status lists all.
	ListRequests(ctx context.Context, kind domain.RequestKind, page, limit int, status domain.RequestStatus) (domain.Page[domain.PassRequest], error)
	ReviewRequest(ctx context.Context, kind domain.RequestKind, id string, decision domain.ReviewDecision) error

	GetPaymentConfig(ctx context.Context) (domain.PaymentConfig, error)
	UpdatePaymentConfig(ctx context.Context, paymentQRURL string) (domain.PaymentConfig, error)
	// UploadImage stores an image and returns its public URL.
	UploadImage(ctx context.Context, upload domain.Upload) (string, error)
}
