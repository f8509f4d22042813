package ports

import (
	"context"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

// ListQuery carries the parameters of a paginated screen.
type ListQuery struct {
	Page int
	// Status filters moderation lists; empty means all.
	Status domain.RequestStatus
	// Refresh forces a refetch, the manual retry of an error state.
	Refresh bool
}

type AuthService interface {
	RequestOTP(ctx context.Context, ws *Workspace, email string) error
	VerifyOTP(ctx context.Context, ws *Workspace, email, otp string) (*domain.Identity, error)
	// Bootstrap resolves a loading session through the "me" query and
	// returns the resulting snapshot.
	Bootstrap(ctx context.Context, ws *Workspace) session.Snapshot
	Logout(ctx context.Context, ws *Workspace) error
}

type DirectoryService interface {
	ListUsers(ctx context.Context, ws *Workspace, q ListQuery) (domain.Page[domain.Identity], error)
}

type ModerationService interface {
	List(ctx context.Context, ws *Workspace, kind domain.RequestKind, q ListQuery) (domain.Page[domain.PassRequest], error)
	Review(ctx context.Context, ws *Workspace, kind domain.RequestKind, id string, decision domain.ReviewDecision) error
	// Watch mounts an observer on one list page until unsubscribed.
	Watch(ws *Workspace, kind domain.RequestKind, q ListQuery, fn query.Listener) (unsubscribe func())
}

type PaymentConfigService interface {
	Get(ctx context.Context, ws *Workspace, refresh bool) (domain.PaymentConfig, error)
	Save(ctx context.Context, ws *Workspace, src domain.QRSource) (domain.PaymentConfig, error)
}

// ActivityRecorder accepts audit entries for asynchronous persistence.
type ActivityRecorder interface {
	Record(a domain.Activity)
}

type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, page, limit int) (domain.Page[domain.Activity], error)
}
