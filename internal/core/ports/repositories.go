package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/roots/admin-console/internal/core/domain"
)

// RemoteSession is the persisted credential state of one console session.
type RemoteSession struct {
	Cookies []*http.Cookie `json:"cookies"`
	UserID  string         `json:"userId,omitempty"`
	SavedAt time.Time      `json:"savedAt"`
}

// RemoteSessionRepository persists remote API cookies per console session
// id so a restarted console can re-establish sessions through bootstrap.
type RemoteSessionRepository interface {
	// Load returns domain.ErrNotFound when nothing is stored for sid.
	Load(ctx context.Context, sid string) (*RemoteSession, error)
	Save(ctx context.Context, sid string, s *RemoteSession, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// ActivityRepository stores the console audit log.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.Activity) error
	// List returns a page of entries, newest first, and the total count.
	List(ctx context.Context, page, limit int) ([]domain.Activity, int64, error)
}
