package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

const defaultRequestsPageSize = 20

// ModerationService lists and reviews pass payment and upgrade requests.
type ModerationService struct {
	pageSize int
	activity ports.ActivityRecorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewModerationService returns a ModerationService. activity may be nil,
// in which case decisions are not audited.
func NewModerationService(pageSize int, activity ports.ActivityRecorder, log zerolog.Logger) *ModerationService {
	if pageSize <= 0 {
		pageSize = defaultRequestsPageSize
	}
	return &ModerationService{pageSize: pageSize, activity: activity, log: log, now: time.Now}
}

// List returns one page of a moderation queue through the query cache.
func (s *ModerationService) List(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, q ports.ListQuery) (domain.Page[domain.PassRequest], error) {
	key, fetch := s.query(ws, kind, q)

	var (
		res domain.Page[domain.PassRequest]
		err error
	)
	if q.Refresh {
		res, err = query.Refresh(ctx, ws.Cache, key, fetch)
	} else {
		res, err = query.Fetch(ctx, ws.Cache, key, fetch)
	}
	if err != nil {
		expire(ws, err)
		return domain.Page[domain.PassRequest]{}, err
	}
	return res, nil
}

// Watch mounts fn on one page of a queue. It receives the current state
// right away and every change after, including refetches triggered by
// reviews made elsewhere in the session.
func (s *ModerationService) Watch(ws *ports.Workspace, kind domain.RequestKind, q ports.ListQuery, fn query.Listener) (unsubscribe func()) {
	key, fetch := s.query(ws, kind, q)
	return ws.Cache.Subscribe(key, query.Erase(fetch), func(snap query.Snapshot) {
		if snap.Status == query.StatusError {
			expire(ws, snap.Err)
		}
		fn(snap)
	})
}

type reviewArgs struct {
	kind     domain.RequestKind
	id       string
	decision domain.ReviewDecision
}

// Review approves or rejects a pending request. Every list of the kind is
// invalidated only after the remote API confirms the decision.
func (s *ModerationService) Review(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, id string, decision domain.ReviewDecision) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("review: %w: request id is required", domain.ErrValidation)
	}
	if err := decision.Validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if req, ok := cachedRequest(ws.Cache, kind, id); ok && !req.Reviewable() {
		return fmt.Errorf("review %s: %w (status %s)", id, domain.ErrAlreadyReviewed, req.Status)
	}

	m := mutation.Mutation[reviewArgs, struct{}]{
		Name: reviewMutationName(kind),
		Fn: func(ctx context.Context, a reviewArgs) (struct{}, error) {
			return struct{}{}, ws.API.ReviewRequest(ctx, a.kind, a.id, a.decision)
		},
		OnSuccess: func(_ context.Context, a reviewArgs, _ struct{}) {
			ws.Cache.Invalidate(query.NewKey(requestsResource(a.kind)))
			ws.Runner.Success(a.decision.Notice(a.kind))
			s.audit(ws, a)
		},
	}
	if _, err := m.Run(ctx, ws.Runner, reviewArgs{kind: kind, id: id, decision: decision}); err != nil {
		expire(ws, err)
		return err
	}

	s.log.Info().
		Str("sid", ws.ID).
		Str("kind", string(kind)).
		Str("request_id", id).
		Str("status", string(decision.Status)).
		Msg("request reviewed")
	return nil
}

func reviewMutationName(kind domain.RequestKind) string {
	if kind == domain.KindUpgrade {
		return "reviewUpgradeRequest"
	}
	return "reviewPaymentRequest"
}

func (s *ModerationService) query(ws *ports.Workspace, kind domain.RequestKind, q ports.ListQuery) (query.Key, func(context.Context) (domain.Page[domain.PassRequest], error)) {
	status := q.Status
	known := knownTotalPages(ws.Cache, query.NewKey(requestsResource(kind)), func(k query.Key) bool {
		return len(k) == 3 && k[2] == string(status)
	})
	page := domain.ClampPage(q.Page, known)

	fetch := func(ctx context.Context) (domain.Page[domain.PassRequest], error) {
		res, err := ws.API.ListRequests(ctx, kind, page, s.pageSize, status)
		return emptyOnNotFound(res, err, s.pageSize)
	}
	return requestsKey(kind, page, status), fetch
}

func (s *ModerationService) audit(ws *ports.Workspace, a reviewArgs) {
	if s.activity == nil {
		return
	}
	entry := domain.Activity{
		ID:         uuid.NewString(),
		Action:     domain.ReviewAction(a.kind, a.decision.Status),
		TargetKind: string(a.kind) + "_request",
		TargetID:   a.id,
		At:         s.now().UTC(),
	}
	if reason := a.decision.Reason(); reason != nil {
		entry.Detail = *reason
	}
	if user := ws.Session.Snapshot().User; user != nil {
		entry.ActorID = user.ID
		entry.ActorEmail = user.Email
	}
	s.activity.Record(entry)
}

// cachedRequest finds the freshest cached copy of a request. Stale pages
// are ignored since they may predate a review.
func cachedRequest(c *query.Cache, kind domain.RequestKind, id string) (domain.PassRequest, bool) {
	var (
		found domain.PassRequest
		ok    bool
	)
	c.Scan(query.NewKey(requestsResource(kind)), func(snap query.Snapshot) bool {
		if snap.Status != query.StatusSuccess || snap.Stale {
			return true
		}
		page, isPage := query.Data[domain.Page[domain.PassRequest]](snap)
		if !isPage {
			return true
		}
		for _, r := range page.Items {
			if r.ID == id {
				found, ok = r, true
				return false
			}
		}
		return true
	})
	return found, ok
}
