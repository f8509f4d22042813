package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

const maxActivityPageSize = 100

// ActivityQueue accepts audit entries for asynchronous persistence.
type ActivityQueue interface {
	Enqueue(a domain.Activity) bool
}

// ActivityService records and lists the console audit log.
type ActivityService struct {
	repo  ports.ActivityRepository
	queue ActivityQueue
	log   zerolog.Logger
}

func NewActivityService(repo ports.ActivityRepository, queue ActivityQueue, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, queue: queue, log: log}
}

// Record hands a to the queue. The entry is dropped, with a warning, when
// the queue is saturated; auditing never blocks a mutation.
func (s *ActivityService) Record(a domain.Activity) {
	if !s.queue.Enqueue(a) {
		s.log.Warn().Str("action", a.Action).Str("target_id", a.TargetID).Msg("activity queue full, entry dropped")
	}
}

// List returns one page of the audit log, newest first.
func (s *ActivityService) List(ctx context.Context, page, limit int) (domain.Page[domain.Activity], error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > maxActivityPageSize {
		limit = defaultRequestsPageSize
	}

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return domain.Page[domain.Activity]{}, fmt.Errorf("list activity: %w", err)
	}
	if items == nil {
		items = []domain.Activity{}
	}
	return domain.Page[domain.Activity]{
		Items:      items,
		Pagination: domain.NewPagination(page, limit, int(total)),
	}, nil
}
