package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

const defaultUsersPageSize = 10

// DirectoryService lists the accounts registered with the remote API.
type DirectoryService struct {
	pageSize int
	log      zerolog.Logger
}

func NewDirectoryService(pageSize int, log zerolog.Logger) *DirectoryService {
	if pageSize <= 0 {
		pageSize = defaultUsersPageSize
	}
	return &DirectoryService{pageSize: pageSize, log: log}
}

// ListUsers returns one page of users through the query cache. The page is
// clamped to the last known page count before the request is issued.
func (s *DirectoryService) ListUsers(ctx context.Context, ws *ports.Workspace, q ports.ListQuery) (domain.Page[domain.Identity], error) {
	page := domain.ClampPage(q.Page, knownTotalPages(ws.Cache, query.NewKey(resourceUsers), nil))
	key := usersKey(page)
	fetch := func(ctx context.Context) (domain.Page[domain.Identity], error) {
		res, err := ws.API.ListUsers(ctx, page, s.pageSize)
		return emptyOnNotFound(res, err, s.pageSize)
	}

	var (
		res domain.Page[domain.Identity]
		err error
	)
	if q.Refresh {
		res, err = query.Refresh(ctx, ws.Cache, key, fetch)
	} else {
		res, err = query.Fetch(ctx, ws.Cache, key, fetch)
	}
	if err != nil {
		expire(ws, err)
		return domain.Page[domain.Identity]{}, err
	}
	return res, nil
}

// knownTotalPages returns the page count from any settled page under
// prefix accepted by match, or 0 when none is cached yet.
func knownTotalPages(c *query.Cache, prefix query.Key, match func(query.Key) bool) int {
	total := 0
	c.Scan(prefix, func(s query.Snapshot) bool {
		if s.Status != query.StatusSuccess || (match != nil && !match(s.Key)) {
			return true
		}
		if p, ok := s.Data.(interface{ Pages() int }); ok {
			total = p.Pages()
			return false
		}
		return true
	})
	return total
}
