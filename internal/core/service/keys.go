package service

import (
	"errors"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

// Query resource names. Keys are built from these plus the screen's
// parameters, so invalidating a resource covers every page and filter.
const (
	resourceMe              = "me"
	resourceUsers           = "getAllUsers"
	resourcePaymentRequests = "getPaymentRequests"
	resourceUpgradeRequests = "getUpgradeRequests"
	resourcePaymentConfig   = "getPaymentConfig"
)

func requestsResource(kind domain.RequestKind) string {
	if kind == domain.KindUpgrade {
		return resourceUpgradeRequests
	}
	return resourcePaymentRequests
}

func usersKey(page int) query.Key {
	return query.NewKey(resourceUsers, page)
}

func requestsKey(kind domain.RequestKind, page int, status domain.RequestStatus) query.Key {
	return query.NewKey(requestsResource(kind), page, string(status))
}

// expire drops a session the remote API no longer accepts, so the guard
// denies the next request.
func expire(ws *ports.Workspace, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		ws.Cache.Clear()
		ws.Session.Reset()
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// emptyOnNotFound treats a missing collection as an empty page.
func emptyOnNotFound[T any](page domain.Page[T], err error, limit int) (domain.Page[T], error) {
	if isNotFound(err) {
		return domain.Page[T]{Items: []T{}, Pagination: domain.NewPagination(1, limit, 0)}, nil
	}
	return page, err
}
