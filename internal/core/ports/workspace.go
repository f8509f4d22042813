package ports

import (
	"net/http"

	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

// Workspace is the explicit context of one console session: everything a
// screen needs is reached through it, never through globals.
type Workspace struct {
	ID      string
	Session *session.Store
	Cache   *query.Cache
	Runner  *mutation.Runner
	Inbox   *mutation.Inbox
	API     AdminAPI
	Jar     http.CookieJar
}
