package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/session"
)

// LoginPath is where denied sessions are sent.
const LoginPath = "/login"

// Bootstrapper resolves a loading session.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, ws *ports.Workspace) session.Snapshot
}

// Guard enforces the route guard for a protected area. A loading session is
// bootstrapped first; a denied one is redirected to the login screen.
func Guard(boot Bootstrapper, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ws, _ := c.Get("workspace").(*ports.Workspace)
			if ws == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing console session")
			}

			snap := ws.Session.Snapshot()
			access := session.Evaluate(snap, allowedRoles...)
			if access == session.AccessUnknown {
				snap = boot.Bootstrap(c.Request().Context(), ws)
				access = session.Evaluate(snap, allowedRoles...)
			}

			switch access {
			case session.AccessGranted:
				c.Set("identity", snap.User)
				return next(c)
			case session.AccessDenied:
				return c.Redirect(http.StatusFound, LoginPath)
			default:
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still loading")
			}
		}
	}
}
