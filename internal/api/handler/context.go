package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

// ctxWorkspace extracts the workspace injected by the Workspace middleware.
// Its absence means the middleware did not run; reject with 401.
func ctxWorkspace(c echo.Context) (*ports.Workspace, error) {
	ws, _ := c.Get("workspace").(*ports.Workspace)
	if ws == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing console session")
	}
	return ws, nil
}

// queryPage reads ?page, defaulting to 1. Clamping to the collection's
// bounds is the service's job.
func queryPage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// queryRefresh reports whether the request is a manual retry.
func queryRefresh(c echo.Context) bool {
	switch strings.ToLower(c.QueryParam("refresh")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// queryStatus resolves the moderation status filter.
func queryStatus(c echo.Context) (domain.RequestStatus, error) {
	return domain.ParseStatusFilter(c.QueryParam("status"), c.QueryParams().Has("status"))
}
