package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
)

// queryFailed renders a failed screen query. Remote failures become a 502
// carrying the manual retry URL; an expired session and local errors go to
// the HTTP error handler.
func queryFailed(c echo.Context, err error) error {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Class == domain.ClassUnauthorized {
		return err
	}
	return c.JSON(http.StatusBadGateway, queryErrorResponse{
		Error: domain.ErrorMessage(err),
		Retry: retryURL(c),
	})
}

// retryURL is the current request URI with refresh=1 set.
func retryURL(c echo.Context) string {
	u := *c.Request().URL
	q := u.Query()
	q.Set("refresh", "1")
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
