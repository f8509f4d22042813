package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
)

// errorResponse is the body of every failed console request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusRule maps one sentinel to a status. Console-side rejections show the
// sentinel text; remote failures show the server's message when it sent one.
type statusRule struct {
	sentinel error
	code     int
	remote   bool
}

// Order matters: console-side rejections are checked before the remote
// classes they may also wrap.
var statusRules = []statusRule{
	{sentinel: domain.ErrAlreadyReviewed, code: http.StatusConflict},
	{sentinel: domain.ErrAmbiguousSource, code: http.StatusBadRequest},
	{sentinel: domain.ErrNothingToSave, code: http.StatusBadRequest},
	{sentinel: domain.ErrUnsupportedImage, code: http.StatusBadRequest},
	{sentinel: domain.ErrUnauthorized, code: http.StatusUnauthorized, remote: true},
	{sentinel: domain.ErrValidation, code: http.StatusBadRequest, remote: true},
	{sentinel: domain.ErrNotFound, code: http.StatusNotFound, remote: true},
	{sentinel: domain.ErrTransport, code: http.StatusBadGateway, remote: true},
}

// NewHTTPErrorHandler renders errors as {"error": "..."}. Unexpected errors
// are logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := statusFor(err)

		var ev *zerolog.Event
		switch {
		case code == http.StatusInternalServerError:
			ev = log.Error()
		case code >= http.StatusBadGateway:
			ev = log.Warn()
		}
		if ev != nil {
			ev.Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", code).
				Msg("request failed")
		}

		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, r := range statusRules {
		if !errors.Is(err, r.sentinel) {
			continue
		}
		if r.remote {
			return r.code, domain.ErrorMessage(err)
		}
		return r.code, r.sentinel.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
