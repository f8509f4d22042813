package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"already reviewed", fmt.Errorf("review pr_1: %w", domain.ErrAlreadyReviewed), http.StatusConflict, "request already reviewed"},
		{"ambiguous source", domain.ErrAmbiguousSource, http.StatusBadRequest, domain.ErrAmbiguousSource.Error()},
		{"nothing to save", domain.ErrNothingToSave, http.StatusBadRequest, "nothing to save"},
		{"unsupported image", domain.ErrUnsupportedImage, http.StatusBadRequest, "unsupported image type"},
		{"remote validation", &domain.APIError{Class: domain.ClassValidation, Status: 422, Message: "Invalid status"}, http.StatusBadRequest, "Invalid status"},
		{"remote unauthorized", &domain.APIError{Class: domain.ClassUnauthorized, Status: 401}, http.StatusUnauthorized, domain.GenericErrorMessage},
		{"remote not found", &domain.APIError{Class: domain.ClassNotFound, Status: 404, Message: "Request not found"}, http.StatusNotFound, "Request not found"},
		{"transport", &domain.APIError{Class: domain.ClassTransport, Err: errors.New("dial tcp")}, http.StatusBadGateway, domain.GenericErrorMessage},
		{"unexpected", errors.New("kaboom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Errorf("expected %q, got %q", tc.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response must be left alone, got %d %q", rec.Code, rec.Body.String())
	}
}
