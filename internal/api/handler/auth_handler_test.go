package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/session"
)

func TestAuthHandler_RequestOTP_Success(t *testing.T) {
	var got string
	stub := &stubAuthService{
		requestOTPFn: func(_ context.Context, _ *ports.Workspace, email string) error {
			got = email
			return nil
		},
	}
	h := NewAuthHandler(stub)

	_, c, rec, _ := newContext(http.MethodPost, "/auth/request-otp", strings.NewReader(`{"email":"admin@roots.test"}`), echo.MIMEApplicationJSON)
	if err := h.RequestOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "admin@roots.test" {
		t.Fatalf("unexpected email %q", got)
	}
	var resp requestOTPResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Step != "otp" {
		t.Errorf("expected otp step, got %q", resp.Step)
	}
}

func TestAuthHandler_RequestOTP_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		requestOTPFn: func(context.Context, *ports.Workspace, string) error {
			t.Fatalf("service must not be called")
			return nil
		},
	})

	_, c, rec, _ := newContext(http.MethodPost, "/auth/request-otp", strings.NewReader(`{"email":"nope"}`), echo.MIMEApplicationJSON)
	if err := h.RequestOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_VerifyOTP_NormalizesCode(t *testing.T) {
	var gotOTP string
	stub := &stubAuthService{
		verifyOTPFn: func(_ context.Context, _ *ports.Workspace, _, otp string) (*domain.Identity, error) {
			gotOTP = otp
			return &domain.Identity{Email: "admin@roots.test", Role: domain.RoleSuperadmin}, nil
		},
	}
	h := NewAuthHandler(stub)

	_, c, rec, _ := newContext(http.MethodPost, "/auth/verify-otp", strings.NewReader(`{"email":"admin@roots.test","otp":"12 34-56"}`), echo.MIMEApplicationJSON)
	if err := h.VerifyOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotOTP != "123456" {
		t.Fatalf("expected normalized code, got %q", gotOTP)
	}
}

func TestAuthHandler_VerifyOTP_ShortCode(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	_, c, rec, _ := newContext(http.MethodPost, "/auth/verify-otp", strings.NewReader(`{"email":"admin@roots.test","otp":"123"}`), echo.MIMEApplicationJSON)
	if err := h.VerifyOTP(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "otp must be 6 characters") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthHandler_VerifyOTP_RemoteRejection(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		verifyOTPFn: func(context.Context, *ports.Workspace, string, string) (*domain.Identity, error) {
			return nil, &domain.APIError{Class: domain.ClassUnauthorized, Status: 401, Message: "Invalid OTP"}
		},
	})

	_, c, _, _ := newContext(http.MethodPost, "/auth/verify-otp", strings.NewReader(`{"email":"admin@roots.test","otp":"123456"}`), echo.MIMEApplicationJSON)
	err := h.VerifyOTP(c)
	if err == nil {
		t.Fatal("expected the error to reach the error handler")
	}
}

func TestAuthHandler_LoginScreen(t *testing.T) {
	cases := []struct {
		name     string
		user     *domain.Identity
		wantStep string
		wantAuth bool
	}{
		{"anonymous", nil, "email", false},
		{"plain user", &domain.Identity{Email: "u@roots.test", Role: domain.RoleUser}, "email", false},
		{"superadmin", &domain.Identity{Email: "a@roots.test", Role: domain.RoleSuperadmin}, "done", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{
				bootstrapFn: func(context.Context, *ports.Workspace) session.Snapshot {
					return session.Snapshot{User: tc.user}
				},
			})

			_, c, rec, _ := newContext(http.MethodGet, "/login", nil, "")
			if err := h.LoginScreen(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			var resp loginScreenResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Step != tc.wantStep || resp.Authenticated != tc.wantAuth {
				t.Errorf("got step=%q auth=%v", resp.Step, resp.Authenticated)
			}
			if tc.wantAuth && resp.Next != HomePath {
				t.Errorf("expected next %s, got %q", HomePath, resp.Next)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		bootstrapFn: func(context.Context, *ports.Workspace) session.Snapshot {
			return session.Snapshot{User: &domain.Identity{Email: "a@roots.test", Role: domain.RoleSuperadmin}}
		},
	})

	_, c, rec, _ := newContext(http.MethodGet, "/auth/me", nil, "")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if snap.User == nil || snap.User.Email != "a@roots.test" || snap.IsLoading {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	called := false
	h := NewAuthHandler(&stubAuthService{
		logoutFn: func(context.Context, *ports.Workspace) error {
			called = true
			return nil
		},
	})

	_, c, rec, _ := newContext(http.MethodPost, "/auth/logout", nil, "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected logout, got %d", rec.Code)
	}
}

func TestAuthHandler_MissingWorkspace(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	e := echo.New()
	c := e.NewContext(httptestRequest(http.MethodGet, "/auth/me"), nil)

	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 http error, got %v", err)
	}
}
