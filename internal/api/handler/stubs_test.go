package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

type stubAuthService struct {
	requestOTPFn func(ctx context.Context, ws *ports.Workspace, email string) error
	verifyOTPFn  func(ctx context.Context, ws *ports.Workspace, email, otp string) (*domain.Identity, error)
	bootstrapFn  func(ctx context.Context, ws *ports.Workspace) session.Snapshot
	logoutFn     func(ctx context.Context, ws *ports.Workspace) error
}

func (s *stubAuthService) RequestOTP(ctx context.Context, ws *ports.Workspace, email string) error {
	return s.requestOTPFn(ctx, ws, email)
}

func (s *stubAuthService) VerifyOTP(ctx context.Context, ws *ports.Workspace, email, otp string) (*domain.Identity, error) {
	return s.verifyOTPFn(ctx, ws, email, otp)
}

func (s *stubAuthService) Bootstrap(ctx context.Context, ws *ports.Workspace) session.Snapshot {
	return s.bootstrapFn(ctx, ws)
}

func (s *stubAuthService) Logout(ctx context.Context, ws *ports.Workspace) error {
	return s.logoutFn(ctx, ws)
}

type stubDirectoryService struct {
	listFn func(ctx context.Context, ws *ports.Workspace, q ports.ListQuery) (domain.Page[domain.Identity], error)
}

func (s *stubDirectoryService) ListUsers(ctx context.Context, ws *ports.Workspace, q ports.ListQuery) (domain.Page[domain.Identity], error) {
	return s.listFn(ctx, ws, q)
}

type stubModerationService struct {
	listFn   func(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, q ports.ListQuery) (domain.Page[domain.PassRequest], error)
	reviewFn func(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, id string, d domain.ReviewDecision) error
}

func (s *stubModerationService) List(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, q ports.ListQuery) (domain.Page[domain.PassRequest], error) {
	return s.listFn(ctx, ws, kind, q)
}

func (s *stubModerationService) Review(ctx context.Context, ws *ports.Workspace, kind domain.RequestKind, id string, d domain.ReviewDecision) error {
	return s.reviewFn(ctx, ws, kind, id, d)
}

func (s *stubModerationService) Watch(_ *ports.Workspace, _ domain.RequestKind, _ ports.ListQuery, _ query.Listener) func() {
	return func() {}
}

type stubPaymentConfigService struct {
	getFn  func(ctx context.Context, ws *ports.Workspace, refresh bool) (domain.PaymentConfig, error)
	saveFn func(ctx context.Context, ws *ports.Workspace, src domain.QRSource) (domain.PaymentConfig, error)
}

func (s *stubPaymentConfigService) Get(ctx context.Context, ws *ports.Workspace, refresh bool) (domain.PaymentConfig, error) {
	return s.getFn(ctx, ws, refresh)
}

func (s *stubPaymentConfigService) Save(ctx context.Context, ws *ports.Workspace, src domain.QRSource) (domain.PaymentConfig, error) {
	return s.saveFn(ctx, ws, src)
}

func newWorkspace() *ports.Workspace {
	return &ports.Workspace{
		ID:      "sid",
		Session: session.NewStore(),
		Inbox:   mutation.NewInbox(0),
	}
}

// newContext builds an echo context with a workspace and the validator set.
func newContext(method, target string, body io.Reader, contentType string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder, *ports.Workspace) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ws := newWorkspace()
	c.Set("workspace", ws)
	return e, c, rec, ws
}

func strPtr(s string) *string { return &s }

func httptestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
