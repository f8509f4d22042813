package service

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
)

// ---------------------------------------------------------------------------
// Remote API stub
// ---------------------------------------------------------------------------

type reviewCall struct {
	kind     domain.RequestKind
	id       string
	decision domain.ReviewDecision
}

type listCall struct {
	kind   domain.RequestKind
	page   int
	limit  int
	status domain.RequestStatus
}

type stubAPI struct {
	mu sync.Mutex

	me        *domain.Identity
	meErr     error
	verify    *ports.VerifyResult
	verifyErr error
	otpErr    error
	logoutErr error

	users    map[int]domain.Page[domain.Identity]
	usersErr error

	requests    []domain.PassRequest
	requestsErr error
	reviewErr   error

	config    domain.PaymentConfig
	configErr error
	updateErr error
	uploadURL string
	uploadErr error

	calls       []string
	userPages   []int
	listCalls   []listCall
	reviews     []reviewCall
	uploads     []domain.Upload
	updatedURLs []string
}

func (a *stubAPI) record(name string) {
	a.mu.Lock()
	a.calls = append(a.calls, name)
	a.mu.Unlock()
}

func (a *stubAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *stubAPI) count(name string) int {
	n := 0
	for _, c := range a.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (a *stubAPI) RequestOTP(_ context.Context, _ string) error {
	a.record("requestOtp")
	return a.otpErr
}

func (a *stubAPI) VerifyOTP(_ context.Context, _, _ string) (*ports.VerifyResult, error) {
	a.record("verifyOtp")
	if a.verifyErr != nil {
		return nil, a.verifyErr
	}
	return a.verify, nil
}

func (a *stubAPI) Me(context.Context) (*domain.Identity, error) {
	a.record("me")
	if a.meErr != nil {
		return nil, a.meErr
	}
	return a.me, nil
}

func (a *stubAPI) Logout(context.Context) error {
	a.record("logout")
	return a.logoutErr
}

func (a *stubAPI) ListUsers(_ context.Context, page, limit int) (domain.Page[domain.Identity], error) {
	a.record("users")
	a.mu.Lock()
	a.userPages = append(a.userPages, page)
	a.mu.Unlock()
	if a.usersErr != nil {
		return domain.Page[domain.Identity]{}, a.usersErr
	}
	return a.users[page], nil
}

func (a *stubAPI) ListRequests(_ context.Context, kind domain.RequestKind, page, limit int, status domain.RequestStatus) (domain.Page[domain.PassRequest], error) {
	a.record("requests")
	a.mu.Lock()
	a.listCalls = append(a.listCalls, listCall{kind: kind, page: page, limit: limit, status: status})
	items := append([]domain.PassRequest(nil), a.requests...)
	a.mu.Unlock()
	if a.requestsErr != nil {
		return domain.Page[domain.PassRequest]{}, a.requestsErr
	}
	var matched []domain.PassRequest
	for _, r := range items {
		if r.Kind == kind && (status == "" || r.Status == status) {
			matched = append(matched, r)
		}
	}
	return domain.Page[domain.PassRequest]{
		Items:      matched,
		Pagination: domain.NewPagination(page, limit, 95),
	}, nil
}

func (a *stubAPI) ReviewRequest(_ context.Context, kind domain.RequestKind, id string, d domain.ReviewDecision) error {
	a.record("review")
	if a.reviewErr != nil {
		return a.reviewErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reviews = append(a.reviews, reviewCall{kind: kind, id: id, decision: d})
	for i := range a.requests {
		if a.requests[i].ID == id {
			a.requests[i].Status = d.Status
		}
	}
	return nil
}

func (a *stubAPI) GetPaymentConfig(context.Context) (domain.PaymentConfig, error) {
	a.record("getConfig")
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config, a.configErr
}

func (a *stubAPI) UpdatePaymentConfig(_ context.Context, url string) (domain.PaymentConfig, error) {
	a.record("updateConfig")
	if a.updateErr != nil {
		return domain.PaymentConfig{}, a.updateErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updatedURLs = append(a.updatedURLs, url)
	a.config = domain.PaymentConfig{PaymentQRURL: &url}
	return a.config, nil
}

func (a *stubAPI) UploadImage(_ context.Context, u domain.Upload) (string, error) {
	a.record("upload")
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.mu.Lock()
	a.uploads = append(a.uploads, u)
	a.mu.Unlock()
	return a.uploadURL, nil
}

// ---------------------------------------------------------------------------
// Persistence stubs
// ---------------------------------------------------------------------------

type stubSessions struct {
	mu      sync.Mutex
	stored  map[string]*ports.RemoteSession
	ttls    map[string]time.Duration
	loadErr error
	deleted []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{stored: make(map[string]*ports.RemoteSession), ttls: make(map[string]time.Duration)}
}

func (s *stubSessions) Load(_ context.Context, sid string) (*ports.RemoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rs, ok := s.stored[sid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rs, nil
}

func (s *stubSessions) Save(_ context.Context, sid string, rs *ports.RemoteSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[sid] = rs
	s.ttls[sid] = ttl
	return nil
}

func (s *stubSessions) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stored, sid)
	s.deleted = append(s.deleted, sid)
	return nil
}

type stubRecorder struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (r *stubRecorder) Record(a domain.Activity) {
	r.mu.Lock()
	r.entries = append(r.entries, a)
	r.mu.Unlock()
}

func (r *stubRecorder) Entries() []domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Activity(nil), r.entries...)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testBaseURL = &url.URL{Scheme: "https", Host: "api.roots.test", Path: "/"}

func newTestManager(api *stubAPI, sessions *stubSessions) *WorkspaceManager {
	return NewWorkspaceManager(
		func(http.CookieJar) ports.AdminAPI { return api },
		sessions,
		WorkspaceOptions{BaseURL: testBaseURL, Cache: query.Options{}},
		zerolog.Nop(),
	)
}

func newTestWorkspace(api *stubAPI) *ports.Workspace {
	ws, err := newTestManager(api, newStubSessions()).Open(context.Background(), NewSessionID())
	if err != nil {
		panic(err)
	}
	return ws
}

func superadmin() *domain.Identity {
	return &domain.Identity{ID: "u_1", Email: "admin@roots.test", FirstName: "Ayush", Role: domain.RoleSuperadmin}
}

func pending(kind domain.RequestKind, id string) domain.PassRequest {
	return domain.PassRequest{ID: id, Kind: kind, UserID: "u_9", AmountCents: 49900, Status: domain.StatusPending}
}
