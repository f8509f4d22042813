package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roots/admin-console/internal/core/domain"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return NewClient(Config{BaseURL: base, Timeout: 5 * time.Second}, jar, zerolog.Nop()), srv
}

func writeEnvelope(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "payload": payload})
}

func TestClient_VerifyOTPStoresCookies(t *testing.T) {
	var meCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@roots.test", body["email"])
		assert.Equal(t, "123456", body["otp"])

		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":          "tok",
			"accessTokenExpiresAt": "2026-10-18T00:00:00Z",
			"user":                 map[string]any{"id": "u_1", "email": "admin@roots.test", "firstName": "Ayush", "role": "superadmin"},
		})
	})
	mux.HandleFunc("GET /v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("access_token"); err == nil {
			meCookie = c.Value
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"user": map[string]any{"email": "admin@roots.test", "firstName": "Ayush", "role": "superadmin"}})
	})
	c, _ := newTestClient(t, mux)

	res, err := c.VerifyOTP(context.Background(), "admin@roots.test", "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperadmin, res.User.Role)
	assert.Equal(t, 2026, res.AccessTokenExpiresAt.Year())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "admin@roots.test", me.Email)
	assert.Equal(t, "tok", meCookie, "cookies must travel with later calls")
}

func TestClient_MeWithoutUser(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{})
	}))
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, me)
}

func TestClient_ListRequests(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/passes/upgrade-requests", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		writeEnvelope(w, http.StatusOK, map[string]any{
			"upgradeRequests": []map[string]any{{
				"id":              "ur_1",
				"userId":          "u_9",
				"fromUserPassId":  "up_3",
				"toPassTypeId":    "pt_gold",
				"amountCents":     49900,
				"screenshotUrl":   nil,
				"status":          "pending",
				"rejectionReason": "stale",
				"createdAt":       "2026-10-01T10:00:00Z",
				"user":            map[string]any{"email": "u@roots.test", "firstName": "Riya", "lastName": nil},
				"toPassType":      map[string]any{"slug": "gold", "name": "Gold", "amountCents": 49900},
			}},
			"pagination": map[string]any{"page": 2, "limit": 20, "total": 95, "totalPages": 4},
		})
	}))

	page, err := c.ListRequests(context.Background(), domain.KindUpgrade, 2, 20, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	r := page.Items[0]
	assert.Equal(t, domain.KindUpgrade, r.Kind)
	assert.Equal(t, "pt_gold", r.PassTypeID)
	assert.Equal(t, "Gold", r.PassType.Name)
	assert.Equal(t, "up_3", *r.FromUserPassID)
	assert.False(t, r.HasScreenshot())
	assert.Nil(t, r.RejectionReason, "reason is dropped on non-rejected requests")
	assert.Equal(t, 5, page.Pagination.TotalPages, "totalPages is recomputed from total and limit")
}

func TestClient_ListRequestsAllStatuses(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has := r.URL.Query()["status"]
		assert.False(t, has, "an empty filter must not send status")
		writeEnvelope(w, http.StatusOK, map[string]any{"paymentRequests": []any{}, "pagination": map[string]any{"page": 1, "limit": 20, "total": 0, "totalPages": 0}})
	}))
	page, err := c.ListRequests(context.Background(), domain.KindPayment, 1, 20, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestClient_ReviewBody(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []map[string]any
		paths  []string
	)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		bodies = append(bodies, body)
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]any{"paymentRequest": map[string]any{"id": "pr_1"}})
	}))

	ctx := context.Background()
	require.NoError(t, c.ReviewRequest(ctx, domain.KindPayment, "pr_1", domain.ReviewDecision{Status: domain.StatusApproved, RejectionReason: "typo"}))
	require.NoError(t, c.ReviewRequest(ctx, domain.KindPayment, "pr_2", domain.ReviewDecision{Status: domain.StatusRejected}))
	require.NoError(t, c.ReviewRequest(ctx, domain.KindUpgrade, "ur_1", domain.ReviewDecision{Status: domain.StatusRejected, RejectionReason: " blurry screenshot "}))

	assert.Equal(t, []string{"/v1/passes/payment-requests/pr_1", "/v1/passes/payment-requests/pr_2", "/v1/passes/upgrade-requests/ur_1"}, paths)
	assert.Equal(t, map[string]any{"status": "approved"}, bodies[0])
	assert.Equal(t, map[string]any{"status": "rejected"}, bodies[1])
	assert.Equal(t, map[string]any{"status": "rejected", "rejectionReason": "blurry screenshot"}, bodies[2])
}

func TestClient_UploadImage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/passes/upload-screenshot", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "qr.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), data)
		writeEnvelope(w, http.StatusCreated, map[string]any{"url": "https://cdn.roots.test/qr.png"})
	}))

	got, err := c.UploadImage(context.Background(), domain.Upload{Filename: "qr.png", ContentType: "image/png", Data: []byte("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.roots.test/qr.png", got)
}

func TestClient_PaymentConfig(t *testing.T) {
	var patched string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, map[string]any{"paymentQrUrl": nil})
		case http.MethodPatch:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			patched = body["paymentQrUrl"]
			writeEnvelope(w, http.StatusOK, map[string]any{"paymentQrUrl": patched})
		}
	}))

	cfg, err := c.GetPaymentConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Configured())

	cfg, err = c.UpdatePaymentConfig(context.Background(), "https://cdn.roots.test/qr.png")
	require.NoError(t, err)
	assert.True(t, cfg.Configured())
	assert.Equal(t, "https://cdn.roots.test/qr.png", patched)
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthorized"}`, domain.ErrUnauthorized, "Unauthorized"},
		{"forbidden", http.StatusForbidden, `{"message":"Forbidden resource"}`, domain.ErrUnauthorized, "Forbidden resource"},
		{"not found", http.StatusNotFound, `{"message":"Not found"}`, domain.ErrNotFound, "Not found"},
		{"validation list", http.StatusBadRequest, `{"message":["otp must be 6 digits"]}`, domain.ErrValidation, "otp must be 6 digits"},
		{"error field", http.StatusConflict, `{"error":"Request already processed"}`, domain.ErrValidation, "Request already processed"},
		{"malformed", http.StatusInternalServerError, `<html>oops</html>`, domain.ErrTransport, domain.GenericErrorMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			err := c.RequestOTP(context.Background(), "admin@roots.test")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, tc.message, domain.ErrorMessage(err))
		})
	}
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"payload":`))
	}))
	_, err := c.GetPaymentConfig(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_Unreachable(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:1")
	c := NewClient(Config{BaseURL: base, Timeout: time.Second}, nil, zerolog.Nop())
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, domain.GenericErrorMessage, domain.ErrorMessage(err))
}

func TestClient_RequestHook(t *testing.T) {
	var endpoints []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()
	base, _ := url.Parse(srv.URL)
	c := NewClient(Config{BaseURL: base, Hooks: Hooks{Request: func(endpoint string, status int, _ time.Duration) {
		endpoints = append(endpoints, endpoint)
		assert.Equal(t, http.StatusOK, status)
	}}}, nil, zerolog.Nop())

	require.NoError(t, c.ReviewRequest(context.Background(), domain.KindPayment, "pr_1", domain.ReviewDecision{Status: domain.StatusApproved}))
	assert.Equal(t, []string{"/v1/passes/payment-requests/:id"}, endpoints)
}
