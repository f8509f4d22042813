// Package remote implements the Roots REST API client used by every
// console workspace.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Remote API paths.
const (
	pathRequestOTP     = "/v1/auth/request-otp"
	pathVerifyOTP      = "/v1/auth/verify-otp"
	pathMe             = "/v1/auth/me"
	pathLogout         = "/v1/auth/logout"
	pathUsers          = "/v1/users"
	pathPaymentReqs    = "/v1/passes/payment-requests"
	pathUpgradeReqs    = "/v1/passes/upgrade-requests"
	pathPaymentConfig  = "/v1/passes/payment-config"
	pathUploadImage    = "/v1/passes/upload-screenshot"
	uploadFormField    = "file"
	jsonContentType    = "application/json"
	defaultContentType = "application/octet-stream"
)

// Hooks receive client and breaker events for instrumentation.
type Hooks struct {
	// Request is called once per remote call; status is 0 when no response
	// arrived.
	Request      func(endpoint string, status int, elapsed time.Duration)
	BreakerState func(name string, value float64)
}

// Config configures a Client.
type Config struct {
	BaseURL   *url.URL
	Timeout   time.Duration
	Transport http.RoundTripper
	Hooks     Hooks
}

// Client talks JSON to the remote API. Credentials are the cookies in the
// client's jar, so each workspace gets its own Client.
type Client struct {
	base  *url.URL
	http  *http.Client
	hooks Hooks
	log   zerolog.Logger
}

var _ ports.AdminAPI = (*Client)(nil)

// NewClient returns a Client whose requests carry the cookies in jar.
func NewClient(cfg Config, jar http.CookieJar, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: cfg.BaseURL,
		http: &http.Client{
			Transport: cfg.Transport,
			Jar:       jar,
			Timeout:   timeout,
		},
		hooks: cfg.Hooks,
		log:   log,
	}
}

type envelope[T any] struct {
	Message string `json:"message"`
	Payload T      `json:"payload"`
}

// RequestOTP implements ports.AdminAPI.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	return c.sendJSON(ctx, http.MethodPost, pathRequestOTP, map[string]string{"email": email}, nil)
}

// VerifyOTP implements ports.AdminAPI.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*ports.VerifyResult, error) {
	var out envelope[verifyPayload]
	body := map[string]string{"email": email, "otp": otp}
	if err := c.sendJSON(ctx, http.MethodPost, pathVerifyOTP, body, &out); err != nil {
		return nil, err
	}
	return &ports.VerifyResult{
		AccessToken:          out.Payload.AccessToken,
		AccessTokenExpiresAt: out.Payload.AccessTokenExpiresAt,
		User:                 out.Payload.User,
	}, nil
}

// Me implements ports.AdminAPI.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var out envelope[mePayload]
	if err := c.do(ctx, http.MethodGet, pathMe, nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Payload.User, nil
}

// Logout implements ports.AdminAPI.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, pathLogout, nil, nil, "", nil)
}

// ListUsers implements ports.AdminAPI.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (domain.Page[domain.Identity], error) {
	var out envelope[usersPayload]
	if err := c.do(ctx, http.MethodGet, pathUsers, pageQuery(page, limit, ""), nil, "", &out); err != nil {
		return domain.Page[domain.Identity]{}, err
	}
	users := out.Payload.Users
	if users == nil {
		users = []domain.Identity{}
	}
	return domain.Page[domain.Identity]{Items: users, Pagination: normalize(out.Payload.Pagination)}, nil
}

// ListRequests implements ports.AdminAPI.
func (c *Client) ListRequests(ctx context.Context, kind domain.RequestKind, page, limit int, status domain.RequestStatus) (domain.Page[domain.PassRequest], error) {
	var out envelope[requestsPayload]
	if err := c.do(ctx, http.MethodGet, requestsPath(kind), pageQuery(page, limit, status), nil, "", &out); err != nil {
		return domain.Page[domain.PassRequest]{}, err
	}

	raw := out.Payload.PaymentRequests
	if kind == domain.KindUpgrade {
		raw = out.Payload.UpgradeRequests
	}
	items := make([]domain.PassRequest, 0, len(raw))
	for _, r := range raw {
		items = append(items, r.toDomain(kind))
	}
	return domain.Page[domain.PassRequest]{Items: items, Pagination: normalize(out.Payload.Pagination)}, nil
}

// ReviewRequest implements ports.AdminAPI. The rejection reason is only
// sent with a rejection.
func (c *Client) ReviewRequest(ctx context.Context, kind domain.RequestKind, id string, decision domain.ReviewDecision) error {
	body := reviewBody{Status: decision.Status, RejectionReason: decision.Reason()}
	return c.sendJSON(ctx, http.MethodPatch, requestsPath(kind)+"/"+url.PathEscape(id), body, nil)
}

// GetPaymentConfig implements ports.AdminAPI.
func (c *Client) GetPaymentConfig(ctx context.Context) (domain.PaymentConfig, error) {
	var out envelope[domain.PaymentConfig]
	if err := c.do(ctx, http.MethodGet, pathPaymentConfig, nil, nil, "", &out); err != nil {
		return domain.PaymentConfig{}, err
	}
	return out.Payload, nil
}

// UpdatePaymentConfig implements ports.AdminAPI.
func (c *Client) UpdatePaymentConfig(ctx context.Context, paymentQRURL string) (domain.PaymentConfig, error) {
	var out envelope[domain.PaymentConfig]
	body := map[string]string{"paymentQrUrl": paymentQRURL}
	if err := c.sendJSON(ctx, http.MethodPatch, pathPaymentConfig, body, &out); err != nil {
		return domain.PaymentConfig{}, err
	}
	return out.Payload, nil
}

// UploadImage implements ports.AdminAPI. The file travels as the "file"
// part of a multipart form.
func (c *Client) UploadImage(ctx context.Context, upload domain.Upload) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := upload.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFormField, upload.Filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	var out envelope[uploadPayload]
	if err := c.do(ctx, http.MethodPost, pathUploadImage, nil, &buf, w.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.Payload.URL == "" {
		return "", &domain.APIError{Class: domain.ClassTransport, Message: "upload returned no url"}
	}
	return out.Payload.URL, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(b), jsonContentType, out)
}

// do performs one request and decodes the envelope into out. Every failure
// comes back as a *domain.APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", jsonContentType)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, 0, start)
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("remote api unreachable")
		return &domain.APIError{Class: domain.ClassTransport, Err: err}
	}
	defer resp.Body.Close()
	c.observe(path, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.APIError{Class: domain.ClassTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &domain.APIError{
			Class:   domain.ClassifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("message", apiErr.Message).Msg("remote api error")
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.APIError{Class: domain.ClassTransport, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func (c *Client) observe(path string, status int, start time.Time) {
	if c.hooks.Request != nil {
		c.hooks.Request(endpointLabel(path), status, time.Since(start))
	}
}

// errorMessage extracts the server's message from an error body, best
// effort. It returns "" when the body carries none.
func errorMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, field := range []json.RawMessage{body.Message, body.Error} {
		var s string
		if json.Unmarshal(field, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		// Validation errors sometimes arrive as a list of messages.
		var list []string
		if json.Unmarshal(field, &list) == nil && len(list) > 0 {
			return strings.Join(list, ", ")
		}
	}
	return ""
}

func requestsPath(kind domain.RequestKind) string {
	if kind == domain.KindUpgrade {
		return pathUpgradeReqs
	}
	return pathPaymentReqs
}

// endpointLabel collapses ids out of a path for metric labels.
func endpointLabel(path string) string {
	for _, prefix := range []string{pathPaymentReqs, pathUpgradeReqs} {
		if strings.HasPrefix(path, prefix+"/") {
			return prefix + "/:id"
		}
	}
	return path
}

func pageQuery(page, limit int, status domain.RequestStatus) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status != "" {
		q.Set("status", string(status))
	}
	return q
}

// normalize keeps totalPages consistent with total and limit.
func normalize(p domain.Pagination) domain.Pagination {
	if p.Limit <= 0 {
		return p
	}
	return domain.NewPagination(p.Page, p.Limit, p.Total)
}

// IsCircuitOpen reports whether err was caused by an open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, errTooManyRequests)
}
