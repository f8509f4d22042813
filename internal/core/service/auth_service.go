package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/core/session"
)

// SessionPersister saves and forgets a workspace's remote cookies.
type SessionPersister interface {
	Persist(ctx context.Context, ws *ports.Workspace) error
	Discard(ctx context.Context, ws *ports.Workspace) error
}

// AuthService drives the email + one-time-code login, the session
// bootstrap and logout.
type AuthService struct {
	persister SessionPersister
	log       zerolog.Logger
}

func NewAuthService(persister SessionPersister, log zerolog.Logger) *AuthService {
	return &AuthService{persister: persister, log: log}
}

type verifyArgs struct {
	email string
	otp   string
}

// RequestOTP asks the remote API to mail a code to email.
func (s *AuthService) RequestOTP(ctx context.Context, ws *ports.Workspace, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("request otp: %w: email is required", domain.ErrValidation)
	}

	m := mutation.Mutation[string, struct{}]{
		Name: "requestOtp",
		Fn: func(ctx context.Context, email string) (struct{}, error) {
			return struct{}{}, ws.API.RequestOTP(ctx, email)
		},
		LocalErrors: true,
	}
	_, err := m.Run(ctx, ws.Runner, email)
	return err
}

// VerifyOTP exchanges the code for a remote session. On success the
// identity is stored and the remote cookies are persisted.
func (s *AuthService) VerifyOTP(ctx context.Context, ws *ports.Workspace, email, otp string) (*domain.Identity, error) {
	args := verifyArgs{email: strings.TrimSpace(email), otp: NormalizeOTP(otp)}
	if args.email == "" {
		return nil, fmt.Errorf("verify otp: %w: email is required", domain.ErrValidation)
	}
	if len(args.otp) != otpLength {
		return nil, fmt.Errorf("verify otp: %w: code must be %d digits", domain.ErrValidation, otpLength)
	}

	m := mutation.Mutation[verifyArgs, *ports.VerifyResult]{
		Name: "verifyOtp",
		Fn: func(ctx context.Context, a verifyArgs) (*ports.VerifyResult, error) {
			return ws.API.VerifyOTP(ctx, a.email, a.otp)
		},
		OnSuccess: func(ctx context.Context, _ verifyArgs, res *ports.VerifyResult) {
			user := res.User
			ws.Cache.Clear()
			ws.Session.SetIdentity(&user)
			ws.Session.SetLoading(false)
			if err := s.persister.Persist(ctx, ws); err != nil {
				s.log.Warn().Err(err).Str("sid", ws.ID).Msg("failed to persist remote session")
			}
		},
		LocalErrors: true,
	}
	res, err := m.Run(ctx, ws.Runner, args)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("sid", ws.ID).Str("email", res.User.Email).Str("role", string(res.User.Role)).Msg("admin signed in")
	user := res.User
	return &user, nil
}

// Bootstrap resolves a loading session once through the "me" query. The
// identity is set only when the payload carries an email; loading is
// cleared whatever the outcome. A settled session is returned unchanged.
func (s *AuthService) Bootstrap(ctx context.Context, ws *ports.Workspace) session.Snapshot {
	snap := ws.Session.Snapshot()
	if !snap.IsLoading {
		return snap
	}

	me, err := query.Fetch(ctx, ws.Cache, query.NewKey(resourceMe), ws.API.Me)
	if ctx.Err() != nil {
		// The fetch keeps running and the next request reuses its result.
		return ws.Session.Snapshot()
	}
	switch {
	case err != nil && !errors.Is(err, domain.ErrUnauthorized):
		s.log.Warn().Err(err).Str("sid", ws.ID).Msg("session bootstrap failed")
	case err == nil && me != nil && me.Email != "":
		ws.Session.SetIdentity(me)
	}
	ws.Session.SetLoading(false)
	return ws.Session.Snapshot()
}

// Logout ends the remote session, then resets the local one. A remote
// session that is already gone counts as logged out.
func (s *AuthService) Logout(ctx context.Context, ws *ports.Workspace) error {
	m := mutation.Mutation[struct{}, struct{}]{
		Name: "logout",
		Fn: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, ws.API.Logout(ctx)
		},
		OnSuccess: func(ctx context.Context, _ struct{}, _ struct{}) {
			s.reset(ctx, ws)
		},
	}
	_, err := m.Run(ctx, ws.Runner, struct{}{})
	if errors.Is(err, domain.ErrUnauthorized) {
		s.reset(context.WithoutCancel(ctx), ws)
		return nil
	}
	return err
}

func (s *AuthService) reset(ctx context.Context, ws *ports.Workspace) {
	ws.Cache.Clear()
	ws.Session.Reset()
	if err := s.persister.Discard(ctx, ws); err != nil {
		s.log.Warn().Err(err).Str("sid", ws.ID).Msg("failed to discard remote session")
	}
	s.log.Info().Str("sid", ws.ID).Msg("admin signed out")
}

const otpLength = 6

// NormalizeOTP strips everything but digits and keeps at most six.
func NormalizeOTP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' && b.Len() < otpLength {
			b.WriteRune(r)
		}
	}
	return b.String()
}
