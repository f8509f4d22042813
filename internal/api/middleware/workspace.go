package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/ports"
)

// SessionCookie carries the signed console session id.
const SessionCookie = "console_session"

// WorkspaceOpener resolves a console session id to its workspace.
type WorkspaceOpener interface {
	Open(ctx context.Context, sid string) (*ports.Workspace, error)
}

// CookieConfig controls the console session cookie.
type CookieConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Workspace reads the signed session cookie, issuing a new session id when
// it is missing or invalid, and injects the session's workspace into context.
func Workspace(opener WorkspaceOpener, cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				sid = parseSessionToken(cookie.Value, cfg.Secret)
			}

			if sid == "" {
				sid = uuid.NewString()
				signed, err := signSessionToken(sid, cfg.Secret, cfg.TTL)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue session").SetInternal(err)
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ws, err := opener.Open(c.Request().Context(), sid)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to open session").SetInternal(err)
			}

			c.Set("workspace", ws)
			return next(c)
		}
	}
}

func signSessionToken(sid, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseSessionToken returns the session id of a valid token, or "".
func parseSessionToken(raw, secret string) string {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	return claims.Subject
}
