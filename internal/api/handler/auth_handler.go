package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
	"github.com/roots/admin-console/internal/core/service"
	"github.com/roots/admin-console/internal/core/session"
)

// HomePath is where an authorized admin lands after login.
const HomePath = "/users"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginScreen reports the login screen state. An admin who is already
// signed in is pointed at the home screen.
//
// @Summary      Login screen state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginScreenResponse
// @Router       /login [get]
func (h *AuthHandler) LoginScreen(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	snap := h.authService.Bootstrap(c.Request().Context(), ws)
	resp := loginScreenResponse{Step: "email", User: snap.User}
	if session.Evaluate(snap, domain.RoleSuperadmin) == session.AccessGranted {
		resp.Step = "done"
		resp.Authenticated = true
		resp.Next = HomePath
	}
	return c.JSON(http.StatusOK, resp)
}

// RequestOTP mails a one-time code to the admin.
//
// @Summary      Request a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestOTPRequest  true  "Admin email"
// @Success      200   {object}  requestOTPResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req requestOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.authService.RequestOTP(c.Request().Context(), ws, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requestOTPResponse{Message: "OTP sent to your email", Step: "otp"})
}

// VerifyOTP exchanges the one-time code for a session.
//
// @Summary      Verify a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and 6-digit code"
// @Success      200   {object}  verifyOTPResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	req.OTP = service.NormalizeOTP(req.OTP)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	user, err := h.authService.VerifyOTP(c.Request().Context(), ws, req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyOTPResponse{User: user})
}

// Me returns the session snapshot, bootstrapping a loading session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  session.Snapshot
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.authService.Bootstrap(c.Request().Context(), ws))
}

// Logout ends the remote session and resets the console session.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      502  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), ws); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}
