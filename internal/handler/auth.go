package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracepoint/tracker/internal/domain"
	"github.com/tracepoint/tracker/internal/ratelimit"
	"github.com/tracepoint/tracker/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *ratelimit.Limiter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, limiter *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns the user with a token pair. Attempts
// are rate limited per email, and the counter clears on success so a
// legitimate sign-in after typos does not stay locked out.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if !h.limiter.AllowLogin(req.Email) {
		return domain.ErrRateLimited
	}

	user, tokens, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.limiter.Reset(ratelimit.LoginKey(req.Email))

	return JSON(c, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh generates a new token pair from a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tokens, err := h.auth.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, tokens)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, user)
}
