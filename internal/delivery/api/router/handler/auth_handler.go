package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pandore/config"
	"pandore/internal/delivery/api/middleware"
	"pandore/internal/delivery/api/response"
	"pandore/internal/domain/constants"
	"pandore/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
	Logger *slog.Logger
}

// AuthHandler serves registration, both login flows and role changes.
type AuthHandler struct {
	authUC     usecase.AuthUsecase
	cookie     config.CookieConfig
	tokenTTL   time.Duration
	sessionTTL time.Duration
	logger     *slog.Logger
}

const defaultCookieTTL = 7 * 24 * time.Hour

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	h := &AuthHandler{
		authUC:     params.AuthUC,
		tokenTTL:   defaultCookieTTL,
		sessionTTL: defaultCookieTTL,
		logger:     params.Logger,
	}
	if params.Config != nil && params.Config.Auth != nil {
		h.cookie = params.Config.Auth.Cookie
		if params.Config.Auth.TokenTTL > 0 {
			h.tokenTTL = params.Config.Auth.TokenTTL
		}
		if params.Config.Auth.SessionTTL > 0 {
			h.sessionTTL = params.Config.Auth.SessionTTL
		}
	}

	return h
}

// RegisterRequest represents the request body for email registration
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Name       string `json:"name" validate:"required,max=100"`
	ArtistName string `json:"artist_name" validate:"omitempty,max=100"`
}

// LoginRequest represents the request body for email login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleCallbackRequest carries the session id handed out by the identity provider
type GoogleCallbackRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// UpdateRoleRequest switches between listener and artist
type UpdateRoleRequest struct {
	ArtistName string `json:"artist_name" validate:"omitempty,max=100"`
}

// Register handles email registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	user, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		ArtistName: req.ArtistName,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Created(c, toUserResponse(user))
}

// Login handles email login and sets the session cookie
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setSessionCookie(c, out.Token, out.ExpiresAt, h.tokenTTL)

	return response.Success(c, http.StatusOK, map[string]any{
		"token": out.Token,
		"user":  toUserResponse(out.User),
	})
}

// GoogleCallback exchanges the provider session and sets the session cookie
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	var req GoogleCallbackRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid callback input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	out, err := h.authUC.GoogleCallback(c.Request().Context(), req.SessionID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setSessionCookie(c, out.SessionToken, out.ExpiresAt, h.sessionTTL)

	return response.Success(c, http.StatusOK, map[string]any{
		"user":          toUserResponse(out.User),
		"session_token": out.SessionToken,
	})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

// Logout drops the caller's opaque sessions and clears the cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.authUC.Logout(c.Request().Context(), userID); err != nil {
		return response.HandleAppError(c, err)
	}

	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, map[string]string{"message": "Logged out"})
}

// UpdateRole reads artist_name from the body, falling back to the query string
func (h *AuthHandler) UpdateRole(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if req.ArtistName == "" {
		req.ArtistName = c.QueryParam("artist_name")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	user, err := h.authUC.UpdateRole(c.Request().Context(), userID, req.ArtistName)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(c echo.Context, value string, expiresAt time.Time, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(ttl / time.Second),
		Expires:  expiresAt,
		Secure:   h.cookie.Secure,
		HttpOnly: false, // the storefront reads it to pick the auth header
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
