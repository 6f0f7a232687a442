package middleware

import (
	"net/http"
	"strings"

	"pandore/internal/delivery/api/response"
	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/constants"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	contextKeyUser = "user"
	bearerPrefix   = "Bearer "
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	Resolver usecase.SessionResolver
}

// AuthMiddleware resolves the caller from the session cookie or a bearer token.
type AuthMiddleware struct {
	resolver usecase.SessionResolver
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{resolver: params.Resolver}
}

// Authenticate rejects the request unless the credential resolves to a user.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		credential := extractCredential(c.Request())
		if credential == "" {
			return response.HandleAppError(c, domainerrors.ErrUnauthenticated)
		}

		user, err := m.resolver.Resolve(c.Request().Context(), credential)
		if err != nil {
			return response.HandleAppError(c, err)
		}

		c.Set(contextKeyUser, user)
		c.SetRequest(c.Request().WithContext(deliverycontext.WithUserID(c.Request().Context(), user.ID)))

		return next(c)
	}
}

// RequireRole only lets users with the given role through.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := GetUser(c)
			if !ok {
				return response.HandleAppError(c, domainerrors.ErrUnauthenticated)
			}
			if user.Role != role {
				return response.HandleAppError(c, domainerrors.ErrForbidden.WithDetails("requires role "+role.String()))
			}

			return next(c)
		}
	}
}

// The cookie wins when both the cookie and the Authorization header are present.
func extractCredential(req *http.Request) string {
	if cookie, err := req.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}

// GetUser returns the authenticated user set by Authenticate.
func GetUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(contextKeyUser).(*entity.User)

	return user, ok && user != nil
}

// GetUserID returns the id of the authenticated user.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	user, ok := GetUser(c)
	if !ok {
		return uuid.Nil, false
	}

	return user.ID, true
}
