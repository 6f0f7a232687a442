package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pandore/config"
	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/constants"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[string]*entity.User
	seen  []string
}

func (s *stubResolver) Resolve(_ context.Context, credential string) (*entity.User, error) {
	s.seen = append(s.seen, credential)
	if user, ok := s.users[credential]; ok {
		return user, nil
	}

	return nil, domainerrors.ErrUnauthenticated
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, *entity.User) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *entity.User
	err := mw(func(c echo.Context) error {
		got, _ = GetUser(c)

		return c.NoContent(http.StatusNoContent)
	})(c)
	require.NoError(t, err)

	return rec, got
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	listener := &entity.User{ID: uuid.New(), Role: entity.RoleListener}
	artist := &entity.User{ID: uuid.New(), Role: entity.RoleArtist}
	resolver := &stubResolver{users: map[string]*entity.User{"cookie-cred": listener, "bearer-cred": artist}}
	m := NewAuthMiddleware(AuthMiddlewareParams{Resolver: resolver})

	t.Run("cookie wins over bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "cookie-cred"})
		req.Header.Set(echo.HeaderAuthorization, "Bearer bearer-cred")

		rec, user := runAuth(t, m.Authenticate, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, user)
		assert.Equal(t, listener.ID, user.ID)
	})

	t.Run("bearer only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer bearer-cred")

		rec, user := runAuth(t, m.Authenticate, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, user)
		assert.Equal(t, artist.ID, user.ID)
	})

	t.Run("missing credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic abc")

		rec, user := runAuth(t, m.Authenticate, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
		assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
	})

	t.Run("unknown credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer nobody")

		rec, _ := runAuth(t, m.Authenticate, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	m := NewAuthMiddleware(AuthMiddlewareParams{Resolver: &stubResolver{}})
	e := echo.New()

	tests := []struct {
		name string
		user *entity.User
		want int
	}{
		{name: "artist passes", user: &entity.User{ID: uuid.New(), Role: entity.RoleArtist}, want: http.StatusNoContent},
		{name: "listener rejected", user: &entity.User{ID: uuid.New(), Role: entity.RoleListener}, want: http.StatusForbidden},
		{name: "anonymous rejected", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			if tt.user != nil {
				c.Set(contextKeyUser, tt.user)
			}

			err := m.RequireRole(entity.RoleArtist)(func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			})(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	e := echo.New()
	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		err := limiter.Limit(func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})(e.NewContext(req, rec))
		require.NoError(t, err)

		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"))

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
}

func TestRateLimiter_DisabledWithoutRate(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{})
	e := echo.New()

	for range 5 {
		rec := httptest.NewRecorder()
		err := limiter.Limit(func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestAuthMiddleware_ScopesRequestToCaller(t *testing.T) {
	listener := &entity.User{ID: uuid.New(), Role: entity.RoleListener}
	m := NewAuthMiddleware(AuthMiddlewareParams{Resolver: &stubResolver{users: map[string]*entity.User{"cred": listener}}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer cred")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	var scoped uuid.UUID
	err := m.Authenticate(func(c echo.Context) error {
		scoped, _ = deliverycontext.GetUserIDFromContext(c.Request().Context())

		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, listener.ID, scoped)
}

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "domain error", err: domainerrors.ErrAlreadyOwned, wantStatus: http.StatusBadRequest, wantCode: "ALREADY_OWNED"},
		{name: "wrapped domain error", err: errors.Wrap(domainerrors.ErrForbidden, "not yours"), wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "body limit", err: echo.ErrStatusRequestEntityTooLarge, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "PAYLOAD_TOO_LARGE"},
		{name: "unknown route", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "ROUTE_NOT_FOUND"},
		{name: "unmapped echo error", err: echo.NewHTTPError(http.StatusConflict, "busy"), wantStatus: http.StatusConflict, wantCode: "HTTP_ERROR"},
		{name: "echo 5xx hides message", err: echo.NewHTTPError(http.StatusBadGateway, "upstream secret"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
		{name: "plain error", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.wantCode+`"`)
			assert.NotContains(t, rec.Body.String(), "secret")
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}

func TestErrorMiddleware_CommittedResponseIsLeftAlone(t *testing.T) {
	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/files/audio/a.mp3", nil), rec)

	c.Response().WriteHeader(http.StatusPartialContent)
	_, _ = c.Response().Write([]byte("partial"))

	m.HandleHTTPError(errors.New("connection reset"), c)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}
