package impl

import (
	"context"
	"testing"
	"time"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/usecase"
	"pandore/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, env *testEnv) usecase.SessionResolver {
	t.Helper()

	return NewSessionResolver(SessionResolverParams{
		UserRepo:     env.userRepo,
		SessionRepo:  env.sessionRepo,
		TokenService: env.tokenService(t),
		Logger:       newDiscardLogger(),
	})
}

func signTestToken(t *testing.T, secret string, userID uuid.UUID, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"sub":     userID.String(),
		"iat":     time.Now().Add(-time.Hour).Unix(),
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func storeSession(t *testing.T, env *testEnv, userID uuid.UUID, token string, expiresAt time.Time) *entity.Session {
	t.Helper()

	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: util.HashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.sessionRepo.Create(context.Background(), session))

	return session
}

func TestSessionResolver_SignedToken(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)
	user := env.createUser(t, "jwt@example.com", "")

	token, _, err := env.tokenService(t).GenerateToken(user.ID)
	require.NoError(t, err)

	resolved, err := resolver.Resolve(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.Email, resolved.Email)
}

func TestSessionResolver_ExpiredSignedTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)
	user := env.createUser(t, "expired@example.com", "")

	token := signTestToken(t, env.cfg.SecretKey.Token, user.ID, time.Now().Add(-time.Minute))

	_, err := resolver.Resolve(context.Background(), token)

	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestSessionResolver_ForeignSignedTokenFallsThroughToSessions(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)
	user := env.createUser(t, "foreign@example.com", "")

	// A token signed by someone else is treated as an opaque credential.
	foreign := signTestToken(t, "another-secret", user.ID, time.Now().Add(time.Hour))

	_, err := resolver.Resolve(context.Background(), foreign)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	storeSession(t, env, user.ID, foreign, time.Now().Add(time.Hour))

	resolved, err := resolver.Resolve(context.Background(), foreign)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSessionResolver_OpaqueSession(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)
	user := env.createUser(t, "oauth@example.com", "")

	storeSession(t, env, user.ID, "opaque-session-token", time.Now().Add(time.Hour))

	resolved, err := resolver.Resolve(context.Background(), "opaque-session-token")

	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSessionResolver_ExpiredSessionIsEvicted(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)
	user := env.createUser(t, "stale@example.com", "")

	storeSession(t, env, user.ID, "stale-token", time.Now().Add(-time.Second))

	_, err := resolver.Resolve(context.Background(), "stale-token")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = env.sessionRepo.FindByTokenHash(context.Background(), util.HashToken("stale-token"))
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionResolver_Rejections(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(t, env)

	ghostToken, _, err := env.tokenService(t).GenerateToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
	}{
		{name: "empty credential", credential: ""},
		{name: "unknown opaque token", credential: "not-a-known-token"},
		{name: "token for a deleted user", credential: ghostToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := resolver.Resolve(context.Background(), tt.credential)

			assert.Nil(t, user)
			assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
		})
	}
}
