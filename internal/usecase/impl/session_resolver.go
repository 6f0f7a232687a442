// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "pandore/internal/delivery/context"
	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/domain/service"
	"pandore/internal/usecase"
	"pandore/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// errSchemeNotApplicable tells the resolver to try the next credential scheme.
var errSchemeNotApplicable = errors.New("credential scheme not applicable")

// credentialScheme resolves a credential of one kind.
type credentialScheme func(ctx context.Context, credential string) (*entity.User, error)

// sessionResolver tries each credential scheme in a fixed order.
type sessionResolver struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	tokenService service.TokenService
	schemes      []credentialScheme
	now          func() time.Time
	logger       *slog.Logger
}

// SessionResolverParams holds dependencies for the resolver, injected by Fx.
type SessionResolverParams struct {
	fx.In

	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewSessionResolver is the constructor for sessionResolver.
func NewSessionResolver(params SessionResolverParams) usecase.SessionResolver {
	resolver := &sessionResolver{
		userRepo:     params.UserRepo,
		sessionRepo:  params.SessionRepo,
		tokenService: params.TokenService,
		now:          time.Now,
		logger:       params.Logger,
	}
	resolver.schemes = []credentialScheme{
		resolver.resolveSignedToken,
		resolver.resolveOpaqueSession,
	}

	return resolver
}

func (r *sessionResolver) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, r.logger)
}

// Resolve returns the user owning the credential or ErrUnauthenticated.
func (r *sessionResolver) Resolve(ctx context.Context, credential string) (*entity.User, error) {
	if credential == "" {
		return nil, domainerrors.ErrUnauthenticated.WrapMessage("missing credential")
	}

	for _, scheme := range r.schemes {
		user, err := scheme(ctx, credential)
		if errors.Is(err, errSchemeNotApplicable) {
			continue
		}

		return user, err
	}

	return nil, domainerrors.ErrUnauthenticated.WrapMessage("unrecognized credential")
}

// resolveSignedToken handles self-contained tokens. Only a token that fails to parse or verify
// is handed on to the next scheme; an expired or unusable verified token stops here.
func (r *sessionResolver) resolveSignedToken(ctx context.Context, credential string) (*entity.User, error) {
	claims, err := r.tokenService.ValidateToken(credential)
	switch {
	case errors.Is(err, service.ErrTokenMalformed):
		return nil, errSchemeNotApplicable
	case errors.Is(err, service.ErrTokenExpired):
		r.log(ctx).Debug("Signed token expired")

		return nil, domainerrors.ErrUnauthenticated.WrapMessage("token expired")
	case err != nil:
		r.log(ctx).Debug("Signed token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrUnauthenticated.WrapMessage("invalid token")
	}

	return r.loadUser(ctx, claims.UserID)
}

// resolveOpaqueSession looks the credential up by hash. Expired sessions are evicted on sight.
func (r *sessionResolver) resolveOpaqueSession(ctx context.Context, credential string) (*entity.User, error) {
	session, err := r.sessionRepo.FindByTokenHash(ctx, util.HashToken(credential))
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, domainerrors.ErrUnauthenticated.WrapMessage("session not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find session")
	}

	if session.IsExpired(r.now()) {
		if err := r.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			r.log(ctx).Warn("Failed to evict expired session", slog.Any("session_id", session.ID), slog.Any("error", err))
		}

		return nil, domainerrors.ErrUnauthenticated.WrapMessage("session expired")
	}

	return r.loadUser(ctx, session.UserID)
}

func (r *sessionResolver) loadUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := r.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		r.log(ctx).Warn("Credential refers to a missing user", slog.Any("user_id", userID))

		return nil, domainerrors.ErrUnauthenticated.WrapMessage("user no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	return user, nil
}
