package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pandore/config"
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

const minPasswordLength = 6

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	identityProvider service.IdentityProvider
	sessionTTL       time.Duration
	now              func() time.Time
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	SessionRepo      repository.SessionRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	IdentityProvider service.IdentityProvider
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	sessionTTL := 7 * 24 * time.Hour
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.SessionTTL > 0 {
		sessionTTL = params.Config.Auth.SessionTTL
	}

	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		sessionRepo:      params.SessionRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		identityProvider: params.IdentityProvider,
		sessionTTL:       sessionTTL,
		now:              time.Now,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a password account. The artist name, when present, makes it an artist account.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("password must be at least 6 characters")
	}

	if _, err := srv.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domainerrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check email")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &hash,
		Name:         strings.TrimSpace(input.Name),
	}
	user.ApplyArtistName(strings.TrimSpace(input.ArtistName))

	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID), slog.String("role", user.Role.String()))

	return user, nil
}

// Login verifies a password and issues a signed token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "unknown email"))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	// Accounts created through the identity provider have no password.
	if user.PasswordHash == nil || !srv.hasher.Check(input.Password, *user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "password mismatch"))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := srv.tokenService.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GoogleCallback completes an identity provider login. The user ends up with exactly one
// opaque session: every earlier one is deleted in the same transaction.
func (srv *authService) GoogleCallback(ctx context.Context, sessionID string) (*usecase.OAuthLoginOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("session_id is required")
	}

	profile, err := srv.identityProvider.ExchangeSession(ctx, sessionID)
	if err != nil {
		srv.log(ctx).Warn("Identity provider exchange failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrIdentityProviderFailed, err.Error())
	}

	email := normalizeEmail(profile.Email)
	expiresAt := srv.now().Add(srv.sessionTTL)
	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()

		existing, err := userRepo.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			user = newOAuthUser(email, profile)
			if err := userRepo.Create(ctx, user); err != nil {
				return err
			}
			srv.log(ctx).Info("Created user from identity provider", slog.Any("userID", user.ID))
		case err != nil:
			return errors.Wrap(err, "failed to find user")
		default:
			user = existing
			refreshProfile(user, profile)
			if err := userRepo.Update(ctx, user); err != nil {
				return err
			}
		}

		if err := sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}

		return sessionRepo.Create(ctx, &entity.Session{
			ID:        uuid.New(),
			UserID:    user.ID,
			TokenHash: util.HashToken(profile.SessionToken),
			ExpiresAt: expiresAt,
			CreatedAt: srv.now(),
		})
	})
	if err != nil {
		srv.log(ctx).Error("Failed to complete identity provider login", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	return &usecase.OAuthLoginOutput{SessionToken: profile.SessionToken, ExpiresAt: expiresAt, User: user}, nil
}

// Logout drops every opaque session of the user.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := srv.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	srv.log(ctx).Debug("User logged out", slog.Any("userID", userID))

	return nil
}

// UpdateRole toggles between artist and listener.
func (srv *authService) UpdateRole(ctx context.Context, userID uuid.UUID, artistName string) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	user.ApplyArtistName(strings.TrimSpace(artistName))

	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User role updated", slog.Any("userID", userID), slog.String("role", user.Role.String()))

	return user, nil
}

func newOAuthUser(email string, profile *service.IdentityProfile) *entity.User {
	user := &entity.User{
		ID:    uuid.New(),
		Email: email,
		Name:  profile.Name,
		Role:  entity.RoleListener,
	}
	if user.Name == "" {
		user.Name = email
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.Picture = &picture
	}

	return user
}

// refreshProfile copies the provider's current name and avatar onto the user.
func refreshProfile(user *entity.User, profile *service.IdentityProfile) {
	if profile.Name != "" {
		user.Name = profile.Name
	}
	if profile.Picture != "" {
		picture := profile.Picture
		user.Picture = &picture
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
