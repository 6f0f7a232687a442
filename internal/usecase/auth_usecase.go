// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register with email and password.
// A non-empty ArtistName registers the account as an artist.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	ArtistName string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput carries the signed token issued on password login.
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// OAuthLoginOutput carries the opaque session issued through the identity provider.
type OAuthLoginOutput struct {
	SessionToken string
	ExpiresAt    time.Time
	User         *entity.User
}

// AuthUsecase covers account creation, both login flows and role changes.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// GoogleCallback exchanges a provider session id, creates the user on first sight and
	// replaces every prior opaque session of that user with the new one.
	GoogleCallback(ctx context.Context, sessionID string) (*OAuthLoginOutput, error)

	// Logout removes the caller's opaque sessions. Signed tokens simply expire.
	Logout(ctx context.Context, userID uuid.UUID) error

	// UpdateRole makes the user an artist when artistName is set and a listener otherwise.
	UpdateRole(ctx context.Context, userID uuid.UUID, artistName string) (*entity.User, error)
}

// SessionResolver turns a raw credential into the user it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (*entity.User, error)
}
