package repository

import (
	"context"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when no session matches the token hash.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores opaque sessions issued through the identity provider.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByTokenHash returns the session regardless of expiry; callers decide what expired means.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// DeleteByID removes a single session.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteByUserID removes every session of the user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
