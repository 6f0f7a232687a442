package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Token validation outcomes. Callers branch on these to decide whether a credential
// belongs to the signed-token scheme at all.
var (
	// ErrTokenMalformed means the credential is not a token signed by us (bad format or signature).
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	// ErrTokenExpired means the signature verified but the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid means the signature verified but the claims are unusable.
	ErrTokenInvalid = errors.New("token claims invalid")
)

// Claims is the verified content of a signed token.
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies self-contained signed tokens.
type TokenService interface {
	// GenerateToken creates a signed token for the user and returns it with its expiry.
	GenerateToken(userID uuid.UUID) (string, time.Time, error)

	// ValidateToken verifies the signature and expiry of a token.
	ValidateToken(tokenString string) (*Claims, error)
}
