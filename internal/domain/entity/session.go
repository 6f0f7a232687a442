package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-held record of an opaque credential issued by the identity provider.
// Only the hash of the credential is stored.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session is past its expiry at the given instant.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
