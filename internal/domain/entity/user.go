// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account in the marketplace. Artists and listeners share the same record;
// the role decides whether the account may publish to the catalog.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string // nil for accounts created through the identity provider
	Name         string
	Picture      *string
	Role         Role
	ArtistName   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsArtist reports whether the user may create catalog items.
func (u *User) IsArtist() bool {
	return u.Role == RoleArtist
}

// DisplayArtistName returns the artist name, falling back to the account name.
func (u *User) DisplayArtistName() string {
	if u.ArtistName != nil && *u.ArtistName != "" {
		return *u.ArtistName
	}

	return u.Name
}

// ApplyArtistName switches the role based on whether an artist name is given.
// An empty name turns the account back into a listener.
func (u *User) ApplyArtistName(artistName string) {
	if artistName == "" {
		u.Role = RoleListener
		u.ArtistName = nil

		return
	}

	u.Role = RoleArtist
	u.ArtistName = &artistName
}
