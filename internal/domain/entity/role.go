package entity

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleListener can browse, buy and build playlists.
	RoleListener Role = "listener"
	// RoleArtist can additionally upload and manage tracks and albums.
	RoleArtist Role = "artist"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleListener, RoleArtist:
		return true
	default:
		return false
	}
}
