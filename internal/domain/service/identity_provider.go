package service

import "context"

// IdentityProfile is the profile returned by the identity provider for a session id.
type IdentityProfile struct {
	Email        string
	Name         string
	Picture      string
	SessionToken string
}

// IdentityProvider exchanges a provider-issued session id for profile data.
type IdentityProvider interface {
	ExchangeSession(ctx context.Context, sessionID string) (*IdentityProfile, error)
}
