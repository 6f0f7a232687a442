// Package google talks to the OAuth identity provider fronting Google sign-in.
package google

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pandore/config"
	"pandore/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	sessionIDHeader       = "X-Session-ID"
	defaultExchangeTimout = 10 * time.Second
)

// sessionDataResponse is the payload of the provider's session-data endpoint.
type sessionDataResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// SessionExchanger resolves a provider-issued session id into a profile.
type SessionExchanger struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSessionExchanger creates the identity provider client from configuration.
func NewSessionExchanger(cfg *config.Config, logger *slog.Logger) service.IdentityProvider {
	timeout := defaultExchangeTimout
	endpoint := ""
	if cfg.IdentityProvider != nil {
		endpoint = cfg.IdentityProvider.SessionDataURL
		if cfg.IdentityProvider.Timeout > 0 {
			timeout = cfg.IdentityProvider.Timeout
		}
	}

	return &SessionExchanger{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ExchangeSession calls the session-data endpoint with the session id header.
func (s *SessionExchanger) ExchangeSession(ctx context.Context, sessionID string) (*service.IdentityProfile, error) {
	if s.endpoint == "" {
		return nil, errors.New("identity provider endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session exchange request")
	}
	req.Header.Set(sessionIDHeader, sessionID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange session")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, errors.Errorf("session exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var data sessionDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "failed to decode session data")
	}

	if data.Email == "" || data.SessionToken == "" {
		return nil, errors.New("session data is missing email or session token")
	}

	s.logger.Debug("Identity provider session exchanged", slog.String("email", data.Email))

	return &service.IdentityProfile{
		Email:        data.Email,
		Name:         data.Name,
		Picture:      data.Picture,
		SessionToken: data.SessionToken,
	}, nil
}
