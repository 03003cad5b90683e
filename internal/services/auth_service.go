package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
)

type AuthURLResult struct {
	AuthURL string
	State   string
}

type ExchangeResult struct {
	Tokens *TokenPair
	User   *models.User
}

// AuthService is the entry point used by the HTTP layer and the CLI. It
// wires the state codec, provider adapters, identity resolver and refresh
// store together.
type AuthService struct {
	states     *StateCodec
	providers  *ProviderRegistry
	identities *IdentityService
	tokens     *RefreshTokenStore
	metrics    *metrics.Metrics
}

func NewAuthService(states *StateCodec, providers *ProviderRegistry, identities *IdentityService, tokens *RefreshTokenStore, m *metrics.Metrics) *AuthService {
	return &AuthService{
		states:     states,
		providers:  providers,
		identities: identities,
		tokens:     tokens,
		metrics:    m,
	}
}

// GetAuthURL starts a social login. An empty redirectURI falls back to the
// provider's configured one.
func (s *AuthService) GetAuthURL(provider models.AuthProvider, redirectURI string) (*AuthURLResult, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	if redirectURI == "" {
		redirectURI = p.DefaultRedirectURI()
	}
	if redirectURI == "" {
		return nil, fmt.Errorf("%w: no redirect uri configured for %s", ErrConfiguration, provider)
	}

	state, err := s.states.Issue(provider, redirectURI)
	if err != nil {
		return nil, err
	}

	return &AuthURLResult{
		AuthURL: p.AuthURL(state, redirectURI),
		State:   state,
	}, nil
}

// Exchange completes a social login: the code is traded for a profile, the
// profile resolved to a user, and a fresh token pair issued.
func (s *AuthService) Exchange(ctx context.Context, provider models.AuthProvider, code, redirectURI, state string) (*ExchangeResult, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	profile, err := p.ExchangeCode(ctx, code, redirectURI, state)
	if err != nil {
		result := "failed"
		if errors.Is(err, ErrStateMismatch) {
			result = "state_mismatch"
		}
		s.metrics.Exchange(string(provider), result)
		slog.Warn("social exchange failed", "provider", provider, "action", "exchange", "error", err)
		return nil, err
	}

	user, err := s.identities.FindOrCreate(ctx, profile)
	if err != nil {
		s.metrics.Exchange(string(provider), "failed")
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		s.metrics.Exchange(string(provider), "failed")
		return nil, err
	}

	s.metrics.Exchange(string(provider), "ok")
	slog.Info("social login", "provider", provider, "user_id", user.ID, "action", "exchange")
	return &ExchangeResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) Rotate(ctx context.Context, raw string) (*TokenPair, error) {
	pair, err := s.tokens.Rotate(ctx, raw)
	if err != nil {
		s.metrics.Rotation(rotationResult(err))
		if errors.Is(err, ErrUnknownToken) {
			// Replay of a rotated token looks exactly like this.
			slog.Warn("refresh token not recognized", "action", "rotate")
		}
		return nil, err
	}
	s.metrics.Rotation("ok")
	return pair, nil
}

func (s *AuthService) Revoke(ctx context.Context, raw string) error {
	n, err := s.tokens.Revoke(ctx, raw)
	if err != nil {
		return err
	}
	s.metrics.Revoked("logout", n)
	return nil
}

// RevokeAll ends every session of userID.
func (s *AuthService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	n, err := s.tokens.RevokeAll(ctx, userID)
	if err != nil {
		return err
	}
	s.metrics.Revoked("revoke_all", n)
	slog.Info("revoked all refresh tokens", "user_id", userID, "action", "revoke_all", "count", n)
	return nil
}

func rotationResult(err error) string {
	switch {
	case errors.Is(err, ErrUnknownToken):
		return "unknown"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidToken):
		return "invalid"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "error"
	}
}
