package services

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	stateTTL      = 10 * time.Minute
	stateAudience = "oauth-state"
)

// StateClaims binds an OAuth redirect to the provider and redirect URI it
// was started for.
type StateClaims struct {
	Provider    models.AuthProvider `json:"provider"`
	Nonce       string              `json:"nonce"`
	RedirectURI string              `json:"redirect_uri"`
	jwt.RegisteredClaims
}

// StateCodec issues and verifies signed OAuth state tokens. Nothing is
// stored server side, so a state stays valid until it expires.
type StateCodec struct {
	secret []byte
	now    func() time.Time
}

func NewStateCodec(secret []byte) (*StateCodec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: state signing secret is empty", ErrConfiguration)
	}
	return &StateCodec{secret: secret, now: time.Now}, nil
}

func (c *StateCodec) Issue(provider models.AuthProvider, redirectURI string) (string, error) {
	now := c.now()
	claims := StateClaims{
		Provider:    provider,
		Nonce:       uuid.NewString(),
		RedirectURI: redirectURI,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return token, nil
}

// Verify fails with ErrStateMismatch unless token is authentic, unexpired,
// and was issued for exactly this provider and redirect URI.
func (c *StateCodec) Verify(token string, provider models.AuthProvider, redirectURI string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &StateClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateMismatch, err)
	}

	if claims.Provider != provider {
		return fmt.Errorf("%w: issued for provider %q", ErrStateMismatch, claims.Provider)
	}
	if claims.RedirectURI != redirectURI {
		return fmt.Errorf("%w: redirect uri differs", ErrStateMismatch)
	}
	return nil
}
