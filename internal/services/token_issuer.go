package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const refreshTokenType = "refresh"

type TokenIssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     string
	RefreshTTL    string
}

type AccessClaims struct {
	Role     models.Role         `json:"role"`
	Provider models.AuthProvider `json:"provider"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer mints access/refresh pairs. Access and refresh tokens are
// signed with different keys.
type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  string
	refreshTTL string
	now        func() time.Time
}

func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: access and refresh secrets are required", ErrConfiguration)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrConfiguration)
	}
	return &TokenIssuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// Issue mints a token pair for user and records the refresh token through
// db, which may be a transaction.
func (i *TokenIssuer) Issue(ctx context.Context, db *gorm.DB, user *models.User) (*TokenPair, error) {
	accessTTL, err := ParseTTL(i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("access token ttl: %w", err)
	}
	refreshTTL, err := ParseTTL(i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}

	now := i.now()
	subject := user.ID.String()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role:     user.Role,
		Provider: user.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}).SignedString(i.accessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshExpiry := now.Add(refreshTTL)
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		Type: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
		},
	}).SignedString(i.refreshKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := recordRefreshToken(ctx, db, user.ID, refreshID, refreshExpiry); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(raw, claims, i.accessKey); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *TokenIssuer) VerifyRefresh(raw string) (*RefreshClaims, error) {
	return i.verifyRefresh(raw)
}

// verifyRefreshSignature checks authenticity only; an expired refresh token
// is still returned.
func (i *TokenIssuer) verifyRefreshSignature(raw string) (*RefreshClaims, error) {
	return i.verifyRefresh(raw, jwt.WithoutClaimsValidation())
}

func (i *TokenIssuer) verifyRefresh(raw string, opts ...jwt.ParserOption) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(raw, claims, i.refreshKey, opts...); err != nil {
		return nil, err
	}
	if claims.Type != refreshTokenType || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (i *TokenIssuer) parse(raw string, claims jwt.Claims, key []byte, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrInvalidToken
	}
}
