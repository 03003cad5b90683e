package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshTokenStore owns the refresh_tokens table: it records issued
// tokens, rotates them single-use, and revokes them.
type RefreshTokenStore struct {
	db     *gorm.DB
	issuer *TokenIssuer
	now    func() time.Time
}

func NewRefreshTokenStore(db *gorm.DB, issuer *TokenIssuer) *RefreshTokenStore {
	return &RefreshTokenStore{db: db, issuer: issuer, now: time.Now}
}

// Issue mints a fresh pair for user and records its refresh token.
func (s *RefreshTokenStore) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	return s.issuer.Issue(ctx, s.db, user)
}

// Rotate exchanges a refresh token for a new pair. The presented token is
// revoked with a conditional update in the same transaction that records
// its replacement, so of two concurrent rotations only one can win.
func (s *RefreshTokenStore) Rotate(ctx context.Context, raw string) (*TokenPair, error) {
	claims, err := s.issuer.VerifyRefresh(raw)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	err = db.Where("token_hash = ? AND revoked = ?", hashTokenID(claims.ID), false).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	// The stored expiry wins over the signed claim.
	if !s.now().Before(stored.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	var user models.User
	err = db.First(&user, "id = ?", stored.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownSubject
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token subject: %w", err)
	}

	var pair *TokenPair
	err = db.Transaction(func(tx *gorm.DB) error {
		revoked, err := revokeRecord(tx, stored.ID)
		if err != nil {
			return err
		}
		if !revoked {
			return ErrUnknownToken
		}
		pair, err = s.issuer.Issue(ctx, tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Revoke marks the record behind raw as revoked. Expired but authentic
// tokens are accepted and unknown ones are ignored, so logout is idempotent.
func (s *RefreshTokenStore) Revoke(ctx context.Context, raw string) (int64, error) {
	claims, err := s.issuer.verifyRefreshSignature(raw)
	if err != nil {
		return 0, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hashTokenID(claims.ID), false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RevokeAll revokes every active refresh token owned by userID and returns
// how many were revoked.
func (s *RefreshTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func recordRefreshToken(ctx context.Context, db *gorm.DB, userID uuid.UUID, tokenID string, expiresAt time.Time) error {
	record := models.RefreshToken{
		UserID:    userID,
		TokenHash: hashTokenID(tokenID),
		ExpiresAt: expiresAt,
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// revokeRecord flips an active record to revoked. It reports false when the
// record was already revoked.
func revokeRecord(tx *gorm.DB, id uuid.UUID) (bool, error) {
	result := tx.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func hashTokenID(tokenID string) string {
	h := sha256.Sum256([]byte(tokenID))
	return fmt.Sprintf("%x", h)
}
