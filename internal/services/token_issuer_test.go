package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuerSecrets(t *testing.T) {
	_, err := NewTokenIssuer(TokenIssuerConfig{RefreshSecret: "r", AccessTTL: "15m", RefreshTTL: "30d"})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewTokenIssuer(TokenIssuerConfig{AccessSecret: "same", RefreshSecret: "same", AccessTTL: "15m", RefreshTTL: "30d"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestIssueMintsDistinctPair(t *testing.T) {
	db := setupTestDB(t)
	issuer := newTestIssuer(t)
	user := createTestUser(t, db)

	pair, err := issuer.Issue(context.Background(), db, user)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), access.Subject)
	assert.Equal(t, models.RoleUser, access.Role)
	assert.Equal(t, models.ProviderFacebook, access.Provider)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), access.ExpiresAt.Time, 5*time.Second)

	refresh, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, refreshTokenType, refresh.Type)
	assert.Equal(t, user.ID.String(), refresh.Subject)
	assert.NotEqual(t, access.ID, refresh.ID)

	var records []models.RefreshToken
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, hashTokenID(refresh.ID), records[0].TokenHash)
	assert.Equal(t, user.ID, records[0].UserID)
	assert.False(t, records[0].Revoked)
	assert.WithinDuration(t, refresh.ExpiresAt.Time, records[0].ExpiresAt, time.Second)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	db := setupTestDB(t)
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue(context.Background(), db, createTestUser(t, db))
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRefreshRequiresType(t *testing.T) {
	issuer := newTestIssuer(t)

	// Correct key and claims but no type marker.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testRefreshSecret))
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	issuer := newTestIssuer(t)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, RefreshClaims{
		Type: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Subject:   "user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	issuer := newTestIssuer(t)
	now := time.Now()
	issuer.now = fixedClock(&now)

	pair, err := issuer.Issue(context.Background(), db, createTestUser(t, db))
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = issuer.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)

	now = now.Add(31 * 24 * time.Hour)
	_, err = issuer.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssueRejectsBadTTL(t *testing.T) {
	db := setupTestDB(t)
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     "soon",
		RefreshTTL:    "30d",
	})
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), db, createTestUser(t, db))
	assert.ErrorIs(t, err, ErrConfiguration)

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.Zero(t, count)
}
