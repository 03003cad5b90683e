package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database per test keeps tests isolated while
	// letting the single pooled connection see the migrated schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return db
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     "15m",
		RefreshTTL:    "30d",
	})
	require.NoError(t, err)
	return issuer
}

func newTestStateCodec(t *testing.T) *StateCodec {
	t.Helper()
	codec, err := NewStateCodec([]byte("state-secret-for-tests"))
	require.NoError(t, err)
	return codec
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	providerUserID := uuid.NewString()
	user := &models.User{
		Name:           "Ada",
		Provider:       models.ProviderFacebook,
		ProviderUserID: &providerUserID,
		Role:           models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fixedClock returns a clock that reads *now, so tests can advance it.
func fixedClock(now *time.Time) func() time.Time {
	return func() time.Time { return *now }
}

func strPtr(s string) *string {
	return &s
}
