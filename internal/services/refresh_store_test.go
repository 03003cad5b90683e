package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*RefreshTokenStore, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewRefreshTokenStore(db, newTestIssuer(t)), db
}

func TestRotateIsSingleUse(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	first, err := store.Issue(ctx, user)
	require.NoError(t, err)

	second, err := store.Rotate(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := store.issuer.VerifyAccess(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)

	_, err = store.Rotate(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnknownToken)

	// The replacement is still good.
	_, err = store.Rotate(ctx, second.RefreshToken)
	assert.NoError(t, err)

	var active int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("revoked = ?", false).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

func TestConcurrentRotationHasOneWinner(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		errs      []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Rotate(ctx, pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrUnknownToken)
	}

	var total int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}

func TestRotateHonorsStoredExpiry(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	// The signed token is still valid for 30 days, but the record says
	// otherwise.
	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("revoked = ?", false).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = store.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRotateRejectsExpiredToken(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	store.issuer.now = fixedClock(&now)
	store.now = fixedClock(&now)

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	now = now.Add(31 * 24 * time.Hour)
	_, err = store.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRotateRejectsMalformed(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Rotate(context.Background(), "definitely.not.valid")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateUnknownSubject(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	pair, err := store.Issue(ctx, user)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	_, err = store.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestRevokeIsIdempotent(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	n, err := store.Revoke(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = store.Revoke(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = store.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestRevokeAcceptsExpiredToken(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	store.issuer.now = fixedClock(&now)

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	now = now.Add(60 * 24 * time.Hour)
	n, err := store.Revoke(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var record models.RefreshToken
	require.NoError(t, db.First(&record).Error)
	assert.True(t, record.Revoked)
}

func TestRevokeRejectsForgedToken(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	pair, err := store.Issue(ctx, createTestUser(t, db))
	require.NoError(t, err)

	_, err = store.Revoke(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
	// An access token is signed with the other key.
	_, err = store.Revoke(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeAll(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)
	other := createTestUser(t, db)

	var pairs []*TokenPair
	for range 3 {
		pair, err := store.Issue(ctx, user)
		require.NoError(t, err)
		pairs = append(pairs, pair)
	}
	otherPair, err := store.Issue(ctx, other)
	require.NoError(t, err)

	n, err := store.RevokeAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, pair := range pairs {
		_, err := store.Rotate(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrUnknownToken)
	}
	_, err = store.Rotate(ctx, otherPair.RefreshToken)
	assert.NoError(t, err)

	n, err = store.RevokeAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
