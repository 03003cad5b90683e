package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func facebookProfile(id string) *SocialProfile {
	return &SocialProfile{
		Provider:       models.ProviderFacebook,
		ProviderUserID: id,
		Name:           "Grace Hopper",
		Email:          strPtr("grace@example.com"),
		AvatarURL:      strPtr("https://cdn.example.com/grace-1.jpg"),
	}
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, facebookProfile("fb-1"))
	require.NoError(t, err)
	second, err := svc.FindOrCreate(ctx, facebookProfile("fb-1"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoleUser, first.Role)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFindOrCreateAdvancesLastLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(&now)

	first, err := svc.FindOrCreate(ctx, facebookProfile("fb-1"))
	require.NoError(t, err)
	require.NotNil(t, first.LastLoginAt)
	firstLogin := *first.LastLoginAt

	now = now.Add(time.Minute)
	second, err := svc.FindOrCreate(ctx, facebookProfile("fb-1"))
	require.NoError(t, err)
	require.NotNil(t, second.LastLoginAt)
	assert.True(t, second.LastLoginAt.After(firstLogin))

	stored, err := svc.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastLoginAt.Equal(now))
}

func TestFindOrCreateMergePolicy(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	sparse := &SocialProfile{
		Provider:       models.ProviderFacebook,
		ProviderUserID: "fb-2",
		Name:           "",
	}
	created, err := svc.FindOrCreate(ctx, sparse)
	require.NoError(t, err)
	assert.Nil(t, created.Email)
	assert.Nil(t, created.PhotoURL)

	// Empty fields are backfilled.
	full := facebookProfile("fb-2")
	updated, err := svc.FindOrCreate(ctx, full)
	require.NoError(t, err)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "grace@example.com", *updated.Email)
	assert.Equal(t, "Grace Hopper", updated.Name)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, "https://cdn.example.com/grace-1.jpg", *updated.PhotoURL)

	// Set fields are kept; the avatar follows the provider.
	changed := facebookProfile("fb-2")
	changed.Name = "G. Hopper"
	changed.Email = strPtr("other@example.com")
	changed.AvatarURL = strPtr("https://cdn.example.com/grace-2.jpg")
	_, err = svc.FindOrCreate(ctx, changed)
	require.NoError(t, err)

	stored, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", stored.Name)
	assert.Equal(t, "grace@example.com", *stored.Email)
	assert.Equal(t, "https://cdn.example.com/grace-2.jpg", *stored.PhotoURL)

	// A profile without avatar leaves the stored one alone.
	_, err = svc.FindOrCreate(ctx, sparse)
	require.NoError(t, err)
	stored, err = svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/grace-2.jpg", *stored.PhotoURL)
}

func TestFindOrCreateSeparatesProviders(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	fb, err := svc.FindOrCreate(ctx, facebookProfile("same-id"))
	require.NoError(t, err)

	ig, err := svc.FindOrCreate(ctx, &SocialProfile{
		Provider:       models.ProviderInstagram,
		ProviderUserID: "same-id",
		Name:           "grace.h",
	})
	require.NoError(t, err)
	assert.NotEqual(t, fb.ID, ig.ID)
}

func TestFindOrCreateEmailOwnedByOtherIdentity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	fb, err := svc.FindOrCreate(ctx, facebookProfile("fb-3"))
	require.NoError(t, err)

	google := &SocialProfile{
		Provider:       models.ProviderGoogle,
		ProviderUserID: "g-3",
		Name:           "Grace",
		Email:          strPtr("grace@example.com"),
	}
	created, err := svc.FindOrCreate(ctx, google)
	require.NoError(t, err)
	assert.NotEqual(t, fb.ID, created.ID)
	assert.Nil(t, created.Email)

	again, err := svc.FindOrCreate(ctx, google)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Nil(t, again.Email)
}

func TestFindByIDNotFound(t *testing.T) {
	svc := NewIdentityService(setupTestDB(t))

	_, err := svc.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	user, err := svc.FindOrCreate(ctx, facebookProfile("fb-4"))
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Description: strPtr("Compiler pioneer"),
		Address:     strPtr("Arlington, VA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Compiler pioneer", *updated.Description)

	stored, err := svc.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Compiler pioneer", *stored.Description)
	assert.Equal(t, "Arlington, VA", *stored.Address)
	assert.Equal(t, "https://cdn.example.com/grace-1.jpg", *stored.PhotoURL)

	_, err = svc.UpdateProfile(ctx, uuid.New(), ProfileUpdate{Address: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindOrCreateResolvesConcurrentInsert(t *testing.T) {
	// Without the default transaction the competing insert can use the
	// single pooled connection between our lookup and our create.
	db := setupTestDB(t).Session(&gorm.Session{SkipDefaultTransaction: true})
	svc := NewIdentityService(db)

	winnerID := uuid.New()
	var raced bool
	err := db.Callback().Create().Before("gorm:create").Register("test:competing_login", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		raced = true
		providerUserID := "fb-race"
		winner := &models.User{
			ID:             winnerID,
			Name:           "Grace H.",
			Provider:       models.ProviderFacebook,
			ProviderUserID: &providerUserID,
			Role:           models.RoleUser,
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(winner).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)

	user, err := svc.FindOrCreate(context.Background(), facebookProfile("fb-race"))
	require.NoError(t, err)
	assert.True(t, raced)
	assert.Equal(t, winnerID, user.ID)
	require.NotNil(t, user.Email)
	assert.Equal(t, "grace@example.com", *user.Email)
	require.NotNil(t, user.LastLoginAt)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", winnerID).Error)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "grace@example.com", *stored.Email)
}
