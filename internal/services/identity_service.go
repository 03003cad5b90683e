package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileUpdate carries user-editable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Description *string
	Address     *string
	PhotoURL    *string
}

type IdentityService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db, now: time.Now}
}

// FindOrCreate resolves a social profile to a local user, creating it on
// first login. On later logins the last-login time is refreshed, email and
// name are only backfilled when empty, and the avatar follows the provider.
func (s *IdentityService) FindOrCreate(ctx context.Context, profile *SocialProfile) (*models.User, error) {
	db := s.db.WithContext(ctx)

	user, err := findByProviderIdentity(db, profile.Provider, profile.ProviderUserID)
	if err == nil {
		if err := s.recordLogin(db, user, profile); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	now := s.now()
	providerUserID := profile.ProviderUserID
	user = &models.User{
		Name:           profile.Name,
		Email:          nonEmpty(profile.Email),
		PhotoURL:       nonEmpty(profile.AvatarURL),
		Provider:       profile.Provider,
		ProviderUserID: &providerUserID,
		Role:           models.RoleUser,
		LastLoginAt:    &now,
	}
	err = db.Create(user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Either a concurrent login created this identity first, or the email
	// already belongs to another identity.
	existing, ferr := findByProviderIdentity(db, profile.Provider, profile.ProviderUserID)
	if ferr == nil {
		if err := s.recordLogin(db, existing, profile); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if user.Email == nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Email = nil
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *IdentityService) recordLogin(db *gorm.DB, user *models.User, profile *SocialProfile) error {
	now := s.now()
	updates := map[string]any{"last_login_at": now}
	user.LastLoginAt = &now

	var backfilledEmail bool
	if isEmpty(user.Email) && !isEmpty(profile.Email) {
		updates["email"] = *profile.Email
		backfilledEmail = true
	}
	if user.Name == "" && profile.Name != "" {
		updates["name"] = profile.Name
		user.Name = profile.Name
	}
	if !isEmpty(profile.AvatarURL) {
		updates["photo_url"] = *profile.AvatarURL
		user.PhotoURL = profile.AvatarURL
	}

	err := db.Model(user).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) && backfilledEmail {
		// The provider email is taken by another identity; keep ours empty.
		delete(updates, "email")
		backfilledEmail = false
		err = db.Model(user).Updates(updates).Error
	}
	if err != nil {
		return fmt.Errorf("failed to update user on login: %w", err)
	}
	if backfilledEmail {
		user.Email = profile.Email
	}
	return nil
}

func (s *IdentityService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if update.Description != nil {
		updates["description"] = *update.Description
		user.Description = update.Description
	}
	if update.Address != nil {
		updates["address"] = *update.Address
		user.Address = update.Address
	}
	if update.PhotoURL != nil {
		updates["photo_url"] = *update.PhotoURL
		user.PhotoURL = update.PhotoURL
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func findByProviderIdentity(db *gorm.DB, provider models.AuthProvider, providerUserID string) (*models.User, error) {
	var user models.User
	err := db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isEmpty(s *string) bool {
	return s == nil || *s == ""
}

func nonEmpty(s *string) *string {
	if isEmpty(s) {
		return nil
	}
	return s
}
