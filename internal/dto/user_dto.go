package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	Description *string `json:"description" validate:"omitempty,max=500"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,url"`
}

// PublicUserResponse is what anyone may see about a user.
type PublicUserResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	PhotoURL    *string   `json:"photoUrl"`
	Description *string   `json:"description"`
	Address     *string   `json:"address"`
	Provider    string    `json:"provider"`
	Role        string    `json:"role"`
}

func NewPublicUserResponse(u *models.User) PublicUserResponse {
	return PublicUserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		Description: u.Description,
		Address:     u.Address,
		Provider:    string(u.Provider),
		Role:        string(u.Role),
	}
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       *string    `json:"email"`
	PhotoURL    *string    `json:"photoUrl"`
	Description *string    `json:"description"`
	Address     *string    `json:"address"`
	Provider    string     `json:"provider"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		Description: u.Description,
		Address:     u.Address,
		Provider:    string(u.Provider),
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
	}
}
