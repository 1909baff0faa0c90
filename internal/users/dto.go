package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
)

// UserDTO is the transport shape for a directory profile.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	ImageURL      *string    `json:"image_url,omitempty"`
	Role          enums.Role `json:"role"`
	Bio           *string    `json:"bio,omitempty"`
	PreferredFoot *string    `json:"preferred_foot,omitempty"`
	FormerClub    *string    `json:"former_club,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpdateProfileDTO carries the editable profile fields. Nil pointers are
// left untouched.
type UpdateProfileDTO struct {
	FullName      *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	Bio           *string `json:"bio" validate:"omitempty,max=1000"`
	PreferredFoot *string `json:"preferred_foot" validate:"omitempty,oneof=LEFT RIGHT BOTH"`
	FormerClub    *string `json:"former_club" validate:"omitempty,max=120"`
}

// SetRoleDTO selects the professional identity after first sign-in.
type SetRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=PLAYER SCOUT CLUB"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	var foot *string
	if u.PreferredFoot != nil {
		v := string(*u.PreferredFoot)
		foot = &v
	}

	return &UserDTO{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		ImageURL:      u.ImageURL,
		Role:          u.Role,
		Bio:           u.Bio,
		PreferredFoot: foot,
		FormerClub:    u.FormerClub,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// FromModels maps a slice of user rows into DTOs.
func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
