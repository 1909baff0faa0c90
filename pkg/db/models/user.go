package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
)

// User is the internal identity record. ExternalID is the stable subject
// identifier issued by the identity provider; exactly one User exists per
// authenticated subject and the row is created lazily on first contact.
type User struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalID    string               `gorm:"column:external_id;type:text;not null;uniqueIndex"`
	FullName      string               `gorm:"column:full_name;type:text;not null"`
	Email         string               `gorm:"column:email;type:text;not null"`
	ImageURL      *string              `gorm:"column:image_url;type:text"`
	Role          enums.Role           `gorm:"column:role;type:text;not null;default:NONE"`
	Bio           *string              `gorm:"column:bio;type:text"`
	PreferredFoot *enums.PreferredFoot `gorm:"column:preferred_foot;type:text"`
	FormerClub    *string              `gorm:"column:former_club;type:text"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
