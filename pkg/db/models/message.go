package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a directed record between two users. Conversations are
// derived groupings keyed by the non-self participant, never stored.
type Message struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID   uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index"`
	ReceiverID uuid.UUID  `gorm:"column:receiver_id;type:uuid;not null;index"`
	Content    string     `gorm:"column:content;type:text;not null"`
	ReadAt     *time.Time `gorm:"column:read_at;type:timestamptz"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
