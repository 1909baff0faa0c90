package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
)

// Connection is a directed request record between two users. PairKey is
// the lexicographically ordered "min:max" of the two user ids; its unique
// index guarantees at most one edge per unordered pair even under
// concurrent sends.
type Connection struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID   uuid.UUID              `gorm:"column:sender_id;type:uuid;not null;index"`
	ReceiverID uuid.UUID              `gorm:"column:receiver_id;type:uuid;not null;index"`
	PairKey    string                 `gorm:"column:pair_key;type:text;not null;uniqueIndex"`
	Status     enums.ConnectionStatus `gorm:"column:status;type:text;not null;default:PENDING"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// PairKeyFor builds the canonical unordered-pair key for two user ids.
func PairKeyFor(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + ":" + hi
}
