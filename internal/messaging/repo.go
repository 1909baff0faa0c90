package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
)

// Repository persists direct messages. Conversations are never stored;
// they are derived from the message rows at read time.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a messaging repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new message.
func (r *Repository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListBetween returns every message exchanged between the two users in
// chronological order.
func (r *Repository) ListBetween(ctx context.Context, a, b uuid.UUID) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReadFrom stamps every unread message sent by the counterpart to the
// caller and reports how many rows were updated.
func (r *Repository) MarkReadFrom(ctx context.Context, counterpartID, callerID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", counterpartID, callerID).
		Update("read_at", now)
	return result.RowsAffected, result.Error
}

// ListInvolving returns every message the user sent or received, newest
// first. Conversation grouping happens in the service.
func (r *Repository) ListInvolving(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
