package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
)

// SendMessageDTO is the request body for sending a direct message.
type SendMessageDTO struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid4"`
	Content    string `json:"content" validate:"required,max=4000"`
}

// MessageDTO is a single directed message.
type MessageDTO struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    string     `json:"content"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ConversationDTO is a derived view: the counterpart, the most recent
// message exchanged with them, and how many of their messages the caller
// has not read yet.
type ConversationDTO struct {
	User        users.UserDTO `json:"user"`
	LastMessage MessageDTO    `json:"last_message"`
	UnreadCount int64         `json:"unread_count"`
}

func fromModel(m *models.Message) *MessageDTO {
	return &MessageDTO{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

func fromModels(rows []models.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out
}
