package connections

import (
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
)

// ConnectionDTO is the transport shape for a raw connection edge.
type ConnectionDTO struct {
	ID         uuid.UUID              `json:"id"`
	SenderID   uuid.UUID              `json:"sender_id"`
	ReceiverID uuid.UUID              `json:"receiver_id"`
	Status     enums.ConnectionStatus `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// ConnectionWithUserDTO pairs an edge with the counterpart's profile and the
// number of connections the caller shares with them.
type ConnectionWithUserDTO struct {
	ID          uuid.UUID              `json:"id"`
	Status      enums.ConnectionStatus `json:"status"`
	User        users.UserDTO          `json:"user"`
	MutualCount int64                  `json:"mutual_count"`
	CreatedAt   time.Time              `json:"created_at"`
}

// SendRequestDTO initiates a connection request.
type SendRequestDTO struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid4"`
}

// RespondDTO resolves a pending request.
type RespondDTO struct {
	Action string `json:"action" validate:"required,oneof=ACCEPT REJECT"`
}

// RequestDirection selects which side of pending requests to list.
type RequestDirection string

const (
	DirectionIncoming RequestDirection = "incoming"
	DirectionOutgoing RequestDirection = "outgoing"
)

func fromModel(c *models.Connection) *ConnectionDTO {
	if c == nil {
		return nil
	}
	return &ConnectionDTO{
		ID:         c.ID,
		SenderID:   c.SenderID,
		ReceiverID: c.ReceiverID,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// counterpartID picks the non-self participant of an edge.
func counterpartID(c models.Connection, selfID uuid.UUID) uuid.UUID {
	if c.SenderID == selfID {
		return c.ReceiverID
	}
	return c.SenderID
}
