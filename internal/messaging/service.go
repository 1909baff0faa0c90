package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
)

// ServiceParams groups dependencies for the messaging service. Notifier is
// optional.
type ServiceParams struct {
	Repo     *Repository
	Users    *users.Repository
	Notifier notifications.Emitter
}

// Service exposes direct messaging and the derived conversation view.
type Service interface {
	SendMessage(ctx context.Context, callerID, receiverID uuid.UUID, content string) (*MessageDTO, error)
	GetMessages(ctx context.Context, callerID, otherID uuid.UUID) ([]MessageDTO, error)
	GetConversations(ctx context.Context, callerID uuid.UUID) ([]ConversationDTO, error)
}

type service struct {
	repo     *Repository
	users    *users.Repository
	notifier notifications.Emitter
}

// NewService builds a messaging service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "messaging repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		notifier: params.Notifier,
	}, nil
}

// SendMessage stores a directed message and nudges the receiver with a
// best-effort notification.
func (s *service) SendMessage(ctx context.Context, callerID, receiverID uuid.UUID, content string) (*MessageDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if receiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver is required")
	}
	if callerID == receiverID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "receiver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receiver")
	}

	msg := &models.Message{
		SenderID:   callerID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}

	s.notifyReceiver(ctx, callerID, receiverID)
	return fromModel(msg), nil
}

// GetMessages returns the full thread between the caller and the other user
// in chronological order. Fetching a thread marks the counterpart's unread
// messages as read.
func (s *service) GetMessages(ctx context.Context, callerID, otherID uuid.UUID) ([]MessageDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if otherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counterpart is required")
	}

	rows, err := s.repo.ListBetween(ctx, callerID, otherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	if _, err := s.repo.MarkReadFrom(ctx, otherID, callerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}
	return fromModels(rows), nil
}

// GetConversations derives the caller's conversation list: one entry per
// counterpart, carrying the latest message and the unread count, ordered by
// most recent activity.
func (s *service) GetConversations(ctx context.Context, callerID uuid.UUID) ([]ConversationDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	rows, err := s.repo.ListInvolving(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	if len(rows) == 0 {
		return []ConversationDTO{}, nil
	}

	// rows arrive newest first, so the first message seen per counterpart
	// is the conversation head.
	order := make([]uuid.UUID, 0)
	latest := make(map[uuid.UUID]*models.Message)
	unread := make(map[uuid.UUID]int64)
	for i := range rows {
		msg := &rows[i]
		counterpart := msg.SenderID
		if counterpart == callerID {
			counterpart = msg.ReceiverID
		}
		if _, seen := latest[counterpart]; !seen {
			latest[counterpart] = msg
			order = append(order, counterpart)
		}
		if msg.ReceiverID == callerID && msg.ReadAt == nil {
			unread[counterpart]++
		}
	}

	profiles, err := s.users.FindByIDs(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterparts")
	}
	byID := make(map[uuid.UUID]users.UserDTO, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = *users.FromModel(&profiles[i])
	}

	out := make([]ConversationDTO, 0, len(order))
	for _, counterpart := range order {
		profile, ok := byID[counterpart]
		if !ok {
			continue
		}
		out = append(out, ConversationDTO{
			User:        profile,
			LastMessage: *fromModel(latest[counterpart]),
			UnreadCount: unread[counterpart],
		})
	}
	return out, nil
}

func (s *service) notifyReceiver(ctx context.Context, senderID, receiverID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, notifications.Event{
		UserID:  receiverID,
		Type:    enums.NotificationTypeMessage,
		Content: fmt.Sprintf("New message from %s", s.displayName(ctx, senderID)),
	})
}

func (s *service) displayName(ctx context.Context, id uuid.UUID) string {
	user, err := s.users.FindByID(ctx, id)
	if err != nil || user.FullName == "" {
		return "Someone"
	}
	return user.FullName
}
