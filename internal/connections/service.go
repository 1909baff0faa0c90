package connections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db"
	dbmodels "github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
)

const mutualCountTTL = 5 * time.Minute

// mutualCache is the subset of the redis client used for mutual-count caching.
type mutualCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	MutualCountKey(pairKey string) string
}

// ServiceParams groups dependencies for the connections service. Cache and
// Notifier are optional.
type ServiceParams struct {
	Repo     *Repository
	Users    *users.Repository
	Notifier notifications.Emitter
	Cache    mutualCache
}

// Service exposes the connection-request state machine and derived views.
type Service interface {
	SendRequest(ctx context.Context, callerID, receiverID uuid.UUID) (*ConnectionDTO, error)
	Respond(ctx context.Context, callerID, requestID uuid.UUID, accept bool) (*ConnectionDTO, error)
	Cancel(ctx context.Context, callerID, requestID uuid.UUID) error
	Remove(ctx context.Context, callerID, connectionID uuid.UUID) error
	List(ctx context.Context, callerID uuid.UUID) ([]ConnectionWithUserDTO, error)
	Requests(ctx context.Context, callerID uuid.UUID, direction RequestDirection) ([]ConnectionWithUserDTO, error)
	MutualCount(ctx context.Context, callerID, otherID uuid.UUID) (int64, error)
}

type service struct {
	repo     *Repository
	users    *users.Repository
	notifier notifications.Emitter
	cache    mutualCache
}

// NewService builds a connections service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "connections repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		notifier: params.Notifier,
		cache:    params.Cache,
	}, nil
}

// SendRequest creates (or re-arms) the single edge for the caller/receiver
// pair. A rejected edge becomes a fresh pending request; pending and accepted
// edges conflict.
func (s *service) SendRequest(ctx context.Context, callerID, receiverID uuid.UUID) (*ConnectionDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if receiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id is required")
	}
	if callerID == receiverID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot send a connection request to yourself")
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "receiver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receiver")
	}

	existing, err := s.repo.FindByPair(ctx, callerID, receiverID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing edge")
	}

	if existing != nil {
		switch existing.Status {
		case enums.ConnectionStatusPending:
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a request between these users is already pending")
		case enums.ConnectionStatusAccepted:
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "users are already connected")
		case enums.ConnectionStatusRejected:
			reopened, err := s.repo.ReopenRejected(ctx, existing.ID, callerID, receiverID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen request")
			}
			if !reopened {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "a request between these users is already pending")
			}
			fresh, err := s.repo.FindByID(ctx, existing.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
			}
			s.notifyRequest(ctx, callerID, receiverID)
			return fromModel(fresh), nil
		}
	}

	conn := &dbmodels.Connection{
		SenderID:   callerID,
		ReceiverID: receiverID,
	}
	if err := s.repo.Create(ctx, conn); err != nil {
		if db.IsUniqueViolation(err, "connections_pair_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a request between these users already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}

	s.notifyRequest(ctx, callerID, receiverID)
	return fromModel(conn), nil
}

// Respond resolves a pending request. Only the receiver may respond, and only
// while the request is still pending.
func (s *service) Respond(ctx context.Context, callerID, requestID uuid.UUID, accept bool) (*ConnectionDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	conn, err := s.loadEdge(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if conn.ReceiverID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the receiver can respond to a request")
	}
	if conn.Status != enums.ConnectionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer pending").
			WithDetails(map[string]any{"status": string(conn.Status)})
	}

	target := enums.ConnectionStatusRejected
	if accept {
		target = enums.ConnectionStatusAccepted
	}
	resolved, err := s.repo.ResolvePending(ctx, conn.ID, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve request")
	}
	if !resolved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer pending")
	}

	conn.Status = target
	if accept {
		s.invalidateMutual(ctx, conn.SenderID, conn.ReceiverID)
		s.notifyAccepted(ctx, callerID, conn.SenderID)
	}
	return fromModel(conn), nil
}

// Cancel withdraws a pending request. Only the sender may cancel.
func (s *service) Cancel(ctx context.Context, callerID, requestID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	conn, err := s.loadEdge(ctx, requestID)
	if err != nil {
		return err
	}
	if conn.SenderID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the sender can cancel a request")
	}
	if conn.Status != enums.ConnectionStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "request is no longer pending").
			WithDetails(map[string]any{"status": string(conn.Status)})
	}

	if err := s.repo.Delete(ctx, conn.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel request")
	}
	return nil
}

// Remove severs an accepted connection. Either party may remove; the edge is
// hard-deleted so the pair can reconnect later.
func (s *service) Remove(ctx context.Context, callerID, connectionID uuid.UUID) error {
	if callerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	conn, err := s.loadEdge(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.SenderID != callerID && conn.ReceiverID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only a participant can remove a connection")
	}
	if conn.Status != enums.ConnectionStatusAccepted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "connection is not accepted").
			WithDetails(map[string]any{"status": string(conn.Status)})
	}

	if err := s.repo.Delete(ctx, conn.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove connection")
	}
	s.invalidateMutual(ctx, conn.SenderID, conn.ReceiverID)
	return nil
}

// List returns the caller's accepted connections with counterpart profiles
// and mutual counts, computed in a constant number of queries.
func (s *service) List(ctx context.Context, callerID uuid.UUID) ([]ConnectionWithUserDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	rows, err := s.repo.ListByStatus(ctx, callerID, enums.ConnectionStatusAccepted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list connections")
	}
	return s.decorate(ctx, callerID, rows, true)
}

// Requests lists pending requests on the chosen side of the edge.
func (s *service) Requests(ctx context.Context, callerID uuid.UUID, direction RequestDirection) ([]ConnectionWithUserDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if direction != DirectionIncoming && direction != DirectionOutgoing {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be incoming or outgoing")
	}

	rows, err := s.repo.ListPending(ctx, callerID, direction)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return s.decorate(ctx, callerID, rows, false)
}

// MutualCount returns the number of shared accepted connections between the
// caller and another user, served from cache when warm.
func (s *service) MutualCount(ctx context.Context, callerID, otherID uuid.UUID) (int64, error) {
	if callerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if otherID == uuid.Nil || otherID == callerID {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "other user id is required")
	}

	if cached, ok := s.cachedMutual(ctx, callerID, otherID); ok {
		return cached, nil
	}

	counts, err := s.repo.MutualCounts(ctx, callerID, []uuid.UUID{otherID})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count mutual connections")
	}
	count := counts[otherID]
	s.storeMutual(ctx, callerID, otherID, count)
	return count, nil
}

func (s *service) loadEdge(ctx context.Context, id uuid.UUID) (*dbmodels.Connection, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "connection id is required")
	}
	conn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "connection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load connection")
	}
	return conn, nil
}

func (s *service) decorate(ctx context.Context, callerID uuid.UUID, rows []dbmodels.Connection, withMutual bool) ([]ConnectionWithUserDTO, error) {
	counterparts := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		counterparts = append(counterparts, counterpartID(row, callerID))
	}

	profiles, err := s.users.FindByIDs(ctx, counterparts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterpart profiles")
	}
	profileByID := make(map[uuid.UUID]users.UserDTO, len(profiles))
	for i := range profiles {
		profileByID[profiles[i].ID] = *users.FromModel(&profiles[i])
	}

	var mutual map[uuid.UUID]int64
	if withMutual {
		mutual, err = s.repo.MutualCounts(ctx, callerID, counterparts)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count mutual connections")
		}
	}

	out := make([]ConnectionWithUserDTO, 0, len(rows))
	for _, row := range rows {
		other := counterpartID(row, callerID)
		profile, ok := profileByID[other]
		if !ok {
			continue
		}
		item := ConnectionWithUserDTO{
			ID:        row.ID,
			Status:    row.Status,
			User:      profile,
			CreatedAt: row.CreatedAt,
		}
		if withMutual {
			item.MutualCount = mutual[other]
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) notifyRequest(ctx context.Context, senderID, receiverID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, notifications.Event{
		UserID:  receiverID,
		Type:    enums.NotificationTypeConnectionRequest,
		Content: fmt.Sprintf("%s sent you a connection request", s.displayName(ctx, senderID)),
	})
}

func (s *service) notifyAccepted(ctx context.Context, accepterID, senderID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Emit(ctx, notifications.Event{
		UserID:  senderID,
		Type:    enums.NotificationTypeConnectionAccepted,
		Content: fmt.Sprintf("%s accepted your connection request", s.displayName(ctx, accepterID)),
	})
}

func (s *service) displayName(ctx context.Context, id uuid.UUID) string {
	user, err := s.users.FindByID(ctx, id)
	if err != nil || user.FullName == "" {
		return "Someone"
	}
	return user.FullName
}

func (s *service) cachedMutual(ctx context.Context, a, b uuid.UUID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, s.cache.MutualCountKey(dbmodels.PairKeyFor(a, b)))
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (s *service) storeMutual(ctx context.Context, a, b uuid.UUID, count int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, s.cache.MutualCountKey(dbmodels.PairKeyFor(a, b)), strconv.FormatInt(count, 10), mutualCountTTL)
}

func (s *service) invalidateMutual(ctx context.Context, a, b uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.MutualCountKey(dbmodels.PairKeyFor(a, b)))
}
