package connections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
)

// Repository encapsulates connection-edge persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a connections repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending edge. The pair_key unique index rejects a
// concurrent duplicate for the same unordered pair.
func (r *Repository) Create(ctx context.Context, conn *models.Connection) error {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	if conn.PairKey == "" {
		conn.PairKey = models.PairKeyFor(conn.SenderID, conn.ReceiverID)
	}
	if conn.Status == "" {
		conn.Status = enums.ConnectionStatusPending
	}
	return r.db.WithContext(ctx).Create(conn).Error
}

// FindByID loads an edge by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindByPair loads the single edge for an unordered user pair, if any.
func (r *Repository) FindByPair(ctx context.Context, a, b uuid.UUID) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).
		Where("pair_key = ?", models.PairKeyFor(a, b)).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ResolvePending flips a pending edge to the given terminal status. Returns
// false when the edge was already resolved by a concurrent request.
func (r *Repository) ResolvePending(ctx context.Context, id uuid.UUID, status enums.ConnectionStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, enums.ConnectionStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReopenRejected re-arms a rejected edge as a fresh pending request with the
// supplied direction. Returns false when the edge left REJECTED concurrently.
func (r *Repository) ReopenRejected(ctx context.Context, id, senderID, receiverID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, enums.ConnectionStatusRejected).
		Updates(map[string]any{
			"sender_id":   senderID,
			"receiver_id": receiverID,
			"status":      enums.ConnectionStatusPending,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the edge outright. Removal is a hard delete so the pair can
// connect again later.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Connection{}, "id = ?", id).Error
}

// ListByStatus returns all edges involving the user in the given state,
// newest first.
func (r *Repository) ListByStatus(ctx context.Context, userID uuid.UUID, status enums.ConnectionStatus) ([]models.Connection, error) {
	var rows []models.Connection
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, status).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPending returns the user's pending requests on one side of the edge.
func (r *Repository) ListPending(ctx context.Context, userID uuid.UUID, direction RequestDirection) ([]models.Connection, error) {
	column := "receiver_id"
	if direction == DirectionOutgoing {
		column = "sender_id"
	}
	var rows []models.Connection
	err := r.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", userID, enums.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AcceptedPartnerIDs returns the ids of everyone the user is connected with.
func (r *Repository) AcceptedPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.ListByStatus(ctx, userID, enums.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}
	partners := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		partners = append(partners, counterpartID(row, userID))
	}
	return partners, nil
}

// MutualCounts computes, for each candidate, how many accepted partners they
// share with the caller. Two queries regardless of candidate count.
func (r *Repository) MutualCounts(ctx context.Context, userID uuid.UUID, otherIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(otherIDs))
	if len(otherIDs) == 0 {
		return counts, nil
	}

	callerPartners, err := r.AcceptedPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	callerSet := make(map[uuid.UUID]struct{}, len(callerPartners))
	for _, id := range callerPartners {
		callerSet[id] = struct{}{}
	}

	var edges []models.Connection
	err = r.db.WithContext(ctx).
		Where("(sender_id IN ? OR receiver_id IN ?) AND status = ?", otherIDs, otherIDs, enums.ConnectionStatusAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	candidates := make(map[uuid.UUID]struct{}, len(otherIDs))
	for _, id := range otherIDs {
		counts[id] = 0
		candidates[id] = struct{}{}
	}

	for _, edge := range edges {
		for _, candidate := range []uuid.UUID{edge.SenderID, edge.ReceiverID} {
			if _, ok := candidates[candidate]; !ok {
				continue
			}
			partner := counterpartID(edge, candidate)
			if partner == userID || partner == candidate {
				continue
			}
			if _, shared := callerSet[partner]; shared {
				counts[candidate]++
			}
		}
	}
	return counts, nil
}
