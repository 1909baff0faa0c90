package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	"github.com/ABBA-DALHATU/football-network-app/pkg/identity"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a directory record for a newly seen identity subject.
func (r *Repository) Create(ctx context.Context, ident identity.Identity) (*models.User, error) {
	user := &models.User{
		ID:         uuid.New(),
		ExternalID: ident.Subject,
		FullName:   ident.FullName,
		Email:      ident.Email,
		Role:       enums.RoleNone,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByExternalID retrieves the user for an identity-provider subject.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SyncIdentity refreshes the name/email columns when the provider's copy moved.
func (r *Repository) SyncIdentity(ctx context.Context, id uuid.UUID, ident identity.Identity) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"full_name": ident.FullName,
			"email":     ident.Email,
		}).Error
}

// UpdateProfile applies the provided column updates and returns the fresh row.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// ClaimRole sets the role only while the row still carries NONE. Returns
// false when the role was already claimed.
func (r *Repository) ClaimRole(ctx context.Context, id uuid.UUID, role enums.Role) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, enums.RoleNone).
		Update("role", role)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Search matches users by name or email, excluding the caller.
func (r *Repository) Search(ctx context.Context, excludeID uuid.UUID, query string, limit int) ([]models.User, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("full_name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDs loads the named users in one query.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
