package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ABBA-DALHATU/football-network-app/pkg/db"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
	"github.com/ABBA-DALHATU/football-network-app/pkg/identity"
)

const searchResultLimit = 10

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo *Repository
}

// Service exposes business rules for the user directory.
type Service interface {
	ResolveOrCreate(ctx context.Context, ident identity.Identity) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, callerID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error)
	SetRole(ctx context.Context, callerID uuid.UUID, dto SetRoleDTO) (*UserDTO, error)
	Search(ctx context.Context, callerID uuid.UUID, query string) ([]UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// ResolveOrCreate maps a verified identity subject onto a directory row,
// provisioning it on first contact. Concurrent first contacts race on the
// external_id unique index and the loser re-reads the winner's row.
func (s *service) ResolveOrCreate(ctx context.Context, ident identity.Identity) (*models.User, error) {
	if strings.TrimSpace(ident.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity subject is required")
	}

	user, err := s.repo.FindByExternalID(ctx, ident.Subject)
	if err == nil {
		if identityMoved(user, ident) {
			merged := ident
			if merged.FullName == "" {
				merged.FullName = user.FullName
			}
			if merged.Email == "" {
				merged.Email = user.Email
			}
			if syncErr := s.repo.SyncIdentity(ctx, user.ID, merged); syncErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, syncErr, "sync identity")
			}
			user.FullName = merged.FullName
			user.Email = merged.Email
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	created, err := s.repo.Create(ctx, ident)
	if err != nil {
		if db.IsUniqueViolation(err, "users_external_id_key") {
			existing, readErr := s.repo.FindByExternalID(ctx, ident.Subject)
			if readErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "load user after race")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

// GetByID returns any user's public profile.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

// UpdateProfile applies the caller's edits to their own profile.
func (s *service) UpdateProfile(ctx context.Context, callerID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}

	updates := map[string]any{}
	if dto.FullName != nil {
		name := strings.TrimSpace(*dto.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if dto.ImageURL != nil {
		updates["image_url"] = *dto.ImageURL
	}
	if dto.Bio != nil {
		updates["bio"] = *dto.Bio
	}
	if dto.PreferredFoot != nil {
		foot, err := enums.ParsePreferredFoot(*dto.PreferredFoot)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid preferred foot")
		}
		updates["preferred_foot"] = string(foot)
	}
	if dto.FormerClub != nil {
		updates["former_club"] = *dto.FormerClub
	}

	user, err := s.repo.UpdateProfile(ctx, callerID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return FromModel(user), nil
}

// SetRole claims the professional identity exactly once. A second attempt
// is a state conflict, not a validation failure.
func (s *service) SetRole(ctx context.Context, callerID uuid.UUID, dto SetRoleDTO) (*UserDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	role, err := enums.ParseRole(dto.Role)
	if err != nil || role == enums.RoleNone {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be one of PLAYER, SCOUT, CLUB")
	}

	claimed, err := s.repo.ClaimRole(ctx, callerID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set role")
	}
	if !claimed {
		user, readErr := s.repo.FindByID(ctx, callerID)
		if readErr != nil {
			if errors.Is(readErr, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, readErr, "user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "load user")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "role already set").
			WithDetails(map[string]any{"role": string(user.Role)})
	}

	user, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

// Search finds other users by partial name or email match. An empty query
// returns an empty result set rather than an error.
func (s *service) Search(ctx context.Context, callerID uuid.UUID, query string) ([]UserDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller is required")
	}
	if strings.TrimSpace(query) == "" {
		return []UserDTO{}, nil
	}

	rows, err := s.repo.Search(ctx, callerID, query, searchResultLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search users")
	}
	return FromModels(rows), nil
}

func identityMoved(user *models.User, ident identity.Identity) bool {
	if user == nil {
		return false
	}
	if ident.FullName != "" && ident.FullName != user.FullName {
		return true
	}
	if ident.Email != "" && ident.Email != user.Email {
		return true
	}
	return false
}
