package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
)

// ListInput bundles filters with pagination parameters.
type ListInput struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// UserList wraps a page of accounts plus the next page cursor.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// Service exposes the admin account management operations.
type Service interface {
	ListUsers(ctx context.Context, input ListInput) (*UserList, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a users service with the required dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListUsers(ctx context.Context, input ListInput) (*UserList, error) {
	if input.Filters.Role != nil && !input.Filters.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role filter")
	}

	rows, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	page := pagination.NewPage(rows, input.Limit, func(u models.User) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	})

	result := &UserList{
		Users:      make([]UserDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Users = append(result.Users, *FromModel(&page.Items[i]))
	}
	return result, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

// SetUserActive enables or suspends an account. Admin accounts cannot suspend
// themselves through this path; the router only exposes it to admins.
func (s *service) SetUserActive(ctx context.Context, id uuid.UUID, active bool) (*UserDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Role == enums.RoleAdmin && !active {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be suspended")
	}
	if user.IsActive == active {
		return FromModel(user), nil
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	user.IsActive = active
	return FromModel(user), nil
}
