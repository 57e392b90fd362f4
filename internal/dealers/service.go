package dealers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db"
	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes dealership management operations.
type Service interface {
	ListDealers(ctx context.Context) ([]DealerDTO, error)
	GetDealer(ctx context.Context, id uuid.UUID) (*DealerDTO, error)
	CreateDealer(ctx context.Context, input CreateDealerInput) (*DealerDTO, error)
	UpdateDealer(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*DealerDTO, error)
	DeleteDealer(ctx context.Context, id uuid.UUID) error
}

// CreateDealerInput holds the validated payload to create a dealer.
type CreateDealerInput struct {
	Name    string
	Code    string
	Address string
	City    string
	Phone   *string
	Email   *string
}

// UpdateDealerInput holds optional mutation values for a dealer.
type UpdateDealerInput struct {
	Name     *string
	Address  *string
	City     *string
	Phone    *string
	Email    *string
	IsActive *bool
}

// DealerDTO is the read model returned to controllers.
type DealerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type service struct {
	repo Repository
}

// NewService builds a dealer service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dealers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListDealers(ctx context.Context) ([]DealerDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealers")
	}
	dtos := make([]DealerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) GetDealer(ctx context.Context, id uuid.UUID) (*DealerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	dealer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	return toDTO(dealer), nil
}

func (s *service) CreateDealer(ctx context.Context, input CreateDealerInput) (*DealerDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if strings.TrimSpace(input.City) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}

	dealer := &models.Dealer{
		Name:     strings.TrimSpace(input.Name),
		Code:     strings.ToUpper(strings.TrimSpace(input.Code)),
		Address:  strings.TrimSpace(input.Address),
		City:     strings.TrimSpace(input.City),
		Phone:    input.Phone,
		Email:    input.Email,
		IsActive: true,
	}
	created, err := s.repo.Create(ctx, dealer)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_dealers_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "dealer code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dealer")
	}
	return toDTO(created), nil
}

func (s *service) UpdateDealer(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*DealerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		updates["city"] = strings.TrimSpace(*input.City)
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dealer")
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload dealer")
	}
	return toDTO(updated), nil
}

func (s *service) DeleteDealer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete dealer")
	}
	return nil
}

func toDTO(dealer *models.Dealer) *DealerDTO {
	if dealer == nil {
		return nil
	}
	return &DealerDTO{
		ID:        dealer.ID,
		Name:      dealer.Name,
		Code:      dealer.Code,
		Address:   dealer.Address,
		City:      dealer.City,
		Phone:     dealer.Phone,
		Email:     dealer.Email,
		IsActive:  dealer.IsActive,
		CreatedAt: dealer.CreatedAt,
	}
}
