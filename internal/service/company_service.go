package service

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/access"
	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CompanyService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CompanyRequest) (*CompanyResponse, error)
	List(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*CompanyResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req CompanyRequest) (*CompanyResponse, error)
	SoftDelete(ctx context.Context, actorID, id uuid.UUID) error
	Activate(ctx context.Context, actorID, id uuid.UUID) error
}

type companyService struct {
	db           *gorm.DB
	repo         repository.CompanyRepository
	petitionRepo repository.PetitionRepository
}

func NewCompanyService(db *gorm.DB, repo repository.CompanyRepository, petitionRepo repository.PetitionRepository) CompanyService {
	return &companyService{db: db, repo: repo, petitionRepo: petitionRepo}
}

func (s *companyService) Create(ctx context.Context, actorID uuid.UUID, req CompanyRequest) (*CompanyResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	company := model.Company{Name: req.Name}
	if err := s.repo.Create(ctx, &company); err != nil {
		return nil, err
	}

	resp := toCompanyResponse(&company)
	return &resp, nil
}

func (s *companyService) List(ctx context.Context, page, limit int) ([]CompanyResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	companies, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		result = append(result, toCompanyResponse(&companies[i]))
	}
	return result, total, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("company %s", id)
		}
		return nil, err
	}
	resp := toCompanyResponse(company)
	return &resp, nil
}

func (s *companyService) Update(ctx context.Context, actorID, id uuid.UUID, req CompanyRequest) (*CompanyResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("company %s", id)
		}
		return nil, err
	}

	company.Name = req.Name
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}

	resp := toCompanyResponse(company)
	return &resp, nil
}

// SoftDelete refuses while active petitions or active profiles still
// reference the company.
func (s *companyService) SoftDelete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company %s", id)
		}
		return err
	}
	if company.IsDeleted() {
		return apperr.ErrAlreadyDeleted
	}

	petitions, err := s.petitionRepo.CountActiveByCompany(ctx, id)
	if err != nil {
		return err
	}
	if petitions > 0 {
		return apperr.Conflict("company has %d active petitions", petitions)
	}
	profiles, err := s.repo.CountActiveHumanResources(ctx, id)
	if err != nil {
		return err
	}
	if profiles > 0 {
		return apperr.Conflict("company has %d active profiles", profiles)
	}

	company.MarkDeleted(time.Now())
	return s.repo.Update(ctx, company)
}

func (s *companyService) Activate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	company, err := s.repo.FindDeletedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company %s does not exist or is already active", id)
		}
		return err
	}

	company.MarkRestored()
	return s.repo.Update(ctx, company)
}

func (s *companyService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}
	return nil
}

func toCompanyResponse(c *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Active:    !c.IsDeleted(),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
