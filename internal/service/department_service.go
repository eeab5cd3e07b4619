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

type DepartmentRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type DepartmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DepartmentService interface {
	Create(ctx context.Context, actorID uuid.UUID, req DepartmentRequest) (*DepartmentResponse, error)
	List(ctx context.Context, page, limit int) ([]DepartmentResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*DepartmentResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req DepartmentRequest) (*DepartmentResponse, error)
	SoftDelete(ctx context.Context, actorID, id uuid.UUID) error
	Activate(ctx context.Context, actorID, id uuid.UUID) error
}

type departmentService struct {
	db           *gorm.DB
	repo         repository.DepartmentRepository
	petitionRepo repository.PetitionRepository
}

func NewDepartmentService(db *gorm.DB, repo repository.DepartmentRepository, petitionRepo repository.PetitionRepository) DepartmentService {
	return &departmentService{db: db, repo: repo, petitionRepo: petitionRepo}
}

func (s *departmentService) Create(ctx context.Context, actorID uuid.UUID, req DepartmentRequest) (*DepartmentResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	department := model.Department{Name: req.Name}
	if err := s.repo.Create(ctx, &department); err != nil {
		return nil, err
	}

	resp := toDepartmentResponse(&department)
	return &resp, nil
}

func (s *departmentService) List(ctx context.Context, page, limit int) ([]DepartmentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	departments, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]DepartmentResponse, 0, len(departments))
	for i := range departments {
		result = append(result, toDepartmentResponse(&departments[i]))
	}
	return result, total, nil
}

func (s *departmentService) Get(ctx context.Context, id uuid.UUID) (*DepartmentResponse, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("department %s", id)
		}
		return nil, err
	}
	resp := toDepartmentResponse(department)
	return &resp, nil
}

func (s *departmentService) Update(ctx context.Context, actorID, id uuid.UUID, req DepartmentRequest) (*DepartmentResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("department %s", id)
		}
		return nil, err
	}

	department.Name = req.Name
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, err
	}

	resp := toDepartmentResponse(department)
	return &resp, nil
}

// SoftDelete refuses while active petitions still reference the department.
func (s *departmentService) SoftDelete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("department %s", id)
		}
		return err
	}
	if department.IsDeleted() {
		return apperr.ErrAlreadyDeleted
	}

	petitions, err := s.petitionRepo.CountActiveByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if petitions > 0 {
		return apperr.Conflict("department has %d active petitions", petitions)
	}

	department.MarkDeleted(time.Now())
	return s.repo.Update(ctx, department)
}

func (s *departmentService) Activate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	department, err := s.repo.FindDeletedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("department %s does not exist or is already active", id)
		}
		return err
	}

	department.MarkRestored()
	return s.repo.Update(ctx, department)
}

func (s *departmentService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}
	return nil
}

func toDepartmentResponse(d *model.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        d.ID.String(),
		Name:      d.Name,
		Active:    !d.IsDeleted(),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
}
