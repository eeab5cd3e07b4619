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

// --- DTOs ---

type CreateHumanResourceRequest struct {
	UserID       string `json:"user_id" binding:"required,uuid"`
	DepartmentID string `json:"department_id"`
	CompanyID    string `json:"company_id" binding:"required,uuid"`
	Biography    string `json:"biography"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
}

type UpdateHumanResourceRequest struct {
	DepartmentID *string `json:"department_id"`
	Biography    *string `json:"biography"`
	Phone        *string `json:"phone"`
}

type HumanResourceResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Username       string `json:"username,omitempty"`
	Role           string `json:"role,omitempty"`
	DepartmentID   string `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	CompanyID      string `json:"company_id"`
	CompanyName    string `json:"company_name,omitempty"`
	Biography      string `json:"biography,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}

type LinkedCompanyResponse struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name,omitempty"`
}

// --- Interface ---

type HumanResourceService interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreateHumanResourceRequest) (*HumanResourceResponse, error)
	GetByUserID(ctx context.Context, actorID, userID uuid.UUID) (*HumanResourceResponse, error)
	List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]HumanResourceResponse, int64, error)
	Update(ctx context.Context, actorID, userID uuid.UUID, req UpdateHumanResourceRequest) (*HumanResourceResponse, error)

	LinkCompany(ctx context.Context, actorID, userID, companyID uuid.UUID) error
	UnlinkCompany(ctx context.Context, actorID, userID, companyID uuid.UUID) error
	ListLinkedCompanies(ctx context.Context, actorID, userID uuid.UUID) ([]LinkedCompanyResponse, error)
}

type humanResourceService struct {
	db             *gorm.DB
	repo           repository.HumanResourceRepository
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
	companyRepo    repository.CompanyRepository
}

func NewHumanResourceService(
	db *gorm.DB,
	repo repository.HumanResourceRepository,
	userRepo repository.UserRepository,
	departmentRepo repository.DepartmentRepository,
	companyRepo repository.CompanyRepository,
) HumanResourceService {
	return &humanResourceService{
		db:             db,
		repo:           repo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		companyRepo:    companyRepo,
	}
}

// --- Implementation ---

func (s *humanResourceService) Create(ctx context.Context, actorID uuid.UUID, req CreateHumanResourceRequest) (*HumanResourceResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation("user_id", "invalid user id")
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, apperr.Validation("company_id", "invalid company id")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", userID)
		}
		return nil, err
	}
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, apperr.Conflict("user already has a profile")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("company %s", companyID)
		}
		return nil, err
	}

	var departmentID *uuid.UUID
	if req.DepartmentID != "" {
		// Client profiles are company-scoped; a department makes no sense for them.
		if user.Role == model.RoleClient {
			return nil, apperr.Validation("department_id", "clients cannot belong to a department")
		}
		id, err := uuid.Parse(req.DepartmentID)
		if err != nil {
			return nil, apperr.Validation("department_id", "invalid department id")
		}
		if _, err := s.departmentRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("department %s", id)
			}
			return nil, err
		}
		departmentID = &id
	}

	hr := model.HumanResource{
		UserID:       userID,
		DepartmentID: departmentID,
		CompanyID:    companyID,
		Biography:    req.Biography,
		Phone:        req.Phone,
	}
	if err := s.repo.Create(ctx, &hr); err != nil {
		return nil, err
	}

	loaded, err := s.repo.FindByUserIDWithRelations(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toHumanResourceResponse(loaded)
	return &resp, nil
}

func (s *humanResourceService) GetByUserID(ctx context.Context, actorID, userID uuid.UUID) (*HumanResourceResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleAdmin && scope.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	hr, err := s.repo.FindByUserIDWithRelations(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile for user %s", userID)
		}
		return nil, err
	}

	resp := toHumanResourceResponse(hr)
	return &resp, nil
}

func (s *humanResourceService) List(ctx context.Context, actorID uuid.UUID, page, limit int) ([]HumanResourceResponse, int64, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, 0, err
	}
	if scope.Role != model.RoleAdmin {
		return nil, 0, apperr.ErrForbidden
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	profiles, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]HumanResourceResponse, 0, len(profiles))
	for i := range profiles {
		result = append(result, toHumanResourceResponse(&profiles[i]))
	}
	return result, total, nil
}

func (s *humanResourceService) Update(ctx context.Context, actorID, userID uuid.UUID, req UpdateHumanResourceRequest) (*HumanResourceResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleAdmin && scope.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	hr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile for user %s", userID)
		}
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil {
		if scope.Role != model.RoleAdmin {
			return nil, apperr.ErrForbidden
		}
		if *req.DepartmentID == "" {
			hr.DepartmentID = nil
		} else {
			if user.Role == model.RoleClient {
				return nil, apperr.Validation("department_id", "clients cannot belong to a department")
			}
			id, err := uuid.Parse(*req.DepartmentID)
			if err != nil {
				return nil, apperr.Validation("department_id", "invalid department id")
			}
			if _, err := s.departmentRepo.FindByID(ctx, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperr.NotFound("department %s", id)
				}
				return nil, err
			}
			hr.DepartmentID = &id
		}
	}
	if req.Biography != nil {
		hr.Biography = *req.Biography
	}
	if req.Phone != nil {
		hr.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, hr); err != nil {
		return nil, err
	}

	loaded, err := s.repo.FindByUserIDWithRelations(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toHumanResourceResponse(loaded)
	return &resp, nil
}

// LinkCompany attaches an extra company to a Client profile. Duplicate links
// are rejected by the unique pair index; non-client profiles are rejected here.
func (s *humanResourceService) LinkCompany(ctx context.Context, actorID, userID, companyID uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	hr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("profile for user %s", userID)
		}
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != model.RoleClient {
		return apperr.Validation("user_id", "only clients can be linked to extra companies")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company %s", companyID)
		}
		return err
	}

	links, err := s.repo.ListLinkedCompanies(ctx, hr.ID)
	if err != nil {
		return err
	}
	for _, link := range links {
		if link.CompanyID == companyID {
			return apperr.Conflict("company already linked")
		}
	}

	return s.repo.LinkCompany(ctx, &model.ClientCompany{
		HumanResourceID: hr.ID,
		CompanyID:       companyID,
	})
}

func (s *humanResourceService) UnlinkCompany(ctx context.Context, actorID, userID, companyID uuid.UUID) error {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if scope.Role != model.RoleAdmin {
		return apperr.ErrForbidden
	}

	hr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("profile for user %s", userID)
		}
		return err
	}
	return s.repo.UnlinkCompany(ctx, hr.ID, companyID)
}

func (s *humanResourceService) ListLinkedCompanies(ctx context.Context, actorID, userID uuid.UUID) ([]LinkedCompanyResponse, error) {
	scope, err := access.Resolve(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != model.RoleAdmin && scope.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	hr, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile for user %s", userID)
		}
		return nil, err
	}

	links, err := s.repo.ListLinkedCompanies(ctx, hr.ID)
	if err != nil {
		return nil, err
	}

	result := make([]LinkedCompanyResponse, 0, len(links))
	for _, link := range links {
		resp := LinkedCompanyResponse{CompanyID: link.CompanyID.String()}
		if link.Company != nil {
			resp.CompanyName = link.Company.Name
		}
		result = append(result, resp)
	}
	return result, nil
}

func toHumanResourceResponse(hr *model.HumanResource) HumanResourceResponse {
	resp := HumanResourceResponse{
		ID:        hr.ID.String(),
		UserID:    hr.UserID.String(),
		CompanyID: hr.CompanyID.String(),
		Biography: hr.Biography,
		Phone:     hr.Phone,
		Active:    !hr.IsDeleted(),
		CreatedAt: hr.CreatedAt.Format(time.RFC3339),
	}
	if hr.DepartmentID != nil {
		resp.DepartmentID = hr.DepartmentID.String()
	}
	if hr.User != nil {
		resp.Username = hr.User.Username
		resp.Role = hr.User.Role
	}
	if hr.Department != nil {
		resp.DepartmentName = hr.Department.Name
	}
	if hr.Company != nil {
		resp.CompanyName = hr.Company.Name
	}
	return resp
}
