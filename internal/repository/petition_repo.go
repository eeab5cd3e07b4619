package repository

import (
	"context"
	"time"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PetitionFilter holds the optional list filters composed after scope narrowing.
type PetitionFilter struct {
	Title          string
	StatusApproval string
	DepartmentID   *uuid.UUID
	CompanyID      *uuid.UUID
	UserID         *uuid.UUID
	DateFrom       *time.Time
	DateUntil      *time.Time
	Page           int
	Limit          int
}

type PetitionRepository interface {
	Create(ctx context.Context, p *model.Petition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Petition, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Petition, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Petition, error)
	List(ctx context.Context, scoped func(*gorm.DB) *gorm.DB, filter PetitionFilter) ([]model.Petition, int64, error)
	Update(ctx context.Context, p *model.Petition) error
	CountActiveByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error)
	CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type petitionRepository struct {
	db *gorm.DB
}

func NewPetitionRepository(db *gorm.DB) PetitionRepository {
	return &petitionRepository{db: db}
}

func (r *petitionRepository) Create(ctx context.Context, p *model.Petition) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *petitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Petition, error) {
	var p model.Petition
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *petitionRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Petition, error) {
	var p model.Petition
	err := model.ScopeActive(GetDB(ctx, r.db)).
		Preload("Department").
		Preload("Company").
		Preload("User").
		Preload("Commissions", "deleted_at IS NULL").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindDeletedByID looks the petition up in the deleted scope, for activation.
func (r *petitionRepository) FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Petition, error) {
	var p model.Petition
	if err := model.ScopeDeleted(GetDB(ctx, r.db)).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List applies scope narrowing first, then the optional filters, then pagination.
func (r *petitionRepository) List(ctx context.Context, scoped func(*gorm.DB) *gorm.DB, filter PetitionFilter) ([]model.Petition, int64, error) {
	var petitions []model.Petition
	var total int64

	base := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Petition{}))
	if scoped != nil {
		base = scoped(base)
	}

	if filter.Title != "" {
		base = base.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Title+"%")
	}
	if filter.StatusApproval != "" {
		base = base.Where("status_approval = ?", filter.StatusApproval)
	}
	if filter.DepartmentID != nil {
		base = base.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.CompanyID != nil {
		base = base.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.UserID != nil {
		base = base.Where("user_id = ?", *filter.UserID)
	}
	if filter.DateFrom != nil {
		base = base.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateUntil != nil {
		base = base.Where("created_at <= ?", *filter.DateUntil)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := base.
		Preload("Department").
		Preload("Company").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&petitions).Error
	if err != nil {
		return nil, 0, err
	}

	return petitions, total, nil
}

func (r *petitionRepository) Update(ctx context.Context, p *model.Petition) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *petitionRepository) CountActiveByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error) {
	var count int64
	err := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Petition{})).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *petitionRepository) CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Petition{})).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}
