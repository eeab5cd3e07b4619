package repository

import (
	"context"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HumanResourceRepository interface {
	Create(ctx context.Context, hr *model.HumanResource) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.HumanResource, error)
	FindByUserIDWithRelations(ctx context.Context, userID uuid.UUID) (*model.HumanResource, error)
	List(ctx context.Context, page, limit int) ([]model.HumanResource, int64, error)
	Update(ctx context.Context, hr *model.HumanResource) error

	LinkCompany(ctx context.Context, link *model.ClientCompany) error
	UnlinkCompany(ctx context.Context, humanResourceID, companyID uuid.UUID) error
	ListLinkedCompanies(ctx context.Context, humanResourceID uuid.UUID) ([]model.ClientCompany, error)
}

type humanResourceRepository struct {
	db *gorm.DB
}

func NewHumanResourceRepository(db *gorm.DB) HumanResourceRepository {
	return &humanResourceRepository{db: db}
}

func (r *humanResourceRepository) Create(ctx context.Context, hr *model.HumanResource) error {
	return GetDB(ctx, r.db).Create(hr).Error
}

func (r *humanResourceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.HumanResource, error) {
	var hr model.HumanResource
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&hr, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &hr, nil
}

func (r *humanResourceRepository) FindByUserIDWithRelations(ctx context.Context, userID uuid.UUID) (*model.HumanResource, error) {
	var hr model.HumanResource
	err := model.ScopeActive(GetDB(ctx, r.db)).
		Preload("User").
		Preload("Department").
		Preload("Company").
		First(&hr, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &hr, nil
}

func (r *humanResourceRepository) List(ctx context.Context, page, limit int) ([]model.HumanResource, int64, error) {
	var profiles []model.HumanResource
	var total int64

	base := model.ScopeActive(GetDB(ctx, r.db).Model(&model.HumanResource{}))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base.
		Preload("User").
		Preload("Department").
		Preload("Company").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *humanResourceRepository) Update(ctx context.Context, hr *model.HumanResource) error {
	return GetDB(ctx, r.db).Save(hr).Error
}

func (r *humanResourceRepository) LinkCompany(ctx context.Context, link *model.ClientCompany) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *humanResourceRepository) UnlinkCompany(ctx context.Context, humanResourceID, companyID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("human_resource_id = ? AND company_id = ?", humanResourceID, companyID).
		Delete(&model.ClientCompany{}).Error
}

func (r *humanResourceRepository) ListLinkedCompanies(ctx context.Context, humanResourceID uuid.UUID) ([]model.ClientCompany, error) {
	var links []model.ClientCompany
	err := GetDB(ctx, r.db).
		Preload("Company").
		Where("human_resource_id = ?", humanResourceID).
		Find(&links).Error
	return links, err
}
