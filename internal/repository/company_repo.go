package repository

import (
	"context"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, page, limit int) ([]model.Company, int64, error)
	Update(ctx context.Context, c *model.Company) error
	CountActiveHumanResources(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, c *model.Company) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	if err := model.ScopeDeleted(GetDB(ctx, r.db)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) List(ctx context.Context, page, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	base := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Company{}))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := base.Order("name").Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *companyRepository) Update(ctx context.Context, c *model.Company) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *companyRepository) CountActiveHumanResources(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := model.ScopeActive(GetDB(ctx, r.db).Model(&model.HumanResource{})).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}
