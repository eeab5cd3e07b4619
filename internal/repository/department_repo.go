package repository

import (
	"context"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, d *model.Department) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	List(ctx context.Context, page, limit int) ([]model.Department, int64, error)
	Update(ctx context.Context, d *model.Department) error
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, d *model.Department) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *departmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var d model.Department
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepository) FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var d model.Department
	if err := model.ScopeDeleted(GetDB(ctx, r.db)).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepository) List(ctx context.Context, page, limit int) ([]model.Department, int64, error) {
	var departments []model.Department
	var total int64

	base := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Department{}))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := base.Order("name").Offset(offset).Limit(limit).Find(&departments).Error; err != nil {
		return nil, 0, err
	}

	return departments, total, nil
}

func (r *departmentRepository) Update(ctx context.Context, d *model.Department) error {
	return GetDB(ctx, r.db).Save(d).Error
}
