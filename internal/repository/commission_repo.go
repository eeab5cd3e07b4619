package repository

import (
	"context"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommissionRepository interface {
	Create(ctx context.Context, c *model.Commission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Commission, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Commission, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Commission, error)
	List(ctx context.Context, petitionID, userID *uuid.UUID, parentScope func(*gorm.DB) *gorm.DB, page, limit int) ([]model.Commission, int64, error)
	Update(ctx context.Context, c *model.Commission) error
	AddUsers(ctx context.Context, c *model.Commission, users []model.User) error
	RemoveUsers(ctx context.Context, c *model.Commission, users []model.User) error
	CountActiveDocuments(ctx context.Context, commissionID uuid.UUID) (int64, error)

	CreateDocument(ctx context.Context, d *model.Document) error
	FindDocumentByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListDocuments(ctx context.Context, commissionID uuid.UUID) ([]model.Document, error)
	UpdateDocument(ctx context.Context, d *model.Document) error
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) Create(ctx context.Context, c *model.Commission) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *commissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commissionRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	err := model.ScopeActive(GetDB(ctx, r.db)).
		Preload("Petition").
		Preload("Users").
		Preload("Documents", "deleted_at IS NULL").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commissionRepository) FindDeletedByID(ctx context.Context, id uuid.UUID) (*model.Commission, error) {
	var c model.Commission
	if err := model.ScopeDeleted(GetDB(ctx, r.db)).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List pages over active commissions whose parent petition is active and,
// when parentScope is set, matches the caller's petition visibility. Scoping
// happens before Count and Offset/Limit so totals and pages line up.
func (r *commissionRepository) List(ctx context.Context, petitionID, userID *uuid.UUID, parentScope func(*gorm.DB) *gorm.DB, page, limit int) ([]model.Commission, int64, error) {
	var commissions []model.Commission
	var total int64

	db := GetDB(ctx, r.db)
	parents := model.ScopeActive(db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Petition{})).
		Select("petitions.id")
	if parentScope != nil {
		parents = parentScope(parents)
	}

	base := model.ScopeActive(db.Model(&model.Commission{})).
		Where("petition_id IN (?)", parents)
	if petitionID != nil {
		base = base.Where("petition_id = ?", *petitionID)
	}
	if userID != nil {
		base = base.Where(
			"id IN (?)",
			GetDB(ctx, r.db).Table("commission_users").Select("commission_id").Where("user_id = ?", *userID),
		)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base.
		Preload("Users").
		Preload("Documents", "deleted_at IS NULL").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&commissions).Error
	if err != nil {
		return nil, 0, err
	}

	return commissions, total, nil
}

func (r *commissionRepository) Update(ctx context.Context, c *model.Commission) error {
	return GetDB(ctx, r.db).Save(c).Error
}

// AddUsers appends to the assignment set. GORM inserts join rows with
// ON CONFLICT DO NOTHING, so re-assigning an already-assigned user is a no-op.
func (r *commissionRepository) AddUsers(ctx context.Context, c *model.Commission, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(c).Association("Users").Append(&users)
}

// RemoveUsers deletes join rows only; removing a non-assigned user is a no-op.
func (r *commissionRepository) RemoveUsers(ctx context.Context, c *model.Commission, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(c).Association("Users").Delete(&users)
}

func (r *commissionRepository) CountActiveDocuments(ctx context.Context, commissionID uuid.UUID) (int64, error) {
	var count int64
	err := model.ScopeActive(GetDB(ctx, r.db).Model(&model.Document{})).
		Where("commission_id = ?", commissionID).
		Count(&count).Error
	return count, err
}

func (r *commissionRepository) CreateDocument(ctx context.Context, d *model.Document) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *commissionRepository) FindDocumentByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var d model.Document
	if err := model.ScopeActive(GetDB(ctx, r.db)).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *commissionRepository) ListDocuments(ctx context.Context, commissionID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := model.ScopeActive(GetDB(ctx, r.db)).
		Where("commission_id = ?", commissionID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *commissionRepository) UpdateDocument(ctx context.Context, d *model.Document) error {
	return GetDB(ctx, r.db).Save(d).Error
}
