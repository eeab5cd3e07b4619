// Package access resolves the acting user's visibility scope and applies it
// to petition and user queries. Scope narrowing always runs before any
// caller-supplied filter so query parameters can never widen a result set.
package access

import (
	"context"
	"errors"

	"taskflow/internal/apperr"
	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is the resolved visibility boundary for one acting user.
// The zero value matches nothing.
type Scope struct {
	Role         string
	UserID       uuid.UUID
	DepartmentID *uuid.UUID  // Manager: nil means no department, sees nothing
	CompanyIDs   []uuid.UUID // Client: primary company plus bridge links
}

// Resolve computes the scope for the given user id. A Manager without a
// department resolves to an empty scope rather than widening; a Client with
// no bridge links falls back to its single primary company.
func Resolve(ctx context.Context, db *gorm.DB, userID uuid.UUID) (Scope, error) {
	var user model.User
	if err := model.ScopeActive(db.WithContext(ctx)).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Scope{}, apperr.NotFound("user %s", userID)
		}
		return Scope{}, err
	}

	scope := Scope{Role: user.Role, UserID: user.ID}

	switch user.Role {
	case model.RoleAdmin, model.RoleEmployee:
		return scope, nil

	case model.RoleManager:
		var hr model.HumanResource
		err := model.ScopeActive(db.WithContext(ctx)).First(&hr, "user_id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No profile: same as no department, matches nothing.
				return scope, nil
			}
			return Scope{}, err
		}
		scope.DepartmentID = hr.DepartmentID
		return scope, nil

	case model.RoleClient:
		var hr model.HumanResource
		err := model.ScopeActive(db.WithContext(ctx)).First(&hr, "user_id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope, nil
			}
			return Scope{}, err
		}
		var bridged []uuid.UUID
		if err := db.WithContext(ctx).
			Model(&model.ClientCompany{}).
			Where("human_resource_id = ?", hr.ID).
			Pluck("company_id", &bridged).Error; err != nil {
			return Scope{}, err
		}
		if len(bridged) > 0 {
			scope.CompanyIDs = bridged
		} else {
			scope.CompanyIDs = []uuid.UUID{hr.CompanyID}
		}
		return scope, nil
	}

	// Unrecognized role: empty scope.
	return scope, nil
}

// matchNothing is the empty result set.
func matchNothing(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// FilterPetitions narrows a petition query to what the scope may see.
func (s Scope) FilterPetitions(db *gorm.DB) *gorm.DB {
	switch s.Role {
	case model.RoleAdmin:
		return db
	case model.RoleManager:
		if s.DepartmentID == nil {
			return matchNothing(db)
		}
		return db.Where("department_id = ?", *s.DepartmentID)
	case model.RoleEmployee:
		return db.Where("user_id = ?", s.UserID)
	case model.RoleClient:
		if len(s.CompanyIDs) == 0 {
			return matchNothing(db)
		}
		return db.Where("company_id IN ?", s.CompanyIDs)
	}
	return matchNothing(db)
}

// FilterUsers narrows a user query, keyed off each target user's
// human-resource department/company rather than a petition's.
func (s Scope) FilterUsers(db *gorm.DB) *gorm.DB {
	switch s.Role {
	case model.RoleAdmin:
		return db
	case model.RoleManager:
		if s.DepartmentID == nil {
			return matchNothing(db)
		}
		return db.Where(
			"users.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.HumanResource{}).
				Select("user_id").
				Where("department_id = ? AND deleted_at IS NULL", *s.DepartmentID),
		)
	case model.RoleEmployee:
		return db.Where("users.id = ?", s.UserID)
	case model.RoleClient:
		if len(s.CompanyIDs) == 0 {
			return matchNothing(db)
		}
		return db.Where(
			"users.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.HumanResource{}).
				Select("user_id").
				Where("company_id IN ? AND deleted_at IS NULL", s.CompanyIDs),
		)
	}
	return matchNothing(db)
}

// CanViewPetition decides detail/mutate access for a single known petition.
// List operations rely on FilterPetitions instead, hiding the record's
// existence altogether.
func (s Scope) CanViewPetition(p *model.Petition) bool {
	switch s.Role {
	case model.RoleAdmin:
		return true
	case model.RoleManager:
		return s.DepartmentID != nil && *s.DepartmentID == p.DepartmentID
	case model.RoleEmployee:
		return s.UserID == p.UserID
	case model.RoleClient:
		for _, id := range s.CompanyIDs {
			if id == p.CompanyID {
				return true
			}
		}
	}
	return false
}
