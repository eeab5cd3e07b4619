package model

import (
	"time"

	"gorm.io/gorm"
)

// Lifecycle carries the soft-delete state shared by every business entity.
// DeletedAt is the source of truth; Active is kept in sync with it for
// compatibility with consumers that still filter on the boolean.
type Lifecycle struct {
	Active    bool       `gorm:"default:true;index" json:"active"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsDeleted reports whether the entity has been soft deleted.
func (l *Lifecycle) IsDeleted() bool {
	return l.DeletedAt != nil
}

// MarkDeleted flips the entity out of the active scope.
func (l *Lifecycle) MarkDeleted(now time.Time) {
	l.Active = false
	l.DeletedAt = &now
}

// MarkRestored returns the entity to the active scope.
func (l *Lifecycle) MarkRestored() {
	l.Active = true
	l.DeletedAt = nil
}

// ScopeActive narrows a query to records that have not been soft deleted.
// This is the default scope for every list/detail/mutate operation.
func ScopeActive(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// ScopeDeleted narrows a query to soft-deleted records only. Activate
// endpoints use it to locate the record they are asked to restore.
func ScopeDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NOT NULL")
}
