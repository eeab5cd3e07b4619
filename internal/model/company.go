package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company groups petitions and human-resource profiles of one tenant.
// Deletion is refused while active petitions or active profiles reference it.
type Company struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Lifecycle
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Department scopes petitions and manager visibility. Deletion is refused
// while active petitions reference it.
type Department struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Lifecycle
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
