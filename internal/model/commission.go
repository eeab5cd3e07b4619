package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionStatus enum constants
const (
	CommissionOpen   = "OPEN"
	CommissionClosed = "CLOSED"
)

// Commission is a sub-unit of work attached to a non-main petition and
// assignable to multiple users.
type Commission struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Description string     `gorm:"type:varchar(255);not null" json:"description"`
	Status      string     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	PetitionID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"petition_id"`
	Petition    *Petition  `gorm:"foreignKey:PetitionID" json:"petition,omitempty"`
	Users       []User     `gorm:"many2many:commission_users;" json:"users,omitempty"`
	Documents   []Document `gorm:"foreignKey:CommissionID" json:"documents,omitempty"`
	Lifecycle
}

func (c *Commission) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Document is a file attachment belonging to one commission.
type Document struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Path         string      `gorm:"type:varchar(255);not null" json:"path"`
	CommissionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"commission_id"`
	Commission   *Commission `gorm:"foreignKey:CommissionID;constraint:OnDelete:CASCADE" json:"-"`
	Lifecycle
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
