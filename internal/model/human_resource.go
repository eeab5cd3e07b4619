package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HumanResource is the employment profile attached one-to-one to a User.
// Clients must not have a department; their visibility is company-based.
type HumanResource struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL" json:"department,omitempty"`
	CompanyID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *Company    `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Biography    string      `gorm:"type:text" json:"biography"`
	Phone        string      `gorm:"type:varchar(20)" json:"phone"`
	Lifecycle
}

func (h *HumanResource) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// ClientCompany is the bridge table for clients linked to more than one company.
type ClientCompany struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	HumanResourceID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_client_company" json:"human_resource_id"`
	HumanResource   *HumanResource `gorm:"foreignKey:HumanResourceID;constraint:OnDelete:CASCADE" json:"-"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_client_company" json:"company_id"`
	Company         *Company       `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

func (c *ClientCompany) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
