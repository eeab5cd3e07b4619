package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreatePetition  = "CREATE_PETITION"
	ActionUpdatePetition  = "UPDATE_PETITION"
	ActionDeletePetition  = "DELETE_PETITION"
	ActionRestorePetition = "RESTORE_PETITION"

	ActionCreateCommission  = "CREATE_COMMISSION"
	ActionUpdateCommission  = "UPDATE_COMMISSION"
	ActionDeleteCommission  = "DELETE_COMMISSION"
	ActionRestoreCommission = "RESTORE_COMMISSION"
	ActionAssignUsers       = "ASSIGN_COMMISSION_USERS"
	ActionRemoveUsers       = "REMOVE_COMMISSION_USERS"
)

// AuditLog tracks who did what and when for critical changes. Append-only.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
