package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority enum constants
const (
	PriorityLow         = "LOW"
	PriorityMedium      = "MEDIUM"
	PriorityHigh        = "HIGH"
	PriorityUrgent      = "URGENT"
	PrioritySuperUrgent = "SUPER_URGENT"
	PriorityStandard    = "STANDARD"
)

// StatusApproval enum constants. WAITING is initial, DONE is terminal.
const (
	StatusWaiting     = "WAITING"
	StatusApproved    = "APPROVED"
	StatusNotApproved = "NOT_APPROVED"
	StatusDone        = "DONE"
)

// ValidPriority reports whether the given priority belongs to the enum.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PrioritySuperUrgent, PriorityStandard:
		return true
	}
	return false
}

// ValidStatusApproval reports whether the given status belongs to the enum.
func ValidStatusApproval(s string) bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusNotApproved, StatusDone:
		return true
	}
	return false
}

// CanTransitionStatus encodes the approval state machine:
// WAITING -> {APPROVED, NOT_APPROVED} -> DONE. DONE accepts nothing.
func CanTransitionStatus(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusWaiting:
		return to == StatusApproved || to == StatusNotApproved
	case StatusApproved, StatusNotApproved:
		return to == StatusDone
	}
	return false
}

// Petition is a tracked request owned by a user, scoped to a department and a
// company. Non-main petitions (is_main = false) are the unit commissions
// attach to.
type Petition struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string         `gorm:"type:varchar(120);not null" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	IsMain         bool           `gorm:"default:true" json:"is_main"`
	Priority       string         `gorm:"type:varchar(20);not null;default:'LOW'" json:"priority"`
	StatusApproval string         `gorm:"type:varchar(20);not null;default:'WAITING';index" json:"status_approval"`
	DepartmentID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"department_id"`
	Department     *Department    `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	CompanyID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company        *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Hours          *time.Duration `gorm:"type:bigint" json:"hours,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Commissions    []Commission   `gorm:"foreignKey:PetitionID" json:"commissions,omitempty"`
	Lifecycle
}

func (p *Petition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
