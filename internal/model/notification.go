package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification status: a one-way unread -> read transition.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is created exclusively by the fan-out process and mutated only
// by the recipient marking it as read.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	PetitionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"petition_id"`
	Petition    *Petition `gorm:"foreignKey:PetitionID;constraint:OnDelete:CASCADE" json:"petition,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Status      string    `gorm:"type:varchar(10);not null;default:'unread';index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
