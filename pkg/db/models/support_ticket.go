package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// SupportTicket mirrors a support conversation opened from the chat
// widget. User name/email are denormalized for the escalation email.
type SupportTicket struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	TicketNumber string             `gorm:"column:ticket_number;type:text;not null;uniqueIndex"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	UserName     string             `gorm:"column:user_name;type:text;not null"`
	UserEmail    string             `gorm:"column:user_email;type:text;not null"`
	Subject      string             `gorm:"type:text;not null"`
	Status       enums.TicketStatus `gorm:"type:text;not null"`
	Language     enums.ChatLanguage `gorm:"type:text;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
