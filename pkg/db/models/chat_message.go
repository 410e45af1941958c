package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// ChatMessage is a single entry in a support ticket conversation.
type ChatMessage struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TicketID  uuid.UUID        `gorm:"column:ticket_id;type:uuid;not null;index"`
	Sender    enums.ChatSender `gorm:"type:text;not null"`
	Body      string           `gorm:"type:text;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
