package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// ReservationHistory is the append-only audit record written when a
// reservation is fulfilled or cancelled. Never read back into the stock
// ledger; purged by the retention job after ExpiresAt.
type ReservationHistory struct {
	ID            uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ReservationID uuid.UUID               `gorm:"column:reservation_id;type:uuid;not null;index"`
	ItemID        string                  `gorm:"column:item_id;type:text;not null;index"`
	Qty           int64                   `gorm:"column:qty;not null"`
	ForDate       time.Time               `gorm:"column:for_date;not null"`
	ForWhom       *string                 `gorm:"column:for_whom;type:text"`
	Status        enums.ReservationStatus `gorm:"type:text;not null"`
	ReservedBy    uuid.UUID               `gorm:"column:reserved_by;type:uuid;not null"`
	ReservedAt    time.Time               `gorm:"column:reserved_at;not null"`
	ResolvedAt    time.Time               `gorm:"column:resolved_at;not null"`
	ExpiresAt     time.Time               `gorm:"column:expires_at;not null;index"`
}

// TableName keeps the historical table name.
func (ReservationHistory) TableName() string {
	return "reservation_history"
}
