package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// Reservation is an active claim against an item's available quantity.
// Fulfilled and cancelled reservations are deleted from this table and
// recorded in reservation_history within the same transaction.
type Reservation struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ItemID     string                  `gorm:"column:item_id;type:text;not null;index"`
	Qty        int64                   `gorm:"column:qty;not null"`
	ForDate    time.Time               `gorm:"column:for_date;not null"`
	ForWhom    *string                 `gorm:"column:for_whom;type:text"`
	Status     enums.ReservationStatus `gorm:"type:text;not null"`
	ReservedBy uuid.UUID               `gorm:"column:reserved_by;type:uuid;not null;index"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
}
