package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// StockMovement is the append-only goods receipt/issue ledger. Item name
// and actor name are denormalized so exports stay readable after the
// referenced rows are deleted.
type StockMovement struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ItemID        string             `gorm:"column:item_id;type:text;not null;index"`
	ItemName      string             `gorm:"column:item_name;type:text;not null"`
	Qty           int64              `gorm:"column:qty;not null"`
	PreviousStock int64              `gorm:"column:previous_stock;not null"`
	NewStock      int64              `gorm:"column:new_stock;not null"`
	MovementType  enums.MovementType `gorm:"column:movement_type;type:text;not null;index"`
	ActorID       uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	ActorName     string             `gorm:"column:actor_name;type:text;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}
