package models

import (
	"time"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// Item is the stock ledger entity. Stock and ReservedQty are the single
// source of truth; availability is always derived as Stock - ReservedQty
// and never stored.
type Item struct {
	ID          string           `gorm:"type:text;primaryKey"`
	Name        string           `gorm:"type:text;not null"`
	ItemType    enums.ItemType   `gorm:"column:item_type;type:text;not null"`
	Category    string           `gorm:"type:text;not null"`
	Warehouse   string           `gorm:"type:text;not null"`
	Condition   string           `gorm:"type:text"`
	Status      enums.ItemStatus `gorm:"type:text;not null"`
	Stock       int64            `gorm:"column:stock;not null;default:0"`
	ReservedQty int64            `gorm:"column:reserved_qty;not null;default:0"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the derived free quantity.
func (i Item) Available() int64 {
	if i.Stock < i.ReservedQty {
		return 0
	}
	return i.Stock - i.ReservedQty
}
