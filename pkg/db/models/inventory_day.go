package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryDay is the per-item per-date availability row. ReservedQty only
// moves through guarded UPDATEs so the cap holds under concurrent checkouts.
type InventoryDay struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	MenuItemID  uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null;uniqueIndex:uq_inventory_days_item_date"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_inventory_days_item_date"`
	DailyCap    int       `gorm:"column:daily_cap;not null"`
	ReservedQty int       `gorm:"column:reserved_qty;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the sellable remainder for the day.
func (d InventoryDay) Available() int {
	remaining := d.DailyCap - d.ReservedQty
	if remaining < 0 {
		return 0
	}
	return remaining
}
