package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures the priced snapshot of each line at confirmation time.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID      uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	Name            string          `gorm:"column:name;not null"`
	UnitPriceAmount decimal.Decimal `gorm:"column:unit_price_amount;type:numeric(12,2);not null"`
	Qty             int             `gorm:"column:qty;not null"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
