package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
)

// MenuItem is a sellable product on the bakery menu. Price is the
// authoritative amount used at checkout regardless of what the client sends.
type MenuItem struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Slug         string             `gorm:"column:slug;not null;uniqueIndex"`
	Description  string             `gorm:"column:description;not null;default:''"`
	Category     enums.MenuCategory `gorm:"column:category;type:menu_category;not null"`
	PriceAmount  decimal.Decimal    `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode string             `gorm:"column:currency_code;not null;default:'USD'"`
	Active       bool               `gorm:"column:active;not null;default:true"`
	LeadTimeDays int                `gorm:"column:lead_time_days;not null;default:0"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
