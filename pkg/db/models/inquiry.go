package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
)

// Inquiry is a custom-cake request that moves through a quoting workflow
// before any money changes hands.
type Inquiry struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID          *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	CustomerEmail   string              `gorm:"column:customer_email;not null"`
	CustomerName    string              `gorm:"column:customer_name;not null"`
	Status          enums.InquiryStatus `gorm:"column:status;type:inquiry_status;not null;default:'new'"`
	EventType       string              `gorm:"column:event_type;not null"`
	EventDate       time.Time           `gorm:"column:event_date;type:date;not null"`
	Description     string              `gorm:"column:description;not null"`
	ServingCount    *int                `gorm:"column:serving_count"`
	TierCount       *int                `gorm:"column:tier_count"`
	Shape           *string             `gorm:"column:shape"`
	DecorationStyle *string             `gorm:"column:decoration_style"`
	BudgetAmount    *decimal.Decimal    `gorm:"column:budget_amount;type:numeric(12,2)"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Images []InquiryImage `gorm:"foreignKey:InquiryID"`
	Quotes []Quote        `gorm:"foreignKey:InquiryID"`
}

// InquiryImage is a customer-supplied reference photo.
type InquiryImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	InquiryID uuid.UUID `gorm:"column:inquiry_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	Caption   *string   `gorm:"column:caption"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Quote is a priced offer attached to an inquiry by staff. The newest
// quote is the active one.
type Quote struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	InquiryID uuid.UUID       `gorm:"column:inquiry_id;type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Notes     *string         `gorm:"column:notes"`
	ExpiresAt *time.Time      `gorm:"column:expires_at"`
	CreatedBy uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
