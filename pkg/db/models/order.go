package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
)

// Fulfillment methods accepted at checkout.
const (
	FulfillmentPickup   = "pickup"
	FulfillmentDelivery = "delivery"
)

// Order is created only after Stripe reports the session paid. The unique
// index on stripe_session_id is what makes confirmation idempotent across
// the client poll and the webhook racing each other.
type Order struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID                *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	CustomerEmail         string            `gorm:"column:customer_email;not null"`
	CustomerName          string            `gorm:"column:customer_name;not null"`
	Status                enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'paid'"`
	FulfillmentType       string            `gorm:"column:fulfillment_type;not null"`
	FulfillmentDate       time.Time         `gorm:"column:fulfillment_date;type:date;not null"`
	PickupWindowID        *uuid.UUID        `gorm:"column:pickup_window_id;type:uuid"`
	DeliveryPostalCode    *string           `gorm:"column:delivery_postal_code"`
	SubtotalAmount        decimal.Decimal   `gorm:"column:subtotal_amount;type:numeric(12,2);not null"`
	ServiceFeeAmount      decimal.Decimal   `gorm:"column:service_fee_amount;type:numeric(12,2);not null"`
	TaxAmount             decimal.Decimal   `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	DeliveryFeeAmount     decimal.Decimal   `gorm:"column:delivery_fee_amount;type:numeric(12,2);not null"`
	TotalAmount           decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CurrencyCode          string            `gorm:"column:currency_code;not null;default:'USD'"`
	StripeSessionID       string            `gorm:"column:stripe_session_id;not null;uniqueIndex:uq_orders_stripe_session_id"`
	StripePaymentIntentID *string           `gorm:"column:stripe_payment_intent_id"`
	Notes                 *string           `gorm:"column:notes"`
	CanceledAt            *time.Time        `gorm:"column:canceled_at"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}
