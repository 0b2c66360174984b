package checkout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
)

// Stripe session metadata keys. The cart travels inside the session so
// confirmation can rebuild the order without any local pending state.
const (
	metaItems         = "bk_items"
	metaFulfillment   = "bk_fulfillment"
	metaDate          = "bk_date"
	metaPickupWindow  = "bk_pickup_window"
	metaPostalCode    = "bk_postal_code"
	metaCustomerEmail = "bk_customer_email"
	metaCustomerName  = "bk_customer_name"
	metaUserID        = "bk_user_id"
	metaNotes         = "bk_notes"
	metaSubtotal      = "bk_subtotal"
	metaServiceFee    = "bk_service_fee"
	metaTax           = "bk_tax"
	metaDeliveryFee   = "bk_delivery_fee"
	metaTotal         = "bk_total"
)

const metadataDateLayout = "2006-01-02"

type metadataItem struct {
	ID    uuid.UUID       `json:"i"`
	Qty   int             `json:"q"`
	Price decimal.Decimal `json:"p"`
	Name  string          `json:"n"`
}

// SessionPayload is the order-defining state carried through Stripe.
type SessionPayload struct {
	Items           []PricedItem
	FulfillmentType string
	Date            time.Time
	PickupWindowID  *uuid.UUID
	PostalCode      *string
	CustomerEmail   string
	CustomerName    string
	UserID          *uuid.UUID
	Notes           *string
	Totals          Totals
}

// PricedItem is a cart line after authoritative re-pricing.
type PricedItem struct {
	MenuItemID uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	Qty        int
}

// EncodeMetadata flattens the payload into Stripe's string map.
func EncodeMetadata(payload SessionPayload) (map[string]string, error) {
	items := make([]metadataItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, metadataItem{
			ID:    item.MenuItemID,
			Qty:   item.Qty,
			Price: item.UnitPrice,
			Name:  item.Name,
		})
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}

	meta := map[string]string{
		metaItems:         string(encoded),
		metaFulfillment:   payload.FulfillmentType,
		metaDate:          payload.Date.Format(metadataDateLayout),
		metaCustomerEmail: payload.CustomerEmail,
		metaCustomerName:  payload.CustomerName,
		metaSubtotal:      payload.Totals.Subtotal.StringFixed(2),
		metaServiceFee:    payload.Totals.ServiceFee.StringFixed(2),
		metaTax:           payload.Totals.Tax.StringFixed(2),
		metaDeliveryFee:   payload.Totals.DeliveryFee.StringFixed(2),
		metaTotal:         payload.Totals.Total.StringFixed(2),
	}
	if payload.PickupWindowID != nil {
		meta[metaPickupWindow] = payload.PickupWindowID.String()
	}
	if payload.PostalCode != nil {
		meta[metaPostalCode] = *payload.PostalCode
	}
	if payload.UserID != nil {
		meta[metaUserID] = payload.UserID.String()
	}
	if payload.Notes != nil && *payload.Notes != "" {
		meta[metaNotes] = *payload.Notes
	}
	return meta, nil
}

// DecodeMetadata rebuilds the payload from a Stripe session's metadata.
func DecodeMetadata(meta map[string]string) (*SessionPayload, error) {
	raw, ok := meta[metaItems]
	if !ok || raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing cart items")
	}
	var items []metadataItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode cart items")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata has empty cart")
	}

	date, err := time.Parse(metadataDateLayout, meta[metaDate])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode fulfillment date")
	}

	payload := &SessionPayload{
		FulfillmentType: meta[metaFulfillment],
		Date:            date,
		CustomerEmail:   meta[metaCustomerEmail],
		CustomerName:    meta[metaCustomerName],
	}
	for _, item := range items {
		payload.Items = append(payload.Items, PricedItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Qty:        item.Qty,
		})
	}

	if value, ok := meta[metaPickupWindow]; ok && value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode pickup window id")
		}
		payload.PickupWindowID = &id
	}
	if value, ok := meta[metaPostalCode]; ok && value != "" {
		payload.PostalCode = &value
	}
	if value, ok := meta[metaUserID]; ok && value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode user id")
		}
		payload.UserID = &id
	}
	if value, ok := meta[metaNotes]; ok && value != "" {
		payload.Notes = &value
	}

	totals, err := decodeTotals(meta)
	if err != nil {
		return nil, err
	}
	payload.Totals = *totals
	return payload, nil
}

func decodeTotals(meta map[string]string) (*Totals, error) {
	parse := func(key string) (decimal.Decimal, error) {
		value, err := decimal.NewFromString(meta[key])
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("decode %s", key))
		}
		return value, nil
	}

	subtotal, err := parse(metaSubtotal)
	if err != nil {
		return nil, err
	}
	serviceFee, err := parse(metaServiceFee)
	if err != nil {
		return nil, err
	}
	tax, err := parse(metaTax)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := parse(metaDeliveryFee)
	if err != nil {
		return nil, err
	}
	total, err := parse(metaTotal)
	if err != nil {
		return nil, err
	}
	return &Totals{
		Subtotal:    subtotal,
		ServiceFee:  serviceFee,
		Tax:         tax,
		DeliveryFee: deliveryFee,
		Total:       total,
	}, nil
}
