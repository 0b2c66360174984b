package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	checkoutsvc "github.com/sugarmaple/bakehouse-backend/internal/checkout"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

const fulfillmentDateLayout = "2006-01-02"

type checkoutItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Qty        int       `json:"qty" validate:"required,gt=0"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	FulfillmentType string                `json:"fulfillment_type" validate:"required,oneof=pickup delivery"`
	Date            string                `json:"date" validate:"required"`
	PickupWindowID  *uuid.UUID            `json:"pickup_window_id,omitempty"`
	PostalCode      *string               `json:"postal_code,omitempty"`
	CustomerEmail   string                `json:"customer_email" validate:"required,email"`
	CustomerName    string                `json:"customer_name" validate:"required"`
	Notes           *string               `json:"notes,omitempty"`
}

type totalsResponse struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

type checkoutResponse struct {
	SessionID string         `json:"session_id"`
	URL       string         `json:"url"`
	Totals    totalsResponse `json:"totals"`
}

func newTotalsResponse(totals checkoutsvc.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:    totals.Subtotal,
		ServiceFee:  totals.ServiceFee,
		Tax:         totals.Tax,
		DeliveryFee: totals.DeliveryFee,
		Total:       totals.Total,
	}
}

// Checkout validates the cart and returns a Stripe-hosted payment URL.
// No order exists until payment is confirmed.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse(fulfillmentDateLayout, payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be a YYYY-MM-DD date"))
			return
		}

		items := make([]checkoutsvc.CartItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkoutsvc.CartItemInput{
				MenuItemID: item.MenuItemID,
				Qty:        item.Qty,
			})
		}

		session, err := svc.BuildSession(r.Context(), checkoutsvc.BuildSessionInput{
			Items:           items,
			FulfillmentType: payload.FulfillmentType,
			Date:            date,
			PickupWindowID:  payload.PickupWindowID,
			PostalCode:      payload.PostalCode,
			CustomerEmail:   payload.CustomerEmail,
			CustomerName:    payload.CustomerName,
			UserID:          optionalUserID(r),
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			SessionID: session.SessionID,
			URL:       session.URL,
			Totals:    newTotalsResponse(session.Totals),
		})
	}
}
