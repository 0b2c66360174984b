package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	ordersvc "github.com/sugarmaple/bakehouse-backend/internal/orders"
	"github.com/sugarmaple/bakehouse-backend/internal/payments"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type orderItemResponse struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Qty        int             `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
}

type orderResponse struct {
	OrderID            uuid.UUID           `json:"order_id"`
	Status             string              `json:"status"`
	CustomerEmail      string              `json:"customer_email"`
	CustomerName       string              `json:"customer_name"`
	FulfillmentType    string              `json:"fulfillment_type"`
	FulfillmentDate    string              `json:"fulfillment_date"`
	PickupWindowID     *uuid.UUID          `json:"pickup_window_id,omitempty"`
	DeliveryPostalCode *string             `json:"delivery_postal_code,omitempty"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	ServiceFee         decimal.Decimal     `json:"service_fee"`
	Tax                decimal.Decimal     `json:"tax"`
	DeliveryFee        decimal.Decimal     `json:"delivery_fee"`
	Total              decimal.Decimal     `json:"total"`
	CurrencyCode       string              `json:"currency_code"`
	Notes              *string             `json:"notes,omitempty"`
	CanceledAt         *time.Time          `json:"canceled_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	Items              []orderItemResponse `json:"items"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Qty:        item.Qty,
			UnitPrice:  item.UnitPriceAmount,
			Total:      item.TotalAmount,
		})
	}
	return orderResponse{
		OrderID:            order.ID,
		Status:             string(order.Status),
		CustomerEmail:      order.CustomerEmail,
		CustomerName:       order.CustomerName,
		FulfillmentType:    order.FulfillmentType,
		FulfillmentDate:    order.FulfillmentDate.Format(fulfillmentDateLayout),
		PickupWindowID:     order.PickupWindowID,
		DeliveryPostalCode: order.DeliveryPostalCode,
		Subtotal:           order.SubtotalAmount,
		ServiceFee:         order.ServiceFeeAmount,
		Tax:                order.TaxAmount,
		DeliveryFee:        order.DeliveryFeeAmount,
		Total:              order.TotalAmount,
		CurrencyCode:       order.CurrencyCode,
		Notes:              order.Notes,
		CanceledAt:         order.CanceledAt,
		CreatedAt:          order.CreatedAt,
		Items:              items,
	}
}

func newOrderListResponse(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

// OrderConfirm is the client-poll side of payment confirmation. It is safe
// to call repeatedly; the same order comes back every time.
func OrderConfirm(svc payments.ConfirmService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "confirm service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id required"))
			return
		}

		order, err := svc.ConfirmBySessionID(r.Context(), sessionID, payments.SourcePoll)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrdersList returns the signed-in customer's order history.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders))
	}
}

// OrderDetail returns one of the customer's own orders.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
