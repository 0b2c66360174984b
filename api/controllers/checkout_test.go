package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/sugarmaple/bakehouse-backend/internal/checkout"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/types"
)

type stubCheckoutService struct {
	input   checkoutsvc.BuildSessionInput
	session *checkoutsvc.Session
	err     error
}

func (s *stubCheckoutService) BuildSession(ctx context.Context, input checkoutsvc.BuildSessionInput) (*checkoutsvc.Session, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func checkoutBody(t *testing.T, itemID uuid.UUID) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"menu_item_id": itemID, "qty": 2},
		},
		"fulfillment_type": "delivery",
		"date":             "2026-09-12",
		"postal_code":      "97201",
		"customer_email":   "ada@example.com",
		"customer_name":    "Ada Lovelace",
	})
	require.NoError(t, err)
	return body
}

func TestCheckoutCreatesSession(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCheckoutService{
		session: &checkoutsvc.Session{
			SessionID: "cs_test_123",
			URL:       "https://checkout.stripe.com/pay/cs_test_123",
			Totals: checkoutsvc.Totals{
				Subtotal:    decimal.RequireFromString("9.00"),
				ServiceFee:  decimal.RequireFromString("0.45"),
				DeliveryFee: decimal.RequireFromString("8.00"),
				Total:       decimal.RequireFromString("17.45"),
			},
		},
	}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(checkoutBody(t, itemID)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "cs_test_123", envelope.Data.SessionID)
	require.True(t, envelope.Data.Totals.Total.Equal(decimal.RequireFromString("17.45")))

	require.Len(t, svc.input.Items, 1)
	require.Equal(t, itemID, svc.input.Items[0].MenuItemID)
	require.Equal(t, 2, svc.input.Items[0].Qty)
	require.Equal(t, "delivery", svc.input.FulfillmentType)
	require.Equal(t, "2026-09-12", svc.input.Date.Format("2006-01-02"))
	require.Nil(t, svc.input.UserID)
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	svc := &stubCheckoutService{}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(`{"items":[],"surprise":true}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutRejectsBadDate(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCheckoutService{}
	handler := Checkout(svc, nil)

	body, err := json.Marshal(map[string]any{
		"items":            []map[string]any{{"menu_item_id": itemID, "qty": 1}},
		"fulfillment_type": "pickup",
		"date":             "next tuesday",
		"customer_email":   "ada@example.com",
		"customer_name":    "Ada Lovelace",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutPropagatesServiceError(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "sold out for this date")}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(checkoutBody(t, itemID)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "sold out for this date", envelope.Error.Message)
}
