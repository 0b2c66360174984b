package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	"github.com/sugarmaple/bakehouse-backend/internal/menu"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type menuItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	CurrencyCode string          `json:"currency_code"`
	Active       bool            `json:"active"`
	LeadTimeDays int             `json:"lead_time_days"`
}

type menuAvailabilityResponse struct {
	menuItemResponse
	Scheduled bool `json:"scheduled"`
	Remaining int  `json:"remaining"`
}

type pickupWindowResponse struct {
	ID        uuid.UUID `json:"id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Active    bool      `json:"active"`
}

func newMenuItemResponse(item models.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           item.ID,
		Name:         item.Name,
		Slug:         item.Slug,
		Description:  item.Description,
		Category:     string(item.Category),
		Price:        item.PriceAmount,
		CurrencyCode: item.CurrencyCode,
		Active:       item.Active,
		LeadTimeDays: item.LeadTimeDays,
	}
}

func newPickupWindowResponse(window models.PickupWindow) pickupWindowResponse {
	return pickupWindowResponse{
		ID:        window.ID,
		Weekday:   window.Weekday,
		StartTime: window.StartTime,
		EndTime:   window.EndTime,
		Active:    window.Active,
	}
}

// MenuForDate lists active items with remaining stock for a fulfillment date.
func MenuForDate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.MenuForDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]menuAvailabilityResponse, 0, len(items))
		for _, entry := range items {
			out = append(out, menuAvailabilityResponse{
				menuItemResponse: newMenuItemResponse(entry.Item),
				Scheduled:        entry.Scheduled,
				Remaining:        entry.Remaining,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// MenuItemBySlug returns a single item for product pages.
func MenuItemBySlug(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug required"))
			return
		}

		item, err := svc.ItemBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMenuItemResponse(*item))
	}
}

// PickupWindows lists the recurring weekly pickup slots.
func PickupWindows(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		windows, err := svc.ListPickupWindows(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]pickupWindowResponse, 0, len(windows))
		for _, window := range windows {
			out = append(out, newPickupWindowResponse(window))
		}
		responses.WriteSuccess(w, out)
	}
}
