package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	"github.com/sugarmaple/bakehouse-backend/internal/menu"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type menuItemCreateRequest struct {
	Name         string          `json:"name" validate:"required"`
	Slug         string          `json:"slug,omitempty"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	LeadTimeDays int             `json:"lead_time_days,omitempty" validate:"omitempty,min=0"`
}

type menuItemUpdateRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	LeadTimeDays *int             `json:"lead_time_days,omitempty" validate:"omitempty,min=0"`
}

type scheduleDayRequest struct {
	Date     string `json:"date" validate:"required"`
	DailyCap int    `json:"daily_cap" validate:"required,min=0"`
}

type scheduleDayResponse struct {
	MenuItemID  uuid.UUID `json:"menu_item_id"`
	Date        string    `json:"date"`
	DailyCap    int       `json:"daily_cap"`
	ReservedQty int       `json:"reserved_qty"`
	Available   int       `json:"available"`
}

type pickupWindowCreateRequest struct {
	Weekday   int    `json:"weekday" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func newScheduleDayResponse(day *models.InventoryDay) scheduleDayResponse {
	return scheduleDayResponse{
		MenuItemID:  day.MenuItemID,
		Date:        day.Date.Format(fulfillmentDateLayout),
		DailyCap:    day.DailyCap,
		ReservedQty: day.ReservedQty,
		Available:   day.Available(),
	}
}

// AdminMenuList returns every menu item including inactive ones.
func AdminMenuList(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		items, err := svc.ListItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]menuItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, newMenuItemResponse(item))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminMenuCreate adds a new sellable item.
func AdminMenuCreate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		var payload menuItemCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseMenuCategory(payload.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		item, err := svc.CreateItem(r.Context(), menu.CreateItemInput{
			Name:         payload.Name,
			Slug:         payload.Slug,
			Description:  payload.Description,
			Category:     category,
			PriceAmount:  payload.Price,
			LeadTimeDays: payload.LeadTimeDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newMenuItemResponse(*item))
	}
}

// AdminMenuUpdate applies a partial update; omitted fields stay untouched.
func AdminMenuUpdate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload menuItemUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := menu.UpdateItemInput{
			Name:         payload.Name,
			Description:  payload.Description,
			PriceAmount:  payload.Price,
			Active:       payload.Active,
			LeadTimeDays: payload.LeadTimeDays,
		}
		if payload.Category != nil {
			category, err := enums.ParseMenuCategory(*payload.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &category
		}

		item, err := svc.UpdateItem(r.Context(), itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMenuItemResponse(*item))
	}
}

// AdminScheduleDay opens or resizes a baking day for an item. Shrinking
// the cap below what is already reserved is rejected.
func AdminScheduleDay(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload scheduleDayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse(fulfillmentDateLayout, payload.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be a YYYY-MM-DD date"))
			return
		}

		day, err := svc.ScheduleDay(r.Context(), itemID, date, payload.DailyCap)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newScheduleDayResponse(day))
	}
}

// AdminPickupWindowCreate adds a recurring weekly pickup slot.
func AdminPickupWindowCreate(svc menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		var payload pickupWindowCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window, err := svc.CreatePickupWindow(r.Context(), menu.PickupWindowInput{
			Weekday:   payload.Weekday,
			StartTime: payload.StartTime,
			EndTime:   payload.EndTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPickupWindowResponse(*window))
	}
}
