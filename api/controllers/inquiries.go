package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	inquirysvc "github.com/sugarmaple/bakehouse-backend/internal/inquiries"
	"github.com/sugarmaple/bakehouse-backend/pkg/db/models"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type inquiryCreateRequest struct {
	CustomerEmail   string           `json:"customer_email" validate:"required,email"`
	CustomerName    string           `json:"customer_name" validate:"required"`
	EventType       string           `json:"event_type" validate:"required"`
	EventDate       string           `json:"event_date" validate:"required"`
	Description     string           `json:"description" validate:"required"`
	ServingCount    *int             `json:"serving_count,omitempty" validate:"omitempty,gt=0"`
	TierCount       *int             `json:"tier_count,omitempty" validate:"omitempty,gt=0"`
	Shape           *string          `json:"shape,omitempty"`
	DecorationStyle *string          `json:"decoration_style,omitempty"`
	BudgetAmount    *decimal.Decimal `json:"budget_amount,omitempty"`
	ImageURLs       []string         `json:"image_urls,omitempty" validate:"omitempty,max=6,dive,url"`
}

type quoteResponse struct {
	QuoteID   uuid.UUID       `json:"quote_id"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     *string         `json:"notes,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type inquiryImageResponse struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption,omitempty"`
}

type inquiryResponse struct {
	InquiryID       uuid.UUID              `json:"inquiry_id"`
	Status          string                 `json:"status"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerName    string                 `json:"customer_name"`
	EventType       string                 `json:"event_type"`
	EventDate       string                 `json:"event_date"`
	Description     string                 `json:"description"`
	ServingCount    *int                   `json:"serving_count,omitempty"`
	TierCount       *int                   `json:"tier_count,omitempty"`
	Shape           *string                `json:"shape,omitempty"`
	DecorationStyle *string                `json:"decoration_style,omitempty"`
	BudgetAmount    *decimal.Decimal       `json:"budget_amount,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	Images          []inquiryImageResponse `json:"images,omitempty"`
	Quotes          []quoteResponse        `json:"quotes,omitempty"`
}

func newInquiryResponse(inquiry *models.Inquiry) inquiryResponse {
	images := make([]inquiryImageResponse, 0, len(inquiry.Images))
	for _, img := range inquiry.Images {
		images = append(images, inquiryImageResponse{URL: img.URL, Caption: img.Caption})
	}
	quotes := make([]quoteResponse, 0, len(inquiry.Quotes))
	for _, quote := range inquiry.Quotes {
		quotes = append(quotes, quoteResponse{
			QuoteID:   quote.ID,
			Amount:    quote.Amount,
			Notes:     quote.Notes,
			ExpiresAt: quote.ExpiresAt,
			CreatedAt: quote.CreatedAt,
		})
	}
	return inquiryResponse{
		InquiryID:       inquiry.ID,
		Status:          string(inquiry.Status),
		CustomerEmail:   inquiry.CustomerEmail,
		CustomerName:    inquiry.CustomerName,
		EventType:       inquiry.EventType,
		EventDate:       inquiry.EventDate.Format(fulfillmentDateLayout),
		Description:     inquiry.Description,
		ServingCount:    inquiry.ServingCount,
		TierCount:       inquiry.TierCount,
		Shape:           inquiry.Shape,
		DecorationStyle: inquiry.DecorationStyle,
		BudgetAmount:    inquiry.BudgetAmount,
		CreatedAt:       inquiry.CreatedAt,
		Images:          images,
		Quotes:          quotes,
	}
}

func newInquiryListResponse(inquiries []models.Inquiry) []inquiryResponse {
	out := make([]inquiryResponse, 0, len(inquiries))
	for i := range inquiries {
		out = append(out, newInquiryResponse(&inquiries[i]))
	}
	return out
}

// InquiryCreate submits a custom-cake request. Guests are allowed; a
// signed-in caller gets the inquiry attached to their account.
func InquiryCreate(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		var payload inquiryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eventDate, err := time.Parse(fulfillmentDateLayout, payload.EventDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event_date must be a YYYY-MM-DD date"))
			return
		}

		inquiry, err := svc.Create(r.Context(), inquirysvc.CreateInput{
			UserID:          optionalUserID(r),
			CustomerEmail:   payload.CustomerEmail,
			CustomerName:    payload.CustomerName,
			EventType:       payload.EventType,
			EventDate:       eventDate,
			Description:     payload.Description,
			ServingCount:    payload.ServingCount,
			TierCount:       payload.TierCount,
			Shape:           payload.Shape,
			DecorationStyle: payload.DecorationStyle,
			BudgetAmount:    payload.BudgetAmount,
			ImageURLs:       payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newInquiryResponse(inquiry))
	}
}

// InquiriesList returns the signed-in customer's inquiries.
func InquiriesList(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
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

		inquiries, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryListResponse(inquiries))
	}
}

// InquiryDetail returns one of the customer's own inquiries.
func InquiryDetail(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.GetForUser(r.Context(), inquiryID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryResponse(inquiry))
	}
}

// InquiryAccept lets the customer accept the active quote.
func InquiryAccept(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.Accept(r.Context(), inquiryID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryResponse(inquiry))
	}
}
