package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	inquirysvc "github.com/sugarmaple/bakehouse-backend/internal/inquiries"
	"github.com/sugarmaple/bakehouse-backend/pkg/enums"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type inquiryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type quoteRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Notes     *string         `json:"notes,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// AdminInquiriesList returns every inquiry, optionally filtered by status.
func AdminInquiriesList(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		var statusFilter *enums.InquiryStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseInquiryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			statusFilter = &status
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiries, err := svc.List(r.Context(), statusFilter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryListResponse(inquiries))
	}
}

// AdminInquiryDetail returns any inquiry by id.
func AdminInquiryDetail(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.Get(r.Context(), inquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryResponse(inquiry))
	}
}

// AdminInquiryUpdateStatus moves an inquiry through the quoting workflow.
func AdminInquiryUpdateStatus(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		actorID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inquiryStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseInquiryStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		inquiry, err := svc.UpdateStatus(r.Context(), inquirysvc.UpdateStatusInput{
			InquiryID:   inquiryID,
			Target:      target,
			ActorUserID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInquiryResponse(inquiry))
	}
}

// AdminInquiryQuote attaches a priced offer to an inquiry. Quoting from
// in_review moves the inquiry to quoted; re-quoting replaces the active
// quote without another transition.
func AdminInquiryQuote(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		actorID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inquiry, err := svc.AddQuote(r.Context(), inquirysvc.QuoteInput{
			InquiryID: inquiryID,
			Amount:    payload.Amount,
			Notes:     payload.Notes,
			ExpiresAt: payload.ExpiresAt,
			CreatedBy: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newInquiryResponse(inquiry))
	}
}

// AdminInquiryDelete removes a terminal inquiry and its quotes and images.
func AdminInquiryDelete(svc inquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inquiries service unavailable"))
			return
		}

		inquiryID, err := pathUUID(r, chi.URLParam(r, "inquiryId"), "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), inquiryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
