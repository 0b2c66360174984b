package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sugarmaple/bakehouse-backend/api/responses"
	"github.com/sugarmaple/bakehouse-backend/api/validators"
	"github.com/sugarmaple/bakehouse-backend/internal/settings"
	pkgerrors "github.com/sugarmaple/bakehouse-backend/pkg/errors"
	"github.com/sugarmaple/bakehouse-backend/pkg/logger"
)

type settingResponse struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type settingUpdateRequest struct {
	Value string `json:"value" validate:"required"`
}

// AdminSettingsList returns every store setting, defaults included.
func AdminSettingsList(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]settingResponse, 0, len(rows))
		for _, row := range rows {
			entry := settingResponse{Key: row.Key, Value: row.Value}
			if !row.UpdatedAt.IsZero() {
				updatedAt := row.UpdatedAt
				entry.UpdatedAt = &updatedAt
			}
			out = append(out, entry)
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminSettingUpdate validates and persists one setting value.
func AdminSettingUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		key := chi.URLParam(r, "key")
		if key == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "setting key required"))
			return
		}

		var payload settingUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Update(r.Context(), key, payload.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingResponse{Key: key, Value: payload.Value})
	}
}
