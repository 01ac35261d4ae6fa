package controllers

import (
	"net/http"

	"github.com/skladapp/sklad-backend/api/responses"
	"github.com/skladapp/sklad-backend/api/validators"
	"github.com/skladapp/sklad-backend/internal/parts"
	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/logger"
	"github.com/skladapp/sklad-backend/pkg/types"
)

type historyEntryPayload struct {
	PartID int64 `json:"partId" validate:"required,gt=0"`
}

func HistoryList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		history, err := svc.GetViewHistory(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: history, Count: len(history)})
	}
}

func HistoryAdd(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		var payload historyEntryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.AddToViewHistory(ctx, payload.PartID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"recorded": true})
	}
}

func HistoryClear(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		if err := svc.ClearViewHistory(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
