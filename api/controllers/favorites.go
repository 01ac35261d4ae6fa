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

type favoritePayload struct {
	PartID int64 `json:"partId" validate:"required,gt=0"`
}

func FavoritesList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		favorites, err := svc.GetFavorites(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: favorites, Count: len(favorites)})
	}
}

func FavoritesAdd(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		var payload favoritePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.AddToFavorites(ctx, payload.PartID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"added": true})
	}
}

func FavoritesRemove(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		id, err := partIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemoveFromFavorites(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
