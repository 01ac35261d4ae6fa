package controllers

import (
	"net/http"

	"github.com/skladapp/sklad-backend/api/responses"
	"github.com/skladapp/sklad-backend/api/validators"
	"github.com/skladapp/sklad-backend/internal/scan"
	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/logger"
)

type scanTextPayload struct {
	Text string `json:"text" validate:"required"`
}

type scanImagePayload struct {
	ImagePath string `json:"imagePath" validate:"required"`
}

// ScanExtract runs the label heuristics over client-supplied text and
// returns a prefilled record draft.
func ScanExtract(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		var payload scanTextPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, svc.DraftFromText(ctx, payload.Text))
	}
}

// ScanImage recognizes text in a stored image first, then extracts.
func ScanImage(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		var payload scanImagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft, err := svc.DraftFromImage(ctx, payload.ImagePath)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, draft)
	}
}
