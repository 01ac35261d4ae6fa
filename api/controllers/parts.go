package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skladapp/sklad-backend/api/responses"
	"github.com/skladapp/sklad-backend/api/validators"
	"github.com/skladapp/sklad-backend/internal/parts"
	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/logger"
	"github.com/skladapp/sklad-backend/pkg/types"
)

type partPayload struct {
	ArticleNumber  string   `json:"articleNumber" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Manufacturer   string   `json:"manufacturer" validate:"required"`
	Category       string   `json:"category" validate:"required"`
	IsNew          bool     `json:"isNew"`
	Quantity       int      `json:"quantity" validate:"gte=0"`
	Price          float64  `json:"price" validate:"gt=0"`
	Description    *string  `json:"description"`
	PhotoPath      *string  `json:"photoPath"`
	CompatibleCars []string `json:"compatibleCars"`
}

func (p partPayload) toNewPart() parts.NewPart {
	return parts.NewPart{
		ArticleNumber:  strings.TrimSpace(p.ArticleNumber),
		Name:           strings.TrimSpace(p.Name),
		Manufacturer:   strings.TrimSpace(p.Manufacturer),
		Category:       strings.TrimSpace(p.Category),
		IsNew:          p.IsNew,
		Quantity:       p.Quantity,
		Price:          p.Price,
		Description:    p.Description,
		PhotoPath:      p.PhotoPath,
		CompatibleCars: p.CompatibleCars,
	}
}

// partIDParam parses the {partId} URL parameter.
func partIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "partId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "part id must be a positive integer")
	}
	return id, nil
}

// searchParamsFromQuery maps URL query values onto search parameters.
// Absent values impose no constraint.
func searchParamsFromQuery(r *http.Request) (parts.SearchParams, error) {
	q := r.URL.Query()
	params := parts.SearchParams{
		Query:        strings.TrimSpace(q.Get("q")),
		Category:     strings.TrimSpace(q.Get("category")),
		Manufacturer: strings.TrimSpace(q.Get("manufacturer")),
		CarModel:     strings.TrimSpace(q.Get("car")),
		SortBy:       parts.SortKey(strings.TrimSpace(q.Get("sortBy"))),
		SortOrder:    parts.SortOrder(strings.ToUpper(strings.TrimSpace(q.Get("sortOrder")))),
	}

	minRaw, maxRaw := strings.TrimSpace(q.Get("minPrice")), strings.TrimSpace(q.Get("maxPrice"))
	if minRaw != "" || maxRaw != "" {
		pr := &parts.PriceRange{Max: maxDefault}
		if minRaw != "" {
			value, err := strconv.ParseFloat(minRaw, 64)
			if err != nil || value < 0 {
				return params, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must be a non-negative number")
			}
			pr.Min = value
		}
		if maxRaw != "" {
			value, err := strconv.ParseFloat(maxRaw, 64)
			if err != nil || value < 0 {
				return params, pkgerrors.New(pkgerrors.CodeValidation, "maxPrice must be a non-negative number")
			}
			pr.Max = value
		}
		params.PriceRange = pr
	}

	if raw := strings.TrimSpace(q.Get("isNew")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "isNew must be a boolean")
		}
		params.IsNew = &value
	}
	if raw := strings.TrimSpace(q.Get("inStock")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "inStock must be a boolean")
		}
		params.InStock = value
	}
	return params, nil
}

const maxDefault = 1e12

// PartsList serves both the full collection and filtered searches; any
// recognized query parameter switches it into search mode.
func PartsList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		params, err := searchParamsFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		records, err := svc.SearchParts(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: records, Count: len(records)})
	}
}

func PartsCreate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		var payload partPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.AddPart(ctx, payload.toNewPart())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.GetPartByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func PartsGet(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		record, err := svc.GetPartByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func PartsUpdate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		if logg != nil {
			ctx = logg.WithPartID(ctx, id)
		}

		var payload partPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		current, err := svc.GetPartByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fields := payload.toNewPart()
		current.ArticleNumber = fields.ArticleNumber
		current.Name = fields.Name
		current.Manufacturer = fields.Manufacturer
		current.Category = fields.Category
		current.IsNew = fields.IsNew
		current.Quantity = fields.Quantity
		current.Price = fields.Price
		current.Description = fields.Description
		current.PhotoPath = fields.PhotoPath
		current.CompatibleCars = fields.CompatibleCars

		updated, err := svc.UpdatePart(ctx, current)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func PartsDelete(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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
		if logg != nil {
			ctx = logg.WithPartID(ctx, id)
		}

		if err := svc.DeletePart(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// PartsClear wipes the whole store, including history and favorites.
func PartsClear(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		if err := svc.ClearAllParts(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}

func PartsByArticle(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		article := strings.TrimSpace(chi.URLParam(r, "article"))
		if article == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "article number is required"))
			return
		}

		record, err := svc.FindByArticle(ctx, article)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if record == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "part not found"))
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func PartsAnalogs(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		analogs, err := svc.GetAnalogs(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: analogs, Count: len(analogs)})
	}
}

func PartsCompatible(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
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

		compatible, err := svc.FindCompatible(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: compatible, Count: len(compatible)})
	}
}

func CategoriesList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		categories, err := svc.GetUniqueCategories(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: categories, Count: len(categories)})
	}
}

func ManufacturersList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "parts service unavailable"))
			return
		}

		manufacturers, err := svc.GetUniqueManufacturers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ListData{Items: manufacturers, Count: len(manufacturers)})
	}
}
