package parts

import (
	"context"
	"strings"

	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/metrics"
)

const analogsLimit = 10

// Service exposes the record store operations the API layer consumes.
// It is the sole authority over the part collection; callers only ever
// see copies.
type Service interface {
	GetAllParts(ctx context.Context) ([]Part, error)
	GetPartByID(ctx context.Context, id int64) (Part, error)
	AddPart(ctx context.Context, record NewPart) (int64, error)
	UpdatePart(ctx context.Context, record Part) (Part, error)
	DeletePart(ctx context.Context, id int64) error
	FindByArticle(ctx context.Context, articleNumber string) (*Part, error)
	SearchParts(ctx context.Context, params SearchParams) ([]Part, error)

	AddToViewHistory(ctx context.Context, id int64) error
	GetViewHistory(ctx context.Context) ([]Part, error)
	ClearViewHistory(ctx context.Context) error

	AddToFavorites(ctx context.Context, id int64) error
	RemoveFromFavorites(ctx context.Context, id int64) error
	GetFavorites(ctx context.Context) ([]Part, error)

	GetUniqueCategories(ctx context.Context) ([]string, error)
	GetUniqueManufacturers(ctx context.Context) ([]string, error)
	GetAnalogs(ctx context.Context, id int64) ([]Part, error)
	FindCompatible(ctx context.Context, id int64) ([]Part, error)

	ClearAllParts(ctx context.Context) error
	ReplaceAll(ctx context.Context, records []Part) (int, error)
	HistoryIDs(ctx context.Context) ([]int64, error)
	FavoriteIDs(ctx context.Context) ([]int64, error)
	RestoreState(ctx context.Context, records []Part, history, favorites []int64) error
}

// ServiceParams groups dependencies for the parts service.
type ServiceParams struct {
	Repo    *Repository
	Metrics *metrics.StoreMetrics
}

type service struct {
	repo    *Repository
	metrics *metrics.StoreMetrics
}

// NewService builds the parts service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parts repository is required")
	}
	return &service{
		repo:    params.Repo,
		metrics: params.Metrics,
	}, nil
}

func (s *service) GetAllParts(ctx context.Context) ([]Part, error) {
	records, err := s.repo.Snapshot()
	s.metrics.Record("get_all_parts", err)
	return records, err
}

func (s *service) GetPartByID(ctx context.Context, id int64) (Part, error) {
	record, err := s.repo.FindByID(id)
	s.metrics.Record("get_part", err)
	return record, err
}

func (s *service) AddPart(ctx context.Context, record NewPart) (int64, error) {
	if err := record.Validate(); err != nil {
		s.metrics.Record("add_part", err)
		return 0, err
	}
	stored, err := s.repo.Insert(record)
	s.metrics.Record("add_part", err)
	if err != nil {
		return 0, err
	}
	return stored.ID, nil
}

func (s *service) UpdatePart(ctx context.Context, record Part) (Part, error) {
	if err := record.Fields().Validate(); err != nil {
		s.metrics.Record("update_part", err)
		return Part{}, err
	}
	stored, err := s.repo.Update(record)
	s.metrics.Record("update_part", err)
	return stored, err
}

func (s *service) DeletePart(ctx context.Context, id int64) error {
	err := s.repo.Delete(id)
	s.metrics.Record("delete_part", err)
	return err
}

// FindByArticle matches the exact article number, case-insensitively,
// aligning with the case-insensitive contract of SearchParts.
func (s *service) FindByArticle(ctx context.Context, articleNumber string) (*Part, error) {
	records, err := s.repo.Snapshot()
	s.metrics.Record("find_by_article", err)
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		if strings.EqualFold(p.ArticleNumber, articleNumber) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (s *service) SearchParts(ctx context.Context, params SearchParams) ([]Part, error) {
	records, err := s.repo.Snapshot()
	s.metrics.Record("search_parts", err)
	if err != nil {
		return nil, err
	}
	result := Filter(records, params)
	if params.SortBy != "" {
		SortParts(result, params.SortBy, params.SortOrder)
	}
	return result, nil
}

func (s *service) AddToViewHistory(ctx context.Context, id int64) error {
	err := s.repo.PushHistory(id)
	s.metrics.Record("add_to_history", err)
	return err
}

func (s *service) GetViewHistory(ctx context.Context) ([]Part, error) {
	ids, err := s.repo.HistoryIDs()
	s.metrics.Record("get_history", err)
	if err != nil {
		return nil, err
	}
	return s.resolve(ids)
}

func (s *service) ClearViewHistory(ctx context.Context) error {
	err := s.repo.ClearHistory()
	s.metrics.Record("clear_history", err)
	return err
}

func (s *service) AddToFavorites(ctx context.Context, id int64) error {
	err := s.repo.AddFavorite(id)
	s.metrics.Record("add_favorite", err)
	return err
}

func (s *service) RemoveFromFavorites(ctx context.Context, id int64) error {
	err := s.repo.RemoveFavorite(id)
	s.metrics.Record("remove_favorite", err)
	return err
}

func (s *service) GetFavorites(ctx context.Context) ([]Part, error) {
	ids, err := s.repo.FavoriteIDs()
	s.metrics.Record("get_favorites", err)
	if err != nil {
		return nil, err
	}
	return s.resolve(ids)
}

func (s *service) GetUniqueCategories(ctx context.Context) ([]string, error) {
	records, err := s.repo.Snapshot()
	s.metrics.Record("unique_categories", err)
	if err != nil {
		return nil, err
	}
	return distinct(records, func(p Part) string { return p.Category }), nil
}

func (s *service) GetUniqueManufacturers(ctx context.Context) ([]string, error) {
	records, err := s.repo.Snapshot()
	s.metrics.Record("unique_manufacturers", err)
	if err != nil {
		return nil, err
	}
	return distinct(records, func(p Part) string { return p.Manufacturer }), nil
}

// GetAnalogs returns up to ten other parts in the same category or with
// an overlapping name, never including the queried part itself.
func (s *service) GetAnalogs(ctx context.Context, id int64) ([]Part, error) {
	part, err := s.repo.FindByID(id)
	if err != nil {
		s.metrics.Record("get_analogs", err)
		return nil, err
	}
	records, err := s.repo.Snapshot()
	s.metrics.Record("get_analogs", err)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(part.Name)
	analogs := make([]Part, 0, analogsLimit)
	for _, p := range records {
		if p.ID == part.ID {
			continue
		}
		other := strings.ToLower(p.Name)
		if strings.EqualFold(p.Category, part.Category) ||
			strings.Contains(other, name) || strings.Contains(name, other) {
			analogs = append(analogs, p)
			if len(analogs) == analogsLimit {
				break
			}
		}
	}
	return analogs, nil
}

// FindCompatible returns parts from the same category and manufacturer
// that fit at least one of the same cars. When either side declares no
// compatible cars the car check is skipped.
func (s *service) FindCompatible(ctx context.Context, id int64) ([]Part, error) {
	part, err := s.repo.FindByID(id)
	if err != nil {
		s.metrics.Record("find_compatible", err)
		return nil, err
	}
	records, err := s.repo.Snapshot()
	s.metrics.Record("find_compatible", err)
	if err != nil {
		return nil, err
	}

	compatible := make([]Part, 0)
	for _, p := range records {
		if p.ID == part.ID {
			continue
		}
		if !strings.EqualFold(p.Category, part.Category) ||
			!strings.EqualFold(p.Manufacturer, part.Manufacturer) {
			continue
		}
		if len(part.CompatibleCars) > 0 && len(p.CompatibleCars) > 0 && !shareCar(part.CompatibleCars, p.CompatibleCars) {
			continue
		}
		compatible = append(compatible, p)
	}
	return compatible, nil
}

func (s *service) ClearAllParts(ctx context.Context) error {
	err := s.repo.ClearAll()
	s.metrics.Record("clear_all", err)
	return err
}

func (s *service) ReplaceAll(ctx context.Context, records []Part) (int, error) {
	count, err := s.repo.ReplaceAll(records)
	s.metrics.Record("replace_all", err)
	return count, err
}

func (s *service) HistoryIDs(ctx context.Context) ([]int64, error) {
	return s.repo.HistoryIDs()
}

func (s *service) FavoriteIDs(ctx context.Context) ([]int64, error) {
	return s.repo.FavoriteIDs()
}

func (s *service) RestoreState(ctx context.Context, records []Part, history, favorites []int64) error {
	err := s.repo.RestoreState(records, history, favorites)
	s.metrics.Record("restore_state", err)
	return err
}

// resolve maps ids to records, silently skipping ids whose record is
// gone; the id lists are pruned on delete so skips only cover documents
// edited outside the app.
func (s *service) resolve(ids []int64) ([]Part, error) {
	records, err := s.repo.Snapshot()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Part, len(records))
	for _, p := range records {
		byID[p.ID] = p
	}

	out := make([]Part, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func distinct(records []Part, field func(Part) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, p := range records {
		value := field(p)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func shareCar(a, b []string) bool {
	for _, car := range a {
		for _, other := range b {
			if strings.EqualFold(strings.TrimSpace(car), strings.TrimSpace(other)) {
				return true
			}
		}
	}
	return false
}
