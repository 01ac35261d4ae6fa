package parts

import (
	"sort"
	"strings"
)

// SortKey selects the field multi-field search orders by.
type SortKey string

const (
	SortByPrice     SortKey = "price"
	SortByName      SortKey = "name"
	SortByUpdatedAt SortKey = "updatedAt"
	SortByQuantity  SortKey = "quantity"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// PriceRange bounds are inclusive on both ends.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SearchParams describes one search. All provided filters AND together;
// zero-valued filters impose no constraint.
type SearchParams struct {
	Query        string
	Category     string
	Manufacturer string
	PriceRange   *PriceRange
	IsNew        *bool
	InStock      bool
	CarModel     string
	SortBy       SortKey
	SortOrder    SortOrder
}

// Filter applies params to an already-loaded slice. Pure: the input is
// never mutated and the result is always a fresh slice.
func Filter(records []Part, params SearchParams) []Part {
	out := make([]Part, 0, len(records))
	for _, p := range records {
		if matches(p, params) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p Part, params SearchParams) bool {
	if params.Query != "" && !matchesQuery(p, params.Query) {
		return false
	}
	if params.Category != "" && !strings.EqualFold(p.Category, params.Category) {
		return false
	}
	if params.Manufacturer != "" && !strings.EqualFold(p.Manufacturer, params.Manufacturer) {
		return false
	}
	if pr := params.PriceRange; pr != nil && (p.Price < pr.Min || p.Price > pr.Max) {
		return false
	}
	if params.IsNew != nil && p.IsNew != *params.IsNew {
		return false
	}
	if params.InStock && p.Quantity <= 0 {
		return false
	}
	if params.CarModel != "" && !matchesCarModel(p, params.CarModel) {
		return false
	}
	return true
}

// matchesQuery does case-insensitive substring matching over article
// number, name, manufacturer and description.
func matchesQuery(p Part, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(p.ArticleNumber), q) ||
		strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Manufacturer), q) {
		return true
	}
	return p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q)
}

func matchesCarModel(p Part, model string) bool {
	m := strings.ToLower(model)
	for _, car := range p.CompatibleCars {
		if strings.Contains(strings.ToLower(car), m) {
			return true
		}
	}
	return false
}

// SortParts orders records by key and direction. Unknown keys leave the
// order untouched. The sort is stable so equal records keep their
// relative store order.
func SortParts(records []Part, key SortKey, order SortOrder) {
	var less func(a, b Part) bool
	switch key {
	case SortByPrice:
		less = func(a, b Part) bool { return a.Price < b.Price }
	case SortByName:
		less = func(a, b Part) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortByUpdatedAt:
		less = func(a, b Part) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortByQuantity:
		less = func(a, b Part) bool { return a.Quantity < b.Quantity }
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		if order == SortDesc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
