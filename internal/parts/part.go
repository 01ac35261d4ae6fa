package parts

import (
	"strings"
	"time"

	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
)

// Part is a single inventory record. Dates serialize as RFC 3339 and the
// optional fields keep explicit nulls in the persisted JSON, matching the
// on-disk catalog format.
type Part struct {
	ID             int64     `json:"id"`
	ArticleNumber  string    `json:"articleNumber"`
	Name           string    `json:"name"`
	Manufacturer   string    `json:"manufacturer"`
	Category       string    `json:"category"`
	IsNew          bool      `json:"isNew"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	Description    *string   `json:"description"`
	PhotoPath      *string   `json:"photoPath"`
	CompatibleCars []string  `json:"compatibleCars"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewPart carries the caller-supplied fields of a record before the
// store assigns an id and timestamps.
type NewPart struct {
	ArticleNumber  string   `json:"articleNumber"`
	Name           string   `json:"name"`
	Manufacturer   string   `json:"manufacturer"`
	Category       string   `json:"category"`
	IsNew          bool     `json:"isNew"`
	Quantity       int      `json:"quantity"`
	Price          float64  `json:"price"`
	Description    *string  `json:"description"`
	PhotoPath      *string  `json:"photoPath"`
	CompatibleCars []string `json:"compatibleCars"`
}

// Validate enforces the record invariants: required strings non-blank
// after trimming, quantity >= 0, price > 0. It runs before any
// persistence attempt so a rejected record never touches disk.
func (n NewPart) Validate() error {
	details := map[string]string{}
	if strings.TrimSpace(n.ArticleNumber) == "" {
		details["articleNumber"] = "is required"
	}
	if strings.TrimSpace(n.Name) == "" {
		details["name"] = "is required"
	}
	if strings.TrimSpace(n.Manufacturer) == "" {
		details["manufacturer"] = "is required"
	}
	if strings.TrimSpace(n.Category) == "" {
		details["category"] = "is required"
	}
	if n.Quantity < 0 {
		details["quantity"] = "must be non-negative"
	}
	if n.Price <= 0 {
		details["price"] = "must be positive"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "part validation failed").WithDetails(details)
	}
	return nil
}

// Fields extracts the caller-editable fields of an existing record,
// letting update share the add-path validation.
func (p Part) Fields() NewPart {
	return NewPart{
		ArticleNumber:  p.ArticleNumber,
		Name:           p.Name,
		Manufacturer:   p.Manufacturer,
		Category:       p.Category,
		IsNew:          p.IsNew,
		Quantity:       p.Quantity,
		Price:          p.Price,
		Description:    p.Description,
		PhotoPath:      p.PhotoPath,
		CompatibleCars: p.CompatibleCars,
	}
}

func (n NewPart) build(id int64, createdAt, updatedAt time.Time) Part {
	return Part{
		ID:             id,
		ArticleNumber:  n.ArticleNumber,
		Name:           n.Name,
		Manufacturer:   n.Manufacturer,
		Category:       n.Category,
		IsNew:          n.IsNew,
		Quantity:       n.Quantity,
		Price:          n.Price,
		Description:    n.Description,
		PhotoPath:      n.PhotoPath,
		CompatibleCars: n.CompatibleCars,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}
