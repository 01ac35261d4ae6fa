package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skladapp/sklad-backend/internal/parts"
	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/metrics"
)

const fallbackCategory = "інше"

// Recognizer turns an image into raw text. The Google Vision client in
// pkg/vision is the production implementation.
type Recognizer interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// Draft is a prefilled record candidate built from recognized text. The
// caller reviews and completes it before it enters the store.
type Draft struct {
	Text       string        `json:"text"`
	Extraction Extraction    `json:"extraction"`
	Part       parts.NewPart `json:"part"`
}

// Service drives the scan-to-draft workflow.
type Service interface {
	ExtractFields(ctx context.Context, text string) Extraction
	DraftFromText(ctx context.Context, text string) Draft
	DraftFromImage(ctx context.Context, imagePath string) (Draft, error)
}

// ServiceParams groups dependencies for the scan service. Recognizer is
// optional; without one only the text endpoints work.
type ServiceParams struct {
	Recognizer Recognizer
	Metrics    *metrics.StoreMetrics
}

type service struct {
	recognizer Recognizer
	metrics    *metrics.StoreMetrics
	now        func() time.Time
}

// NewService builds the scan service.
func NewService(params ServiceParams) Service {
	return &service{
		recognizer: params.Recognizer,
		metrics:    params.Metrics,
		now:        time.Now,
	}
}

func (s *service) ExtractFields(ctx context.Context, text string) Extraction {
	s.metrics.Record("scan_extract", nil)
	return Extract(text)
}

// DraftFromText extracts what it can and fills the gaps so a scan never
// blocks record creation: missing article numbers get a temporary
// placeholder and unknown categories land in the catch-all bucket.
func (s *service) DraftFromText(ctx context.Context, text string) Draft {
	s.metrics.Record("scan_draft", nil)
	extraction := Extract(text)

	record := parts.NewPart{
		ArticleNumber: fmt.Sprintf("TMP-%d", s.now().Unix()),
		Category:      fallbackCategory,
		IsNew:         true,
		Quantity:      1,
	}
	if extraction.ArticleNumber != nil {
		record.ArticleNumber = *extraction.ArticleNumber
	}
	if extraction.Name != nil {
		record.Name = *extraction.Name
	}
	if extraction.Manufacturer != nil {
		record.Manufacturer = *extraction.Manufacturer
	}
	if extraction.Category != nil {
		record.Category = *extraction.Category
	}
	if extraction.Price != nil {
		record.Price = *extraction.Price
	}

	return Draft{
		Text:       text,
		Extraction: extraction,
		Part:       record,
	}
}

func (s *service) DraftFromImage(ctx context.Context, imagePath string) (Draft, error) {
	draft, err := s.draftFromImage(ctx, imagePath)
	s.metrics.Record("scan_image", err)
	return draft, err
}

func (s *service) draftFromImage(ctx context.Context, imagePath string) (Draft, error) {
	if strings.TrimSpace(imagePath) == "" {
		return Draft{}, pkgerrors.New(pkgerrors.CodeValidation, "image path is required")
	}
	if s.recognizer == nil {
		return Draft{}, pkgerrors.New(pkgerrors.CodeDependency, "text recognition is not configured")
	}

	text, err := s.recognizer.RecognizeText(ctx, imagePath)
	if err != nil {
		return Draft{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "text recognition failed")
	}
	return s.DraftFromText(ctx, text), nil
}
