package scan

import (
	"context"
	"strings"
	"testing"

	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s *stubRecognizer) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	return s.text, s.err
}

func TestDraftFromTextAppliesFallbacks(t *testing.T) {
	svc := NewService(ServiceParams{})

	draft := svc.DraftFromText(context.Background(), "нечитабельний напис")
	if !strings.HasPrefix(draft.Part.ArticleNumber, "TMP-") {
		t.Fatalf("expected a placeholder article, got %q", draft.Part.ArticleNumber)
	}
	if draft.Part.Category != fallbackCategory {
		t.Fatalf("expected the fallback category, got %q", draft.Part.Category)
	}
	if draft.Part.Quantity != 1 || !draft.Part.IsNew {
		t.Fatalf("unexpected draft defaults: %+v", draft.Part)
	}
}

func TestDraftFromTextPrefersExtractedValues(t *testing.T) {
	svc := NewService(ServiceParams{})

	draft := svc.DraftFromText(context.Background(), sampleLabel)
	if draft.Part.ArticleNumber != "BP-10432" {
		t.Fatalf("article: %q", draft.Part.ArticleNumber)
	}
	if draft.Part.Manufacturer != "BOSCH" {
		t.Fatalf("manufacturer: %q", draft.Part.Manufacturer)
	}
	if draft.Part.Category != "гальма" {
		t.Fatalf("category: %q", draft.Part.Category)
	}
	if draft.Part.Price != 1450.50 {
		t.Fatalf("price: %v", draft.Part.Price)
	}
	if draft.Text != sampleLabel {
		t.Fatal("draft must carry the source text")
	}
}

func TestDraftFromImageUsesTheRecognizer(t *testing.T) {
	svc := NewService(ServiceParams{Recognizer: &stubRecognizer{text: sampleLabel}})

	draft, err := svc.DraftFromImage(context.Background(), "/tmp/label.jpg")
	if err != nil {
		t.Fatalf("DraftFromImage: %v", err)
	}
	if draft.Part.ArticleNumber != "BP-10432" {
		t.Fatalf("article: %q", draft.Part.ArticleNumber)
	}
}

func TestDraftFromImageWrapsRecognizerFailures(t *testing.T) {
	svc := NewService(ServiceParams{
		Recognizer: &stubRecognizer{err: pkgerrors.New(pkgerrors.CodeDependency, "vision unavailable")},
	})

	_, err := svc.DraftFromImage(context.Background(), "/tmp/label.jpg")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected a dependency error, got %v", err)
	}
}

func TestDraftFromImageWithoutRecognizer(t *testing.T) {
	svc := NewService(ServiceParams{})

	_, err := svc.DraftFromImage(context.Background(), "/tmp/label.jpg")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected a dependency error, got %v", err)
	}
	_, err = svc.DraftFromImage(context.Background(), "   ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
