package errors

import (
	stdErrors "errors"
	"net/http"
	"os"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeInvalidFormat, status: http.StatusUnprocessableEntity, publicMsg: "file format invalid", detailsOK: true},
		{code: CodeStorageIO, status: http.StatusInternalServerError, publicMsg: "storage failure", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeStorageIO, cause, "persist parts")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if got := err.Error(); got != "STORAGE_IO_ERROR: persist parts" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeNotFound, "part not found")
	wrapped := Wrap(CodeStorageIO, inner, "load store")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeStorageIO {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}
	if !IsCode(wrapped, CodeStorageIO) {
		t.Fatal("IsCode should match the outermost code")
	}
}

func TestDumpIncludesPathErrors(t *testing.T) {
	_, err := os.ReadFile("/definitely/not/here.json")
	if err == nil {
		t.Skip("unexpectedly readable path")
	}
	d := Dump(Wrap(CodeStorageIO, err, "read parts file"))
	if d.Path == "" || d.Op == "" {
		t.Fatalf("expected path/op extracted from fs.PathError, got %+v", d)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full error chain, got %v", d.Chain)
	}
}
