package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")

	in := []int{1, 2, 3}
	if err := Write(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out []int
	if err := Read(path, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 3 || out[2] != 3 {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := Write(path, map[string]string{"a": "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the document, got %d entries", len(entries))
	}
}

func TestReadOrInitCreatesMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favorites.json")

	var ids []int64
	if err := ReadOrInit(path, &ids, []int64{}); err != nil {
		t.Fatalf("read or init: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty document, got %v", ids)
	}
	if !Exists(path) {
		t.Fatal("document should have been materialized")
	}
}

func TestReadMissingFileFails(t *testing.T) {
	var v any
	if err := Read(filepath.Join(t.TempDir(), "absent.json"), &v); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteIndentedIsHumanReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := WriteIndented(path, map[string]string{"version": "1.0"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("readfile: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"version\"") {
		t.Fatalf("expected indented output, got %q", raw)
	}
}
