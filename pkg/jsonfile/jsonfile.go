// Package jsonfile reads and writes whole JSON documents on disk.
// Writes go through a temp file in the same directory followed by a
// rename, so a crash mid-write never leaves a truncated document.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether the file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Read unmarshals the document at path into dest.
func Read(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadOrInit behaves like Read but materializes an empty document from
// init when the file does not exist yet.
func ReadOrInit(path string, dest any, init any) error {
	err := Read(path, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := Write(path, init); err != nil {
		return err
	}
	return Read(path, dest)
}

// Write marshals value and atomically replaces the document at path.
func Write(path string, value any) error {
	return write(path, value, false)
}

// WriteIndented is Write with human-readable indentation, used for
// backup snapshots a user may inspect by hand.
func WriteIndented(path string, value any) error {
	return write(path, value, true)
}

func write(path string, value any, indent bool) error {
	var (
		raw []byte
		err error
	)
	if indent {
		raw, err = json.MarshalIndent(value, "", "  ")
	} else {
		raw, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
