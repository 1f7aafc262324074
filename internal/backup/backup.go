// Copyright (c) 2026 ToeiRei
// Flatkeeper - apartment occupancy registry
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup reads and writes registry snapshots as zstd-compressed JSON.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/flatkeeper/internal/model"
)

// Extension is appended to backup file names that lack it.
const Extension = ".json.zst"

// DefaultFileName returns "flatkeeper-backup-YYYY-MM-DD.json.zst" for now.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("flatkeeper-backup-%s%s", now.Format("2006-01-02"), Extension)
}

// NormalizeFileName appends ".zst" when name does not end with it.
func NormalizeFileName(name string) string {
	if strings.HasSuffix(name, ".zst") {
		return name
	}
	return name + ".zst"
}

// Write encodes snap as indented JSON through a zstd encoder.
func Write(w io.Writer, snap model.Snapshot) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	return nil
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (model.Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var snap model.Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode backup: %w", err)
	}
	return snap, nil
}

// WriteFile writes snap to path, replacing any existing file.
func WriteFile(path string, snap model.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}
