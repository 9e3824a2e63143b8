/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package librarypack moves a whole MaplePrep library between machines as
// one zip: a manifest plus the raw JSON of every application table.
package librarypack

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "mapleprep/internal/log"
	"mapleprep/internal/version"
)

const (
	ManifestName = "manifest.json"
	Format       = "mapleprep-library"
	// FormatVersion is bumped when the archive layout changes.
	FormatVersion = 1
	tablesDir     = "tables/"
	// maxTableBytes bounds a single table read from an archive.
	maxTableBytes = 64 << 20
)

var (
	ErrNotAPack  = errors.New("not a library pack")
	ErrNewerPack = errors.New("library pack was written by a newer version")
)

// Tables is the part of the application state a pack reads and writes.
type Tables interface {
	Tables(ctx context.Context) (map[string]string, error)
	RestoreTables(ctx context.Context, tables map[string]string) error
}

type Manifest struct {
	Format     string   `json:"format"`
	Version    int      `json:"version"`
	AppVersion string   `json:"appVersion"`
	Created    string   `json:"created"`
	Tables     []string `json:"tables"`
}

// Export writes every stored table of src into destZipPath and returns the
// number of tables written. An empty library still yields a pack holding
// only the manifest.
func Export(ctx context.Context, src Tables, destZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("librarypack"), "export")
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	tables, err := src.Tables(ctx)
	if err != nil {
		return 0, fmt.Errorf("read tables: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := Manifest{Format: Format, Version: FormatVersion, AppVersion: version.Version,
		Created: time.Now().UTC().Format(time.RFC3339), Tables: keys}
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := writeEntry(zw, ManifestName, mb); err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	for _, k := range keys {
		if err := writeEntry(zw, tablesDir+k+".json", []byte(tables[k])); err != nil {
			l.Error("zip build failed", slog.String("table", k), slog.Any("err", err))
			return 0, fmt.Errorf("add %s: %w", k, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish zip: %w", err)
	}
	if err := zf.Sync(); err != nil {
		return 0, fmt.Errorf("sync zip: %w", err)
	}
	l.Info("library pack exported", slog.Int("tables", len(keys)), slog.String("zip", destZipPath))
	return len(keys), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ImportOptions controls Import.
type ImportOptions struct {
	// Overwrite replaces tables that already hold data. Without it those
	// tables are skipped.
	Overwrite bool
}

// Import restores the tables in packZipPath into dst and returns how many
// were written. The manifest is checked before anything changes.
func Import(ctx context.Context, dst Tables, packZipPath string, opts ImportOptions) (int, error) {
	l := applog.WithOperation(applog.WithComponent("librarypack"), "import").With(slog.String("zip", packZipPath))
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	m, tables, err := read(&r.Reader)
	if err != nil {
		return 0, err
	}
	if !opts.Overwrite {
		existing, err := dst.Tables(ctx)
		if err != nil {
			return 0, fmt.Errorf("read tables: %w", err)
		}
		for k := range tables {
			if _, ok := existing[k]; ok {
				l.Warn("skip existing table", slog.String("table", k))
				delete(tables, k)
			}
		}
	}
	if err := dst.RestoreTables(ctx, tables); err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	l.Info("library pack installed", slog.Int("tables", len(tables)), slog.String("from", m.AppVersion))
	return len(tables), nil
}

// Inspect returns the manifest of a pack without importing it.
func Inspect(packZipPath string) (Manifest, error) {
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()
	m, _, err := read(&r.Reader)
	return m, err
}

func read(r *zip.Reader) (Manifest, map[string]string, error) {
	var (
		m     Manifest
		found bool
	)
	tables := map[string]string{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return Manifest{}, nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		switch {
		case f.Name == ManifestName:
			if err := json.Unmarshal(data, &m); err != nil {
				return Manifest{}, nil, fmt.Errorf("%w: %v", ErrNotAPack, err)
			}
			found = true
		case strings.HasPrefix(f.Name, tablesDir) && path.Ext(f.Name) == ".json":
			key := strings.TrimSuffix(strings.TrimPrefix(f.Name, tablesDir), ".json")
			if key == "" || strings.Contains(key, "/") {
				continue
			}
			if !json.Valid(data) {
				return Manifest{}, nil, fmt.Errorf("table %s: invalid JSON", key)
			}
			tables[key] = string(data)
		}
	}
	if !found || m.Format != Format {
		return Manifest{}, nil, ErrNotAPack
	}
	if m.Version > FormatVersion {
		return Manifest{}, nil, fmt.Errorf("%w (format %d)", ErrNewerPack, m.Version)
	}
	return m, tables, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxTableBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxTableBytes {
		return nil, fmt.Errorf("entry larger than %d bytes", maxTableBytes)
	}
	return data, nil
}
