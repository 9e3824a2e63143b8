/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package librarypack

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mapleprep/internal/appstate"
	"mapleprep/internal/storage"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := appstate.New(storage.NewMemoryKV())
	if _, err := src.AddStudent(ctx, "Ava", "Grade 3"); err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddBookmark(ctx, "CBC Kids", "https://www.cbc.ca/kids"); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(t.TempDir(), "out", "library.zip")
	n, err := Export(ctx, src, zipPath)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d tables, want 2", n)
	}
	m, err := Inspect(zipPath)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if m.Format != Format || len(m.Tables) != 2 {
		t.Fatalf("manifest = %+v", m)
	}

	dst := appstate.New(storage.NewMemoryKV())
	got, err := Import(ctx, dst, zipPath, ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got != 2 {
		t.Fatalf("imported %d tables", got)
	}
	if s := dst.Students(ctx); len(s) != 1 || s[0].Name != "Ava" {
		t.Fatalf("students = %+v", s)
	}
	if b := dst.Bookmarks(ctx); len(b) != 1 {
		t.Fatalf("bookmarks = %+v", b)
	}
}

func TestImportSkipsExistingUnlessOverwrite(t *testing.T) {
	ctx := context.Background()
	src := appstate.New(storage.NewMemoryKV())
	_, _ = src.AddStudent(ctx, "Ava", "Grade 3")
	zipPath := filepath.Join(t.TempDir(), "library.zip")
	if _, err := Export(ctx, src, zipPath); err != nil {
		t.Fatal(err)
	}

	dst := appstate.New(storage.NewMemoryKV())
	_, _ = dst.AddStudent(ctx, "Liam", "Grade 4")
	n, err := Import(ctx, dst, zipPath, ImportOptions{})
	if err != nil || n != 0 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	if s := dst.Students(ctx); len(s) != 1 || s[0].Name != "Liam" {
		t.Fatalf("existing table replaced: %+v", s)
	}
	if n, err := Import(ctx, dst, zipPath, ImportOptions{Overwrite: true}); err != nil || n != 1 {
		t.Fatalf("overwrite Import = %d, %v", n, err)
	}
	if s := dst.Students(ctx); len(s) != 1 || s[0].Name != "Ava" {
		t.Fatalf("students after overwrite = %+v", s)
	}
}

func TestExportEmptyLibrary(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	n, err := Export(context.Background(), appstate.New(storage.NewMemoryKV()), zipPath)
	if err != nil || n != 0 {
		t.Fatalf("Export = %d, %v", n, err)
	}
	if _, err := Inspect(zipPath); err != nil {
		t.Fatalf("manifest-only pack unreadable: %v", err)
	}
	if _, err := Export(context.Background(), appstate.New(storage.NewMemoryKV()), " "); err == nil {
		t.Fatal("empty path accepted")
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(body))
	}
	_ = zw.Close()
	_ = f.Close()
	return p
}

func TestImportRejectsForeignArchives(t *testing.T) {
	ctx := context.Background()
	dst := appstate.New(storage.NewMemoryKV())
	cases := []struct {
		name    string
		entries map[string]string
		want    error
	}{
		{"no manifest", map[string]string{"tables/mapleprep_students.json": "[]"}, ErrNotAPack},
		{"style pack", map[string]string{"stylepack.manifest.txt": "x"}, ErrNotAPack},
		{"wrong format", map[string]string{ManifestName: `{"format":"other","version":1}`}, ErrNotAPack},
		{"newer", map[string]string{ManifestName: `{"format":"mapleprep-library","version":99}`}, ErrNewerPack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(ctx, dst, writeZip(t, tc.entries), ImportOptions{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestImportRejectsUnknownTable(t *testing.T) {
	p := writeZip(t, map[string]string{
		ManifestName:              `{"format":"mapleprep-library","version":1}`,
		"tables/not_a_table.json": `[]`,
	})
	if _, err := Import(context.Background(), appstate.New(storage.NewMemoryKV()), p, ImportOptions{}); err == nil {
		t.Fatal("unknown table accepted")
	}
}
