/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "mapleprep/internal/log"
)

const (
	TablesDirName  = "tables"
	BackupsDirName = "backups"
	// DefaultKeepBackups is how many backups FileKV keeps per key.
	DefaultKeepBackups = 5
)

// FileKV stores each key as <root>/tables/<key>.json. Writes go to a temp
// file, are fsynced and renamed over the target; the previous value is
// copied to <root>/backups/<key>.json.<stamp>.bak first. A value that is not
// valid JSON on read is replaced by the newest readable backup.
type FileKV struct {
	Root        string
	KeepBackups int
}

// OpenFileKV creates the directory layout under root.
func OpenFileKV(root string) (*FileKV, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("data root is required")
	}
	for _, d := range []string{TablesDirName, BackupsDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", d, err)
		}
	}
	return &FileKV{Root: root, KeepBackups: DefaultKeepBackups}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.Root, TablesDirName, key+".json")
}

func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err == nil && json.Valid(b) {
		return string(b), true, nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "get").With(slog.String("key", key))
	bak, berr := s.latestBackup(key)
	if berr != nil {
		if err == nil {
			err = errors.New("invalid json")
		}
		l.Error("read failed and no usable backup", slog.Any("err", err), slog.Any("backup_err", berr))
		return "", false, fmt.Errorf("%w: %s: %v; backup attempt: %v", ErrCorrupt, key, err, berr)
	}
	l.Warn("read failed, using latest backup", slog.Any("err", err))
	return bak, true, nil
}

func (s *FileKV) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	target := s.path(key)
	bdir := filepath.Join(s.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().UTC().Format("20060102-150405.000000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.json.%s.bak", key, stamp))
		if err := copyFile(target, bpath); err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
		s.pruneBackups(key)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure tables dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, []byte(value)); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	if err := os.Rename(temp, target); err != nil {
		// Windows cannot rename over an existing file.
		_ = os.Remove(target)
		if err2 := os.Rename(temp, target); err2 != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace %s: %w", key, err2)
		}
	}
	return nil
}

func (s *FileKV) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) Keys(context.Context) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(s.Root, TablesDirName))
	if err != nil {
		return nil, fmt.Errorf("read tables dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileKV) Close() error { return nil }

// Backups lists backup files for key, oldest first.
func (s *FileKV) Backups(key string) ([]string, error) {
	bdir := filepath.Join(s.Root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := key + ".json."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // the stamp sorts lexicographically
	return out, nil
}

func (s *FileKV) latestBackup(key string) (string, error) {
	cands, err := s.Backups(key)
	if err != nil {
		return "", err
	}
	for i := len(cands) - 1; i >= 0; i-- {
		b, err := os.ReadFile(cands[i])
		if err == nil && json.Valid(b) {
			return string(b), nil
		}
	}
	return "", errors.New("no backups found")
}

func (s *FileKV) pruneBackups(key string) {
	keep := s.KeepBackups
	if keep <= 0 {
		return
	}
	cands, err := s.Backups(key)
	if err != nil || len(cands) <= keep {
		return
	}
	for _, p := range cands[:len(cands)-keep] {
		_ = os.Remove(p)
	}
}

// SnapshotTo copies every table into dir. Crash handling uses it to keep
// the library state next to a crash report.
func (s *FileKV) SnapshotTo(dir string) error {
	keys, err := s.Keys(context.Background())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, k := range keys {
		if err := copyFile(s.path(k), filepath.Join(dir, k+".json")); err != nil {
			return fmt.Errorf("snapshot %s: %w", k, err)
		}
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
