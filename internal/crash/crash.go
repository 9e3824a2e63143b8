/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report, a snapshot of the
// library tables and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "mapleprep/internal/log"
	"mapleprep/internal/storage"
	"mapleprep/internal/telemetry"
	"mapleprep/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target tells Recover where the library lives. The zero value writes the
// report to the temp dir and snapshots nothing.
type Target struct {
	DataDir string
	KV      storage.KV
}

func (t Target) dir() string {
	if t.DataDir != "" {
		return filepath.Join(t.DataDir, storage.BackupsDirName)
	}
	if fk, ok := storage.Unwrap(t.KV).(*storage.FileKV); ok {
		return filepath.Join(fk.Root, storage.BackupsDirName)
	}
	return os.TempDir()
}

// Recover captures a panic, logs it with its stack, writes a report and
// copies the file backed tables next to it, then exits with status 2.
//
// Usage: defer crash.Recover(target)
func Recover(t Target) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	reportPath, err := writeReport(t, stamp, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if fk, ok := storage.Unwrap(t.KV).(*storage.FileKV); ok {
		snap := filepath.Join(t.dir(), "crash-"+stamp+"-tables")
		if err := fk.SnapshotTo(snap); err != nil {
			l.Error("crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("crash snapshot written", slog.String("path", snap))
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func writeReport(t Target, stamp string, panicVal any, stack []byte) (string, error) {
	dir := t.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "crash-"+stamp+".log")

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "MaplePrep Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t.DataDir != "" {
		_, _ = fmt.Fprintf(&buf, "DataDir: %s\n", t.DataDir)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
