/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mapleprep/internal/config"
	"mapleprep/internal/crash"
	applog "mapleprep/internal/log"
	"mapleprep/internal/telemetry"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, cfgErr := config.Load()
	applog.Init(logOptions(cfg))
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	tc := telemetry.New(telemetry.FromConfig(cfg))
	telemetry.SetDefault(tc)
	defer tc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newCLI(ctx, cfg)
	if err != nil {
		l.Error("startup failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer c.close()
	defer crash.Recover(crash.Target{DataDir: c.dataDir, KV: c.kv})

	err = c.run(ctx, os.Args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errHelp):
		return 2
	default:
		l.Debug("command failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
}

// logOptions maps the logging section; MPP_LOG_* overrides are already
// applied by config.Load.
func logOptions(cfg config.AppConfig) applog.Options {
	return applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
}
