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

	"mapleprep/internal/backend"
	"mapleprep/internal/config"
	"mapleprep/internal/crash"
	"mapleprep/internal/presentation"
	"mapleprep/internal/ui"
)

func (c *commandLine) serve(ctx context.Context, args []string) error {
	fs := c.flags("serve")
	addr := fs.String("addr", c.cfg.Server.Addr, "listen address")
	if err := parse(fs, args); err != nil {
		return err
	}
	secret, err := config.ServerSecret()
	if err != nil {
		return err
	}
	if secret == "" {
		return fmt.Errorf("no token secret: set %s or run: mapleprep key set-server-secret <value>", config.EnvServerSecretKey)
	}
	opts := backend.Options{
		State:              c.state,
		Gen:                c.gen,
		Dict:               c.dict,
		Secret:             secret,
		AllowedOrigins:     c.cfg.Server.AllowedOrigins,
		RateLimitPerMinute: c.cfg.Server.RateLimitPerMinute,
	}
	if c.pg != nil {
		opts.Ready = c.pg.Ping
	}
	srv, err := backend.NewServer(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Listening on %s\n", *addr)
	if err := srv.Run(ctx, *addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *commandLine) ui(args []string) error {
	fs := c.flags("ui")
	if err := parse(fs, args); err != nil {
		return err
	}
	var images presentation.ImageGenerator
	if c.gen != nil {
		images = c.gen
	}
	return ui.Run(ui.Options{
		State:             c.state,
		Images:            images,
		Crash:             crash.Target{DataDir: c.dataDir, KV: c.kv},
		LessonID:          fs.Arg(0),
		MaxParallelImages: c.cfg.AI.MaxParallelImages,
		SlideFonts:        c.slideFonts(),
	})
}
