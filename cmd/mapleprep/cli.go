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
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mapleprep/internal/ai"
	"mapleprep/internal/appstate"
	"mapleprep/internal/backend"
	"mapleprep/internal/cache"
	"mapleprep/internal/config"
	"mapleprep/internal/dictionary"
	"mapleprep/internal/games"
	applog "mapleprep/internal/log"
	"mapleprep/internal/storage"
	"mapleprep/internal/textlayout"
	"mapleprep/internal/version"
)

var errHelp = errors.New("help provided")

// commandLine carries the opened library and collaborators shared by the
// subcommands.
type commandLine struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	cfg     config.AppConfig
	dataDir string
	kv      storage.KV
	pg      *backend.PGStore
	state   *appstate.State
	cache   cache.Cache
	dict    games.Dictionary
	gen     ai.Generator
	genErr  error
	log     *slog.Logger
}

// newCLI opens the library named by cfg and builds the AI and dictionary
// clients. A missing API key is not an error until a command needs it.
func newCLI(ctx context.Context, cfg config.AppConfig) (*commandLine, error) {
	c := &commandLine{
		out:    os.Stdout,
		errOut: os.Stderr,
		in:     os.Stdin,
		cfg:    cfg,
		log:    applog.WithComponent("cli"),
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	c.dataDir = dir

	var kv storage.KV
	switch cfg.Storage.Backend {
	case "postgres":
		pg, err := backend.OpenPG(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		c.pg, kv = pg, pg
	default:
		if cfg.Storage.Backend != storage.BackendMemory {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		kv, err = storage.OpenLocal(cfg.Storage.Backend, dir)
		if err != nil {
			return nil, err
		}
	}
	quota := cfg.Storage.QuotaBytes
	if c.pg != nil {
		quota = 0
	}
	c.kv = storage.NewQuota(kv, quota)
	c.state = appstate.New(c.kv)
	if n, err := c.state.Migrate(ctx); err != nil {
		c.log.Warn("library migration failed", slog.Any("err", err))
	} else if n > 0 {
		c.log.Info("library migrated", slog.Int("tables", n))
	}

	ch, err := cache.Open(ctx, cfg.Cache.RedisAddr)
	if err != nil {
		c.log.Warn("redis unavailable, using memory cache", slog.String("addr", cfg.Cache.RedisAddr), slog.Any("err", err))
	}
	c.cache = ch

	if cfg.Dictionary.Enabled {
		c.dict = dictionary.New(cfg.Dictionary.BaseURL, cfg.Dictionary.Timeout(),
			dictionary.WithCache(ch, cfg.Cache.TTL()))
	}

	key, err := config.APIKey()
	if err != nil {
		c.log.Warn("api key lookup failed", slog.Any("err", err))
	}
	aicfg := ai.ConfigFrom(cfg.AI)
	aicfg.APIKey = key
	aicfg.Cache, aicfg.CacheTTL = ch, cfg.Cache.TTL()
	if g, err := ai.New(aicfg); err != nil {
		c.genErr = err
	} else {
		c.gen = g
	}
	return c, nil
}

func (c *commandLine) close() {
	if closer, ok := c.cache.(io.Closer); ok {
		_ = closer.Close()
	}
	if c.kv != nil {
		_ = c.kv.Close()
	}
}

// generator returns the AI client or explains why there is none.
func (c *commandLine) generator() (ai.Generator, error) {
	if c.gen != nil {
		return c.gen, nil
	}
	if c.genErr != nil {
		return nil, fmt.Errorf("%w (set %s or run: mapleprep key set <key>)", c.genErr, config.EnvAPIKey)
	}
	return nil, ai.ErrNoAPIKey
}

// slideFonts returns the configured export typeface. A font that cannot be
// loaded is reported and the bitmap face is used instead.
func (c *commandLine) slideFonts() textlayout.Provider {
	p, err := textlayout.LoadSlideFonts(c.cfg.Export.FontRegular, c.cfg.Export.FontBold)
	if err != nil {
		fmt.Fprintln(c.errOut, "Warning:", err)
	}
	return p
}

// warn prints storage warnings and swallows them; other errors pass through.
func (c *commandLine) warn(err error) error {
	if err != nil && appstate.IsWarning(err) {
		fmt.Fprintln(c.errOut, "Warning:", err)
		return nil
	}
	return err
}

func (c *commandLine) printUsage() {
	w := c.out
	fmt.Fprintln(w, "MaplePrep: lesson planning for Canadian classrooms")
	fmt.Fprintf(w, "Version: %s\n\n", version.String())
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mapleprep version                             Show version")
	fmt.Fprintln(w, "  mapleprep generate -topic T [-grade G] ...     Generate and save a lesson")
	fmt.Fprintln(w, "  mapleprep list                                List saved lessons")
	fmt.Fprintln(w, "  mapleprep show [-json] <id>                   Show a lesson")
	fmt.Fprintln(w, "  mapleprep delete <id>                         Delete a lesson")
	fmt.Fprintln(w, "  mapleprep search [-grade G] [-subject S] text Search the library")
	fmt.Fprintln(w, "  mapleprep worksheet -topic T [-style S] ...    Generate a standalone worksheet")
	fmt.Fprintln(w, "  mapleprep print [-key] [-pdf file] <id>       Print a lesson worksheet")
	fmt.Fprintln(w, "  mapleprep export [-preset P] [-out dir] <id>  Export a lesson (print, pdf, png, epub)")
	fmt.Fprintln(w, "  mapleprep image [-slide N] [-example|-all] <id> Generate slide images")
	fmt.Fprintln(w, "  mapleprep wordchain [-no-dict]                Play the word chain game")
	fmt.Fprintln(w, "  mapleprep game <quiz|sorting|story|memory|banana> -topic T")
	fmt.Fprintln(w, "  mapleprep students [add [-grade G] <name> | rm <id> | pick [-file F]]")
	fmt.Fprintln(w, "  mapleprep bookmarks [add <title> <url> | rm <id>]")
	fmt.Fprintln(w, "  mapleprep planner [set <day> <period> [-subject S] | clear <day> <period>]")
	fmt.Fprintln(w, "  mapleprep pack <export|import|inspect> <zip>  Library packs")
	fmt.Fprintln(w, "  mapleprep history [-restore REV] <id>         List or restore lesson revisions (sqlite)")
	fmt.Fprintln(w, "  mapleprep thumb [-slide N] [-w px] <id>       Write a cached slide thumbnail")
	fmt.Fprintln(w, "  mapleprep teachers [invite -email E <name> | status <id> <s> | rm <id>]")
	fmt.Fprintln(w, "  mapleprep board [set ... | presets | preset <save|apply|rm> | plan <day> <period> | save <name> | load <id>]")
	fmt.Fprintln(w, "  mapleprep timer [-m minutes]                  Run a classroom countdown")
	fmt.Fprintln(w, "  mapleprep scramble <word...>                  Scramble words for a guessing game")
	fmt.Fprintln(w, "  mapleprep remote -url U [-token T] <list|show <id>|search <text>>")
	fmt.Fprintln(w, "  mapleprep token [-ttl 720h] <subject>         Issue an API bearer token")
	fmt.Fprintln(w, "  mapleprep key <set|status>                    Manage the AI API key")
	fmt.Fprintln(w, "  mapleprep serve [-addr host:port]             Run the HTTP API")
	fmt.Fprintln(w, "  mapleprep ui [<id>]                           Launch the desktop presenter (build with -tags fyne)")
}

// run dispatches args[1]. args[0] is the program name.
func (c *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		c.printUsage()
		return errHelp
	}
	c.log.Debug("start", slog.String("cmd", args[1]), slog.Int("args", len(args)))
	rest := args[2:]
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, "MaplePrep")
		fmt.Fprintln(c.out, version.String())
		return nil
	case "generate":
		return c.generate(ctx, rest)
	case "list":
		return c.list(ctx)
	case "show":
		return c.show(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "search":
		return c.search(ctx, rest)
	case "worksheet":
		return c.worksheet(ctx, rest)
	case "print":
		return c.print(ctx, rest)
	case "export":
		return c.export(ctx, rest)
	case "image":
		return c.image(ctx, rest)
	case "wordchain":
		return c.wordchain(ctx, rest)
	case "game":
		return c.game(ctx, rest)
	case "students":
		return c.students(ctx, rest)
	case "bookmarks":
		return c.bookmarks(ctx, rest)
	case "planner":
		return c.planner(ctx, rest)
	case "pack":
		return c.pack(ctx, rest)
	case "timer":
		return c.timer(ctx, rest)
	case "scramble":
		return c.scramble(rest)
	case "teachers":
		return c.teachers(ctx, rest)
	case "board":
		return c.board(ctx, rest)
	case "history":
		return c.history(ctx, rest)
	case "thumb":
		return c.thumb(ctx, rest)
	case "remote":
		return c.remote(ctx, rest)
	case "token":
		return c.token(rest)
	case "key":
		return c.key(rest)
	case "serve":
		return c.serve(ctx, rest)
	case "ui":
		return c.ui(rest)
	case "help", "-h", "--help":
		c.printUsage()
		return nil
	default:
		c.printUsage()
		return errHelp
	}
}

// flags returns a flag set that reports errors instead of exiting.
func (c *commandLine) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// parse parses args and maps -h to errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// oneArg requires exactly one positional argument after the flags.
func oneArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fmt.Fprintf(fs.Output(), "%s requires <%s>\n", fs.Name(), what)
		fs.Usage()
		return "", errHelp
	}
	return fs.Arg(0), nil
}
