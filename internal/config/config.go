/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML.
// Environment variables are read-only overrides applied at load time.
// Secrets (AI API key, server token secret) never live in this file; see secrets.go.
type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	AI            AIConfig         `yaml:"ai"`
	Dictionary    DictionaryConfig `yaml:"dictionary"`
	Storage       StorageConfig    `yaml:"storage"`
	Cache         CacheConfig      `yaml:"cache"`
	Server        ServerConfig     `yaml:"server"`
	Export        ExportConfig     `yaml:"export"`
	Logging       LoggingConfig    `yaml:"logging"`
}

type GeneralConfig struct {
	DataDir         string `yaml:"data_dir"`
	TelemetryOptIn  bool   `yaml:"telemetry_opt_in"`
	DefaultGrade    string `yaml:"default_grade"`
	DefaultProvince string `yaml:"default_province"`
	DefaultSubject  string `yaml:"default_subject"`
}

type AIConfig struct {
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	ImageModel        string `yaml:"image_model"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	MaxParallelImages int    `yaml:"max_parallel_images"`
}

type DictionaryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "postgres".
	Backend     string `yaml:"backend"`
	QuotaBytes  int64  `yaml:"quota_bytes"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type CacheConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
}

// ExportConfig names TTF or OTF files for slide images. Empty paths keep
// the built-in bitmap face.
type ExportConfig struct {
	FontRegular string `yaml:"font_regular"`
	FontBold    string `yaml:"font_bold"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// CurrentVersion is written into new config files.
const CurrentVersion = 2

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		General: GeneralConfig{
			DefaultGrade:    "Grade 3",
			DefaultProvince: "Ontario",
			DefaultSubject:  "Mathematics",
		},
		AI: AIConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-2.5-flash",
			ImageModel:        "gemini-2.5-flash-image",
			TimeoutSeconds:    120,
			RequestsPerMinute: 30,
			MaxParallelImages: 3,
		},
		Dictionary: DictionaryConfig{
			Enabled:        true,
			BaseURL:        "https://api.dictionaryapi.dev/api/v2/entries/en",
			TimeoutSeconds: 5,
		},
		Storage: StorageConfig{Backend: "file", QuotaBytes: 5 << 20},
		Cache:   CacheConfig{TTLMinutes: 24 * 60},
		Server:  ServerConfig{Addr: "127.0.0.1:8787", RateLimitPerMinute: 10},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Timeout returns the per-request timeout for AI calls.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return time.Duration(Defaults().AI.TimeoutSeconds) * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Timeout returns the per-request timeout for dictionary lookups.
func (d DictionaryConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return time.Duration(Defaults().Dictionary.TimeoutSeconds) * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Path returns the config file location. MPP_CONFIG wins over the per-user default.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "mapleprep", "config.yaml"), nil
}

// ResolveDataDir returns the library directory, falling back to ~/MaplePrep.
func (c AppConfig) ResolveDataDir() (string, error) {
	if d := strings.TrimSpace(c.General.DataDir); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, "MaplePrep"), nil
}

// Load reads the config file at Path (missing file is fine), merges it over
// the defaults and applies environment overrides.
func Load() (AppConfig, error) {
	path, err := Path()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Absent keys keep their defaults, so booleans can be merged as-is.
		fileCfg := Defaults()
		fileCfg.ConfigVersion = 0
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		migrate(&fileCfg)
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to Path.
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path with owner-only permissions.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	cfg.ConfigVersion = CurrentVersion
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// migrate upgrades older files in place before merging.
func migrate(c *AppConfig) {
	if c.ConfigVersion == 0 || c.ConfigVersion == 1 {
		// v1 had no storage section and always used the JSON file library.
		if c.Storage.Backend == "" {
			c.Storage.Backend = "file"
		}
		c.ConfigVersion = 2
	}
}

// mergeInto copies every non-zero field of src over dst. Booleans always win
// from the file so a user can switch a default-on feature off.
func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setStr(&dst.General.DataDir, src.General.DataDir)
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	setStr(&dst.General.DefaultGrade, src.General.DefaultGrade)
	setStr(&dst.General.DefaultProvince, src.General.DefaultProvince)
	setStr(&dst.General.DefaultSubject, src.General.DefaultSubject)

	setStr(&dst.AI.BaseURL, src.AI.BaseURL)
	setStr(&dst.AI.Model, src.AI.Model)
	setStr(&dst.AI.ImageModel, src.AI.ImageModel)
	setInt(&dst.AI.TimeoutSeconds, src.AI.TimeoutSeconds)
	setInt(&dst.AI.RequestsPerMinute, src.AI.RequestsPerMinute)
	setInt(&dst.AI.MaxParallelImages, src.AI.MaxParallelImages)

	dst.Dictionary.Enabled = src.Dictionary.Enabled
	setStr(&dst.Dictionary.BaseURL, src.Dictionary.BaseURL)
	setInt(&dst.Dictionary.TimeoutSeconds, src.Dictionary.TimeoutSeconds)

	if b := strings.ToLower(strings.TrimSpace(src.Storage.Backend)); b != "" {
		dst.Storage.Backend = b
	}
	if src.Storage.QuotaBytes != 0 {
		dst.Storage.QuotaBytes = src.Storage.QuotaBytes
	}
	setStr(&dst.Storage.PostgresDSN, src.Storage.PostgresDSN)

	setStr(&dst.Cache.RedisAddr, src.Cache.RedisAddr)
	setInt(&dst.Cache.TTLMinutes, src.Cache.TTLMinutes)

	setStr(&dst.Server.Addr, src.Server.Addr)
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = append([]string(nil), src.Server.AllowedOrigins...)
	}
	setInt(&dst.Server.RateLimitPerMinute, src.Server.RateLimitPerMinute)

	setStr(&dst.Export.FontRegular, src.Export.FontRegular)
	setStr(&dst.Export.FontBold, src.Export.FontBold)

	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
