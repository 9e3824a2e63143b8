/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"strconv"
	"strings"
)

// Env var names used as overrides.
const (
	EnvConfigPath      = "MPP_CONFIG"
	EnvDataDir         = "MPP_DATA_DIR"
	EnvTelemetryOptIn  = "MPP_TELEMETRY_OPT_IN"
	EnvAIBaseURL       = "MPP_AI_BASE_URL"
	EnvAIModel         = "MPP_AI_MODEL"
	EnvAIImageModel    = "MPP_AI_IMAGE_MODEL"
	EnvAITimeout       = "MPP_AI_TIMEOUT_SECONDS"
	EnvDictionaryURL   = "MPP_DICTIONARY_URL"
	EnvDictionaryOn    = "MPP_DICTIONARY_ENABLED"
	EnvStorageBackend  = "MPP_STORAGE_BACKEND"
	EnvStorageQuota    = "MPP_STORAGE_QUOTA_BYTES"
	EnvPostgresDSN     = "MPP_PG_DSN"
	EnvRedisAddr       = "MPP_REDIS_ADDR"
	EnvServerAddr      = "MPP_SERVER_ADDR"
	EnvExportFont      = "MPP_EXPORT_FONT"
	EnvExportFontBold  = "MPP_EXPORT_FONT_BOLD"
	EnvLogLevel        = "MPP_LOG_LEVEL"
	EnvLogFormat       = "MPP_LOG_FORMAT"
	EnvLogSource       = "MPP_LOG_SOURCE"
	EnvLogFile         = "MPP_LOG_FILE"
	EnvAPIKey          = "MPP_API_KEY"
	EnvServerSecretKey = "MPP_SERVER_SECRET"
)

type override struct {
	key   string // dotted yaml path
	env   string
	apply func(c *AppConfig, v string)
}

var overrides = []override{
	{"general.data_dir", EnvDataDir, func(c *AppConfig, v string) { c.General.DataDir = v }},
	{"general.telemetry_opt_in", EnvTelemetryOptIn, func(c *AppConfig, v string) { c.General.TelemetryOptIn = truthy(v) }},
	{"ai.base_url", EnvAIBaseURL, func(c *AppConfig, v string) { c.AI.BaseURL = v }},
	{"ai.model", EnvAIModel, func(c *AppConfig, v string) { c.AI.Model = v }},
	{"ai.image_model", EnvAIImageModel, func(c *AppConfig, v string) { c.AI.ImageModel = v }},
	{"ai.timeout_seconds", EnvAITimeout, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.AI.TimeoutSeconds = n
		}
	}},
	{"dictionary.base_url", EnvDictionaryURL, func(c *AppConfig, v string) { c.Dictionary.BaseURL = v }},
	{"dictionary.enabled", EnvDictionaryOn, func(c *AppConfig, v string) { c.Dictionary.Enabled = truthy(v) }},
	{"storage.backend", EnvStorageBackend, func(c *AppConfig, v string) { c.Storage.Backend = strings.ToLower(v) }},
	{"storage.quota_bytes", EnvStorageQuota, func(c *AppConfig, v string) {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Storage.QuotaBytes = n
		}
	}},
	{"storage.postgres_dsn", EnvPostgresDSN, func(c *AppConfig, v string) { c.Storage.PostgresDSN = v }},
	{"cache.redis_addr", EnvRedisAddr, func(c *AppConfig, v string) { c.Cache.RedisAddr = v }},
	{"server.addr", EnvServerAddr, func(c *AppConfig, v string) { c.Server.Addr = v }},
	{"export.font_regular", EnvExportFont, func(c *AppConfig, v string) { c.Export.FontRegular = v }},
	{"export.font_bold", EnvExportFontBold, func(c *AppConfig, v string) { c.Export.FontBold = v }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = truthy(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func applyEnvOverrides(cfg *AppConfig) {
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			o.apply(cfg, v)
		}
	}
}

// EnvOverrideFor reports which env var, if any, currently overrides the dotted key.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range overrides {
		if o.key == key && strings.TrimSpace(os.Getenv(o.env)) != "" {
			return o.env, true
		}
	}
	return "", false
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
