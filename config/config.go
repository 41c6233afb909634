// Package config loads the service configuration from a JSON file with
// environment overrides, so a deployment can ship one file and tweak
// per-host details without editing it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const defaultPath = "config.json"

// Config is the full service configuration.
type Config struct {
	// Port serves the status and REST endpoints.
	Port int `json:"port"`

	// GatewayHTTPURL is the chat relay base URL for outbound messages.
	GatewayHTTPURL string `json:"gateway_http_url"`
	// GatewayWSURL is the websocket endpoint that streams inbound events.
	GatewayWSURL string `json:"gateway_ws_url"`

	RedisAddr string `json:"redis_addr"`
	RedisDB   int    `json:"redis_db"`

	// CommandPrefix, when set, must lead every command message.
	CommandPrefix string `json:"command_prefix"`

	// ScheduleHour is the local hour (0..23) the daily scheduler fires.
	ScheduleHour int `json:"schedule_hour"`

	BackupDir string `json:"backup_dir"`

	// APIToken guards non-localhost REST access. Empty means localhost
	// only.
	APIToken string `json:"api_token"`

	// AllowedOrigins feeds the CORS layer of the REST surface.
	AllowedOrigins []string `json:"allowed_origins"`
}

// Load reads the config file (path from SAMKARI_CONFIG, falling back to
// ./config.json), applies defaults and environment overrides. A missing
// file is not an error; the defaults plus environment carry a dev setup.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8620,
		GatewayHTTPURL: "http://localhost:8621",
		GatewayWSURL:   "ws://localhost:8621/ws",
		RedisAddr:      "localhost:6379",
		ScheduleHour:   9,
		BackupDir:      "backups",
	}

	path := os.Getenv("SAMKARI_CONFIG")
	if path == "" {
		path = defaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults + env only.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ScheduleHour < 0 || cfg.ScheduleHour > 23 {
		return nil, fmt.Errorf("invalid schedule hour %d", cfg.ScheduleHour)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SAMKARI_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("SAMKARI_GATEWAY_HTTP_URL"); v != "" {
		cfg.GatewayHTTPURL = v
	}
	if v := os.Getenv("SAMKARI_GATEWAY_WS_URL"); v != "" {
		cfg.GatewayWSURL = v
	}
	if v := os.Getenv("SAMKARI_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SAMKARI_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("SAMKARI_COMMAND_PREFIX"); v != "" {
		cfg.CommandPrefix = v
	}
	if v := os.Getenv("SAMKARI_SCHEDULE_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ScheduleHour = n
		}
	}
	if v := os.Getenv("SAMKARI_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("SAMKARI_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
}
