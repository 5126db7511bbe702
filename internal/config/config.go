package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TrendEdge/internal/logger"
	"TrendEdge/internal/scanner"
)

// Config holds all application configuration.
type Config struct {
	Log logger.Config `yaml:"log"`

	DataSource struct {
		Provider     string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo alpaca rest mock"`
		BaseURL      string        `yaml:"base_url" validate:"required_if=Provider rest"`
		APIKey       string        `yaml:"api_key"`
		AlpacaKey    string        `yaml:"alpaca_key" validate:"required_if=Provider alpaca"`
		AlpacaSecret string        `yaml:"alpaca_secret" validate:"required_if=Provider alpaca"`
		Timeout      time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
	} `yaml:"data_source"`

	Cache struct {
		Backend     string        `yaml:"backend" default:"memory" validate:"oneof=memory redis none"`
		TTL         time.Duration `yaml:"ttl" default:"15m" validate:"gt=0"`
		MaxEntries  int           `yaml:"max_entries" default:"512" validate:"gte=1"`
		JanitorCron string        `yaml:"janitor_cron" default:"0 */5 * * * *"`

		RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
	} `yaml:"cache"`

	Scan struct {
		Symbols  []string       `yaml:"symbols"`
		Period   string         `yaml:"period" default:"6mo"`
		Interval string         `yaml:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 1d 1wk"`
		Params   scanner.Params `yaml:"params"`
	} `yaml:"scan"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required_with=ChatID"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`

	Server struct {
		Addr         string        `yaml:"addr" default:":8080"`
		APIKeys      []string      `yaml:"api_keys"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"2m"`
	} `yaml:"server"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, applies environment variable overrides
// and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("LOG_LEVEL", &cfg.Log.Level)
	set("SCANNER_PROVIDER", &cfg.DataSource.Provider)
	set("DATA_BASE_URL", &cfg.DataSource.BaseURL)
	set("DATA_API_KEY", &cfg.DataSource.APIKey)
	set("ALPACA_API_KEY", &cfg.DataSource.AlpacaKey)
	set("ALPACA_SECRET_KEY", &cfg.DataSource.AlpacaSecret)
	set("CACHE_BACKEND", &cfg.Cache.Backend)
	set("REDIS_ADDR", &cfg.Cache.RedisAddr)
	set("REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	set("SQLITE_PATH", &cfg.Database.SQLitePath)
	set("TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken)
	set("TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	set("SERVER_ADDR", &cfg.Server.Addr)
	set("HTTPS_PROXY", &cfg.Proxy)

	if v := os.Getenv("SCAN_SYMBOLS"); v != "" {
		cfg.Scan.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Params.Workers = n
		}
	}
	if v := os.Getenv("SERVER_API_KEYS"); v != "" {
		cfg.Server.APIKeys = strings.Split(v, ",")
	}
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q (%s)", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether scan reports can be delivered to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
