package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port" validate:"gt=0,lt=65536"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Mode            string        `yaml:"mode" validate:"omitempty,oneof=debug release test"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"url" validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret"`
	ServiceKeyHash string `yaml:"service_key_hash"`
}

// Enabled reports whether any credential is configured.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != "" || a.ServiceKeyHash != ""
}

type DashboardConfig struct {
	Timezone string `yaml:"timezone"`
	FontPath string `yaml:"font_path"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email" validate:"omitempty,email"`
	NotifyEmail  string `yaml:"notify_email" validate:"omitempty,email"`
}

func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.NotifyEmail != ""
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type RedisConfig struct {
	Addr          string `yaml:"addr"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

type RealtimeConfig struct {
	// Listen relays pg_notify events into the WebSocket hub.
	Listen bool `yaml:"listen"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Email     EmailConfig     `yaml:"email"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Redis     RedisConfig     `yaml:"redis"`
	Realtime  RealtimeConfig  `yaml:"realtime"`

	location *time.Location
}

// Location is the zone "today" is computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// LoadConfig reads the YAML file at path (CONFIG_PATH, then DefaultPath when
// empty), applies environment overrides and defaults, and validates.
// A missing file is fine as long as the environment supplies the rest.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone %q: %w", cfg.Dashboard.Timezone, err)
	}
	cfg.location = loc
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.Dashboard.Timezone == "" {
		cfg.Dashboard.Timezone = "UTC"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Redis.ChannelPrefix == "" {
		cfg.Redis.ChannelPrefix = "crm:"
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.ServiceKeyHash, "SERVICE_KEY_HASH")
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Dashboard.Timezone, "TZ_DASHBOARD")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value for PORT: %q", v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for TELEGRAM_CHAT_ID: %q", v)
		}
		cfg.Telegram.ChatID = id
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
