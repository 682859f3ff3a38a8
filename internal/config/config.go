package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrInvalidConfig   = errors.New("config: invalid value")
	ErrInvalidLogLevel = errors.New("config: unknown log level")
)

// ServerConfig は権限サーバーの設定です。
type ServerConfig struct {
	Addr              string        `env:"ADDR"               envDefault:"localhost"`
	Port              string        `env:"PORT"               envDefault:"9090"`
	LogLevel          string        `env:"LOG_LEVEL"          envDefault:"info"`
	TickRate          int           `env:"TICK_RATE"          envDefault:"60"`
	MaxHealth         float32       `env:"MAX_HEALTH"         envDefault:"100"`
	FireRate          time.Duration `env:"FIRE_RATE"          envDefault:"250ms"`
	ProjectileDamage  float32       `env:"PROJECTILE_DAMAGE"  envDefault:"10"`
	MaxDamage         float32       `env:"MAX_DAMAGE"         envDefault:"10000"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"       envDefault:"30s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"   envDefault:"10s"`
	AdminSecret       string        `env:"ADMIN_JWT_SECRET"`
	OTelEndpoint      string        `env:"OTEL_ENDPOINT"`
	ServiceName       string        `env:"SERVICE_NAME"       envDefault:"thirdpersonmp"`
}

// ObserverConfig は観測者クライアントの設定です。
type ObserverConfig struct {
	ServerURL     string        `env:"SERVER_URL"     envDefault:"ws://localhost:9090/ws"`
	Count         int           `env:"OBSERVER_COUNT" envDefault:"1"`
	LogLevel      string        `env:"LOG_LEVEL"      envDefault:"info"`
	FireRate      time.Duration `env:"FIRE_RATE"      envDefault:"250ms"`
	TickRate      int           `env:"TICK_RATE"      envDefault:"60"`
	HUDInterval   time.Duration `env:"HUD_INTERVAL"   envDefault:"5s"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"3s"`
}

// Listen は待ち受けアドレスを返します。
func (c ServerConfig) Listen() string { return c.Addr + ":" + c.Port }

// TickInterval はtick間隔を返します。
func (c ServerConfig) TickInterval() time.Duration { return time.Second / time.Duration(c.TickRate) }

func (c ObserverConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c ServerConfig) Validate() error {
	switch {
	case c.TickRate <= 0:
		return fmt.Errorf("%w: TICK_RATE must be positive, got %d", ErrInvalidConfig, c.TickRate)
	case c.MaxHealth <= 0:
		return fmt.Errorf("%w: MAX_HEALTH must be positive, got %v", ErrInvalidConfig, c.MaxHealth)
	case c.FireRate <= 0:
		return fmt.Errorf("%w: FIRE_RATE must be positive, got %v", ErrInvalidConfig, c.FireRate)
	case c.ProjectileDamage < 0:
		return fmt.Errorf("%w: PROJECTILE_DAMAGE must not be negative, got %v", ErrInvalidConfig, c.ProjectileDamage)
	case c.MaxDamage <= 0:
		return fmt.Errorf("%w: MAX_DAMAGE must be positive, got %v", ErrInvalidConfig, c.MaxDamage)
	case c.HeartbeatInterval <= 0 || c.IdleTimeout <= c.HeartbeatInterval:
		return fmt.Errorf("%w: IDLE_TIMEOUT (%v) must exceed HEARTBEAT_INTERVAL (%v)", ErrInvalidConfig, c.IdleTimeout, c.HeartbeatInterval)
	}
	_, err := ParseLevel(c.LogLevel)
	return err
}

func (c ObserverConfig) Validate() error {
	switch {
	case c.ServerURL == "":
		return fmt.Errorf("%w: SERVER_URL is required", ErrInvalidConfig)
	case c.Count <= 0:
		return fmt.Errorf("%w: OBSERVER_COUNT must be positive, got %d", ErrInvalidConfig, c.Count)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: TICK_RATE must be positive, got %d", ErrInvalidConfig, c.TickRate)
	case c.FireRate <= 0:
		return fmt.Errorf("%w: FIRE_RATE must be positive, got %v", ErrInvalidConfig, c.FireRate)
	case c.HUDInterval <= 0:
		return fmt.Errorf("%w: HUD_INTERVAL must be positive, got %v", ErrInvalidConfig, c.HUDInterval)
	}
	_, err := ParseLevel(c.LogLevel)
	return err
}

// LoadServer は環境変数からサーバー設定を読み込みます。
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := parse(&cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// LoadObserver は環境変数から観測者設定を読み込みます。
func LoadObserver() (ObserverConfig, error) {
	var cfg ObserverConfig
	if err := parse(&cfg); err != nil {
		return ObserverConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ObserverConfig{}, err
	}
	return cfg, nil
}

func parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseLevel はLOG_LEVELの文字列をslogのレベルに変換します。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}
