// Package config reads the process configuration from BLADEDECK_*
// environment variables and builds the shared zap logger.
package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peterkuimelis/bladedeck/internal/game"
)

// Config is the configuration shared by every bladedeck binary. Command-line
// flags default to these values.
type Config struct {
	ContentFile string        `env:"BLADEDECK_CONTENT_FILE" envDefault:"content.yaml"`
	DBPath      string        `env:"BLADEDECK_DB_PATH" envDefault:"bladedeck.db"`
	Port        int           `env:"BLADEDECK_PORT" envDefault:"9000"`
	WebPort     int           `env:"BLADEDECK_WEB_PORT" envDefault:"8080"`
	Seed        int64         `env:"BLADEDECK_SEED" envDefault:"0"`
	LogLevel    string        `env:"BLADEDECK_LOG_LEVEL" envDefault:"info"`
	LogDev      bool          `env:"BLADEDECK_LOG_DEV" envDefault:"false"`
	HitInterval time.Duration `env:"BLADEDECK_HIT_INTERVAL" envDefault:"180ms"`

	// Rule overrides; 0 keeps the content file's value.
	HandSize   int `env:"BLADEDECK_HAND_SIZE"`
	MaxEnemies int `env:"BLADEDECK_MAX_ENEMIES"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HandSize < 0 || cfg.MaxEnemies < 0 {
		return Config{}, fmt.Errorf("hand size and max enemies must not be negative")
	}
	return cfg, nil
}

// Rules returns the content's rules with the overrides applied, or nil when
// nothing is overridden.
func (c Config) Rules(content *game.Content) *game.Rules {
	if c.HandSize == 0 && c.MaxEnemies == 0 {
		return nil
	}
	r := content.Rules
	if c.HandSize > 0 {
		r.HandSize = c.HandSize
	}
	if c.MaxEnemies > 0 {
		r.MaxEnemies = c.MaxEnemies
	}
	return &r
}

// Battle loads the content file and returns the base battle configuration.
func (c Config) Battle(logger *zap.Logger) (game.Config, error) {
	content, err := game.LoadContent(c.ContentFile)
	if err != nil {
		return game.Config{}, fmt.Errorf("load content %s: %w", c.ContentFile, err)
	}
	return game.Config{
		Content:     content,
		Rules:       c.Rules(content),
		Zap:         logger,
		Seed:        c.Seed,
		HitInterval: c.HitInterval,
	}, nil
}

// NewLogger builds a zap logger writing to stderr. development selects the
// console encoder; otherwise entries are JSON.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Logger builds the logger the configuration asks for.
func (c Config) Logger() (*zap.Logger, error) {
	return NewLogger(c.LogLevel, c.LogDev)
}
