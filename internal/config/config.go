package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration
type Config struct {
	// DataDir holds the database files and the WhatsApp device store
	DataDir string `env:"PLANNER_DATA_DIR" envDefault:"data"`
	// Storage selects the store backend: sqlite or json
	Storage string `env:"PLANNER_STORAGE" envDefault:"sqlite"`
	// QuestionsFile optionally replaces the built-in canonical questions
	QuestionsFile string `env:"PLANNER_QUESTIONS_FILE"`
	// ContinuationThreshold is how many answers trigger the continue prompt
	ContinuationThreshold int `env:"PLANNER_CONTINUATION_THRESHOLD" envDefault:"5"`
	// WhatsAppEnabled wires the sms channel to WhatsApp instead of the console
	WhatsAppEnabled bool `env:"PLANNER_WHATSAPP_ENABLED" envDefault:"false"`
	// LogLevel is a zerolog level name
	LogLevel string `env:"PLANNER_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Storage != "sqlite" && cfg.Storage != "json" {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}
