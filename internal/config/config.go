// Package config loads and validates runtime configuration at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error. An optional YAML file tunes the engine parameters;
// environment variables win over it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// Config holds all runtime configuration for the hiring engine.
type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	ChatServiceURL string
	BillingURL     string
	Timezone       string
	Engine         Engine
}

// Engine tunes the scheduling and reminder behaviour.
type Engine struct {
	WorkdayStart  string   `yaml:"workday_start"`  // "09:00"
	WorkdayEnd    string   `yaml:"workday_end"`    // "18:00"
	ReminderLeads []string `yaml:"reminder_leads"` // e.g. ["4h", "1h"]
	SweepSpec     string   `yaml:"sweep_spec"`     // cron spec, e.g. "@every 2m"
}

// Load reads .env (if present), required environment variables, and the
// optional engine YAML file named by ENGINE_CONFIG.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	chatURL := os.Getenv("CHAT_SERVICE_URL")
	if chatURL == "" {
		return nil, fmt.Errorf("CHAT_SERVICE_URL is required")
	}
	billingURL := os.Getenv("BILLING_SERVICE_URL")
	if billingURL == "" {
		return nil, fmt.Errorf("BILLING_SERVICE_URL is required")
	}

	port := os.Getenv("ENGINE_PORT")
	if port == "" {
		port = "8084"
	}
	tz := os.Getenv("ENGINE_TZ")
	if tz == "" {
		tz = "Asia/Muscat"
	}

	engine := Engine{
		WorkdayStart:  "09:00",
		WorkdayEnd:    "18:00",
		ReminderLeads: []string{"4h"},
		SweepSpec:     "@every 2m",
	}
	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &engine); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:           port,
		DatabaseURL:    dbURL,
		RedisURL:       redisURL,
		ChatServiceURL: chatURL,
		BillingURL:     billingURL,
		Timezone:       tz,
		Engine:         engine,
	}
	if _, err := cfg.Window(); err != nil {
		return nil, err
	}
	if _, err := cfg.ReminderLeads(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Window resolves the working-hours window used for slot generation.
func (c *Config) Window() (hiring.Window, error) {
	open, err := hiring.MinuteOfDay(c.Engine.WorkdayStart)
	if err != nil {
		return hiring.Window{}, fmt.Errorf("workday_start: %w", err)
	}
	close, err := hiring.MinuteOfDay(c.Engine.WorkdayEnd)
	if err != nil {
		return hiring.Window{}, fmt.Errorf("workday_end: %w", err)
	}
	if close <= open {
		return hiring.Window{}, fmt.Errorf("workday_end %q must be after workday_start %q", c.Engine.WorkdayEnd, c.Engine.WorkdayStart)
	}
	return hiring.Window{OpenMinute: open, CloseMinute: close}, nil
}

// ReminderLeads parses the configured lead times.
func (c *Config) ReminderLeads() ([]time.Duration, error) {
	leads := make([]time.Duration, 0, len(c.Engine.ReminderLeads))
	for _, raw := range c.Engine.ReminderLeads {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("reminder_leads entry %q must be a positive duration", raw)
		}
		leads = append(leads, d)
	}
	return leads, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ENGINE_TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}
