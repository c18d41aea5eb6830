// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | webhook (future)
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
	Language string  `yaml:"language"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port       int           `yaml:"port"`
	JWTSecret  string        `yaml:"jwt_secret"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// GroupConfig describes the group the bot serves. ChatID 0 disables group
// announcements; commands still work in direct chats.
type GroupConfig struct {
	ChatID        int64         `yaml:"chat_id"`
	Timezone      string        `yaml:"timezone"`
	EventDuration time.Duration `yaml:"event_duration"` // default length of a session
	LeadDays      int           `yaml:"lead_days"`      // how far ahead weeklies materialize
}

type SchedulerConfig struct {
	MaterializeCron string        `yaml:"materialize_cron"`
	ReminderCron    string        `yaml:"reminder_cron"`
	FinishCron      string        `yaml:"finish_cron"`
	ReminderLead    time.Duration `yaml:"reminder_lead"` // reminder fires this long before start
}

type ConversationConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Log          LogConfig          `yaml:"log"`
	Web          WebConfig          `yaml:"web"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Group        GroupConfig        `yaml:"group"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Conversation ConversationConfig `yaml:"conversation"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string = ""
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Web.Port != 0 && cfg.Web.JWTSecret == "" {
		return nil, errors.New("web.jwt_secret is required when web.port is set")
	}
	if _, err := time.LoadLocation(cfg.Group.Timezone); err != nil {
		return nil, fmt.Errorf("group.timezone: %w", err)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.SessionTTL <= 0 {
		cfg.Web.SessionTTL = 30 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Group.Timezone == "" {
		cfg.Group.Timezone = "UTC"
	}
	if cfg.Group.EventDuration <= 0 {
		cfg.Group.EventDuration = 2 * time.Hour
	}
	if cfg.Group.LeadDays <= 0 {
		cfg.Group.LeadDays = 7
	}
	if cfg.Scheduler.MaterializeCron == "" {
		cfg.Scheduler.MaterializeCron = "0 * * * *" // hourly
	}
	if cfg.Scheduler.ReminderCron == "" {
		cfg.Scheduler.ReminderCron = "*/10 * * * *"
	}
	if cfg.Scheduler.FinishCron == "" {
		cfg.Scheduler.FinishCron = "30 * * * *"
	}
	if cfg.Scheduler.ReminderLead <= 0 {
		cfg.Scheduler.ReminderLead = 3 * time.Hour
	}
	if cfg.Conversation.IdleTimeout <= 0 {
		cfg.Conversation.IdleTimeout = 10 * time.Minute
	}
}

// Location resolves the configured group timezone. Call after LoadConfig has
// validated it.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.Group.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
