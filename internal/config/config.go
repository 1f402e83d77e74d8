package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the Huntly daemon.
type Config struct {
	Database DatabaseConfig
	Scrape   ScrapeConfig
	Telegram TelegramConfig
	Email    EmailConfig
	AI       AIConfig
	Workana  WorkanaConfig
	Dispatch DispatchConfig
}

// DatabaseConfig locates the SQLite job store.
type DatabaseConfig struct {
	Path string
}

// ScrapeConfig controls the feed walk.
type ScrapeConfig struct {
	URL      string        // Workana search URL, filters included
	Interval time.Duration // gap between scrape cycles
	MaxPages int           // 0 walks until an empty page
	MaxAge   time.Duration // freshness window; 0 passes all
	MinDelay time.Duration // minimum gap between requests to the same host
	Timeout  time.Duration // per-request timeout
}

// TelegramConfig controls the interactive review channel.
type TelegramConfig struct {
	Enabled     bool
	Token       string // expanded from env var by Load
	ChatID      string
	PollTimeout time.Duration // long-poll timeout for getUpdates
}

// EmailConfig controls the SMTP notice channel.
type EmailConfig struct {
	Enabled  bool
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	To       string
}

// AIConfig controls the proposal generator.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// WorkanaConfig controls proposal submission.
type WorkanaConfig struct {
	StateFile string // exported browser login session (storage-state JSON)
}

// DispatchConfig controls prompt delivery retries.
type DispatchConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Database rawDatabaseConfig `yaml:"database"`
	Scrape   rawScrapeConfig   `yaml:"scrape"`
	Telegram rawTelegramConfig `yaml:"telegram"`
	Email    rawEmailConfig    `yaml:"email"`
	AI       rawAIConfig       `yaml:"ai"`
	Workana  rawWorkanaConfig  `yaml:"workana"`
	Dispatch rawDispatchConfig `yaml:"dispatch"`
}

type rawDatabaseConfig struct {
	Path string `yaml:"path"`
}

type rawScrapeConfig struct {
	URL      string `yaml:"url"`
	Interval string `yaml:"interval"`
	MaxPages int    `yaml:"max_pages"`
	MaxAge   string `yaml:"max_age"`
	MinDelay string `yaml:"min_delay"`
	Timeout  string `yaml:"timeout"`
}

type rawTelegramConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Token       string `yaml:"token"`
	ChatID      string `yaml:"chat_id"`
	PollTimeout string `yaml:"poll_timeout"`
}

type rawEmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	To       string `yaml:"to"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawWorkanaConfig struct {
	StateFile string `yaml:"state_file"`
}

type rawDispatchConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelay   string `yaml:"base_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 10 * time.Minute // default
	if raw.Scrape.Interval != "" {
		interval, err = time.ParseDuration(raw.Scrape.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.interval %q: %w", raw.Scrape.Interval, err)
		}
	}

	maxAge := time.Duration(0) // default: no freshness cutoff
	if raw.Scrape.MaxAge != "" {
		maxAge, err = time.ParseDuration(raw.Scrape.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.max_age %q: %w", raw.Scrape.MaxAge, err)
		}
	}

	minDelay := 2 * time.Second // default
	if raw.Scrape.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Scrape.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.min_delay %q: %w", raw.Scrape.MinDelay, err)
		}
	}

	scrapeTimeout := 30 * time.Second // default
	if raw.Scrape.Timeout != "" {
		scrapeTimeout, err = time.ParseDuration(raw.Scrape.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.timeout %q: %w", raw.Scrape.Timeout, err)
		}
	}

	pollTimeout := 30 * time.Second // default
	if raw.Telegram.PollTimeout != "" {
		pollTimeout, err = time.ParseDuration(raw.Telegram.PollTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse telegram.poll_timeout %q: %w", raw.Telegram.PollTimeout, err)
		}
	}

	aiTimeout := 60 * time.Second // default
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	dispatchAttempts := 3 // default
	if raw.Dispatch.MaxAttempts > 0 {
		dispatchAttempts = raw.Dispatch.MaxAttempts
	}

	dispatchDelay := 1 * time.Second // default
	if raw.Dispatch.BaseDelay != "" {
		dispatchDelay, err = time.ParseDuration(raw.Dispatch.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse dispatch.base_delay %q: %w", raw.Dispatch.BaseDelay, err)
		}
	}

	dbPath := raw.Database.Path
	if dbPath == "" {
		dbPath = "huntly.db"
	}

	smtpPort := raw.Email.SMTPPort
	if smtpPort == 0 {
		smtpPort = 587
	}

	cfg := &Config{
		Database: DatabaseConfig{Path: dbPath},
		Scrape: ScrapeConfig{
			URL:      raw.Scrape.URL,
			Interval: interval,
			MaxPages: raw.Scrape.MaxPages,
			MaxAge:   maxAge,
			MinDelay: minDelay,
			Timeout:  scrapeTimeout,
		},
		Telegram: TelegramConfig{
			Enabled:     raw.Telegram.Enabled,
			Token:       raw.Telegram.Token,
			ChatID:      raw.Telegram.ChatID,
			PollTimeout: pollTimeout,
		},
		Email: EmailConfig{
			Enabled:  raw.Email.Enabled,
			SMTPHost: raw.Email.SMTPHost,
			SMTPPort: smtpPort,
			Username: raw.Email.Username,
			Password: raw.Email.Password,
			To:       raw.Email.To,
		},
		AI: AIConfig{
			Enabled: raw.AI.Enabled,
			BaseURL: aiBaseURL,
			Model:   raw.AI.Model,
			APIKey:  raw.AI.APIKey,
			Timeout: aiTimeout,
		},
		Workana:  WorkanaConfig{StateFile: raw.Workana.StateFile},
		Dispatch: DispatchConfig{MaxAttempts: dispatchAttempts, BaseDelay: dispatchDelay},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Scrape.URL == "" {
		return fmt.Errorf("scrape.url is required")
	}
	if !strings.HasPrefix(cfg.Scrape.URL, "http://") && !strings.HasPrefix(cfg.Scrape.URL, "https://") {
		return fmt.Errorf("scrape.url must be an absolute http(s) URL, got %q", cfg.Scrape.URL)
	}
	if cfg.Scrape.Interval <= 0 {
		return fmt.Errorf("scrape.interval must be positive, got %v", cfg.Scrape.Interval)
	}
	if cfg.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must not be negative, got %d", cfg.Scrape.MaxPages)
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram.token is required when telegram.enabled is true")
		}
		if cfg.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram.enabled is true")
		}
	}

	if cfg.Email.Enabled {
		if cfg.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required when email.enabled is true")
		}
		if cfg.Email.To == "" {
			return fmt.Errorf("email.to is required when email.enabled is true")
		}
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	if cfg.Dispatch.MaxAttempts < 1 {
		return fmt.Errorf("dispatch.max_attempts must be at least 1, got %d", cfg.Dispatch.MaxAttempts)
	}
	if cfg.Dispatch.BaseDelay <= 0 {
		return fmt.Errorf("dispatch.base_delay must be positive, got %v", cfg.Dispatch.BaseDelay)
	}

	return nil
}
