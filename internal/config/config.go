// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port        int      `yaml:"port"`
	FrontendURL string   `yaml:"frontend_url"` // payment return redirects point here
	CORSOrigins []string `yaml:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TTL       time.Duration `yaml:"ttl"`
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

type PaymentConfig struct {
	YooKassa struct {
		ShopID    string `yaml:"shop_id"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"yookassa"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"` // ops channel
}

type AIConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	SystemPrompt      string `yaml:"system_prompt"`
	HistoryTokenLimit int    `yaml:"history_token_limit"`
}

type SchedulerConfig struct {
	PaymentExpiryInterval time.Duration `yaml:"payment_expiry_interval"`
	PendingPaymentTTL     time.Duration `yaml:"pending_payment_ttl"`
}

type WorkerConfig struct {
	NotificationWorkers int           `yaml:"notification_workers"`
	RetryAttempts       int           `yaml:"retry_attempts"`
	RetryBackoff        time.Duration `yaml:"retry_backoff"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Mail      MailConfig      `yaml:"mail"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Worker    WorkerConfig    `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

const defaultSystemPrompt = "Ты — вежливый помощник компании NeuralAI, которая внедряет AI-решения в бизнес. Отвечай кратко, по-русски. Предлагай оставить заявку или перейти в раздел контактов, если нужна консультация."

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 3001
	}
	if cfg.HTTP.FrontendURL == "" {
		cfg.HTTP.FrontendURL = "http://localhost:5173"
	}
	if cfg.Auth.TTL <= 0 {
		cfg.Auth.TTL = 24 * time.Hour
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "llama-3.1-8b-instant"
	}
	if cfg.AI.SystemPrompt == "" {
		cfg.AI.SystemPrompt = defaultSystemPrompt
	}
	if cfg.AI.HistoryTokenLimit <= 0 {
		cfg.AI.HistoryTokenLimit = 3000
	}
	if cfg.Scheduler.PaymentExpiryInterval <= 0 {
		cfg.Scheduler.PaymentExpiryInterval = time.Minute
	}
	if cfg.Scheduler.PendingPaymentTTL <= 0 {
		cfg.Scheduler.PendingPaymentTTL = time.Hour
	}
	if cfg.Worker.NotificationWorkers <= 0 {
		cfg.Worker.NotificationWorkers = 4
	}
	if cfg.Worker.RetryAttempts <= 0 {
		cfg.Worker.RetryAttempts = 3
	}
	if cfg.Worker.RetryBackoff <= 0 {
		cfg.Worker.RetryBackoff = 500 * time.Millisecond
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
