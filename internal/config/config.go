package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env            string `envconfig:"APP_ENV" default:"development"`
	ServerAddr     string `envconfig:"SERVER_ADDR" default:":8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	TZ             string `envconfig:"TZ" default:"Asia/Almaty"`
	FrontendOrigin string `envconfig:"FRONTEND_ORIGIN" default:"http://localhost:3000"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`

	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"60"`
	RedisURL        string `envconfig:"REDIS_URL"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`

	MongoURI string `envconfig:"MONGO_URI"`
	MongoDB  string `envconfig:"MONGO_DB"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"expertbook.events"`

	BrevoAPIKey      string `envconfig:"BREVO_API_KEY"`
	BrevoSenderEmail string `envconfig:"BREVO_SENDER_EMAIL"`
	BrevoSenderName  string `envconfig:"BREVO_SENDER_NAME" default:"Expertbook"`
	BrevoSandbox     bool   `envconfig:"BREVO_SANDBOX" default:"false"`
	OpsEmail         string `envconfig:"OPS_EMAIL"`

	MeetBaseURL string `envconfig:"MEET_BASE_URL" default:"https://meet.google.com/"`

	Timezone        *time.Location `ignored:"true"`
	FrontendOrigins []string       `ignored:"true"`
}

// Load reads .env when present (real environment wins) and then the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", cfg.TZ, err)
	}
	cfg.Timezone = loc

	if cfg.MongoURI != "" && cfg.MongoDB == "" {
		cfg.MongoDB = mongoDBFromURI(cfg.MongoURI)
		if cfg.MongoDB == "" {
			cfg.MongoDB = "expertbook"
		}
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}
	cfg.FrontendOrigins = splitOrigins(cfg.FrontendOrigin)
	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	// only the first path segment names the database
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
