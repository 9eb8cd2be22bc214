package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clinica-agenda-api/internal/schedule"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	// Calendar grid knobs.
	OpeningHour    int    `mapstructure:"OPENING_HOUR"`
	ClosingHour    int    `mapstructure:"CLOSING_HOUR"`
	SlotMinutes    int    `mapstructure:"SLOT_MINUTES"`
	WeekStartsOn   int    `mapstructure:"WEEK_STARTS_ON"`
	MonthMaxPerDay int    `mapstructure:"MONTH_MAX_PER_DAY"`
	ConflictRule   string `mapstructure:"CONFLICT_RULE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("OPENING_HOUR", schedule.DefaultOpeningHour)
	v.SetDefault("CLOSING_HOUR", schedule.DefaultClosingHour)
	v.SetDefault("SLOT_MINUTES", schedule.DefaultSlotMinutes)
	v.SetDefault("WEEK_STARTS_ON", int(time.Monday))
	v.SetDefault("MONTH_MAX_PER_DAY", 2)
	v.SetDefault("CONFLICT_RULE", "exact")

	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"JWT_SECRET", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"OPENING_HOUR", "CLOSING_HOUR", "SLOT_MINUTES", "WEEK_STARTS_ON",
		"MONTH_MAX_PER_DAY", "CONFLICT_RULE",
	} {
		v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if !cfg.DemoMode() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when DATABASE_URL is set")
	}
	if cfg.OpeningHour < 0 || cfg.ClosingHour > 24 || cfg.OpeningHour >= cfg.ClosingHour {
		return nil, fmt.Errorf("office hours %d-%d out of range", cfg.OpeningHour, cfg.ClosingHour)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_MINUTES must be positive")
	}
	switch cfg.ConflictRule {
	case "exact", "overlap":
	default:
		return nil, fmt.Errorf("CONFLICT_RULE must be exact or overlap, got %q", cfg.ConflictRule)
	}

	return cfg, nil
}

// DemoMode reports whether the server runs on the seeded in-memory book
// instead of Postgres. No database, no accounts: auth is disabled too.
func (c *Config) DemoMode() bool {
	return c.DatabaseURL == ""
}

func (c *Config) WeekStart() time.Weekday {
	return time.Weekday(((c.WeekStartsOn % 7) + 7) % 7)
}

func (c *Config) ConflictPolicy() schedule.ConflictPolicy {
	if c.ConflictRule == "overlap" {
		return schedule.PolicyOverlap
	}
	return schedule.PolicyExactStart
}
