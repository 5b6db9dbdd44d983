package config

import (
	"fmt"
	"os"

	"fightiq/ratings/internal/elo"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"fightiq"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"fightiq_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Rating history snapshots
	HistoryDir string `envconfig:"HISTORY_DIR" default:"data/elo"`

	// Scheduler
	EnableScheduler  bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	SnapshotCron     string `envconfig:"SNAPSHOT_CRON" default:"0 3 * * *"`
	FeedPollInterval int    `envconfig:"FEED_POLL_INTERVAL" default:"300"` // seconds

	// Team Elo
	TeamBaseRating    float64 `envconfig:"ELO_TEAM_BASE_RATING" default:"1500"`
	TeamKFactor       float64 `envconfig:"ELO_TEAM_K_FACTOR" default:"20"`
	HomeAdvantage     float64 `envconfig:"ELO_HOME_ADVANTAGE" default:"50"`
	TeamReversion     float64 `envconfig:"ELO_TEAM_REVERSION" default:"0.33"`
	PlayoffMultiplier float64 `envconfig:"ELO_PLAYOFF_MULTIPLIER" default:"1.2"`

	// Player Elo
	PlayerBaseRating float64 `envconfig:"ELO_PLAYER_BASE_RATING" default:"1000"`
	PlayerReversion  float64 `envconfig:"ELO_PLAYER_REVERSION" default:"0.25"`
	AdjustmentScale  float64 `envconfig:"ELO_ADJUSTMENT_SCALE" default:"0.1"`
	AdjustmentClamp  float64 `envconfig:"ELO_ADJUSTMENT_CLAMP" default:"100"`
	WeeksPerSeason   int     `envconfig:"ELO_WEEKS_PER_SEASON" default:"18"`
	InactivityWeeks  int     `envconfig:"ELO_INACTIVITY_WEEKS" default:"4"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.TeamReversion < 0 || c.TeamReversion > 1 {
		return fmt.Errorf("ELO_TEAM_REVERSION must be in [0, 1], got %v", c.TeamReversion)
	}
	if c.PlayerReversion < 0 || c.PlayerReversion > 1 {
		return fmt.Errorf("ELO_PLAYER_REVERSION must be in [0, 1], got %v", c.PlayerReversion)
	}
	if c.WeeksPerSeason <= 0 {
		return fmt.Errorf("ELO_WEEKS_PER_SEASON must be positive, got %d", c.WeeksPerSeason)
	}

	return nil
}

// TeamElo builds the team store parameters. The per-position tables live
// on the elo defaults; scalars are overridable from the environment.
func (c *Config) TeamElo() elo.TeamConfig {
	cfg := elo.DefaultTeamConfig()
	cfg.BaseRating = c.TeamBaseRating
	cfg.KFactor = c.TeamKFactor
	cfg.HomeAdvantage = c.HomeAdvantage
	cfg.ReversionFactor = c.TeamReversion
	cfg.PlayoffMultiplier = c.PlayoffMultiplier
	return cfg
}

// PlayerElo builds the player store parameters.
func (c *Config) PlayerElo() elo.PlayerConfig {
	cfg := elo.DefaultPlayerConfig()
	cfg.BaseRating = c.PlayerBaseRating
	cfg.ReversionFactor = c.PlayerReversion
	cfg.AdjustmentScale = c.AdjustmentScale
	cfg.AdjustmentClamp = c.AdjustmentClamp
	cfg.WeeksPerSeason = c.WeeksPerSeason
	cfg.InactivityWeeks = c.InactivityWeeks
	return cfg
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
