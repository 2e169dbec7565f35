// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Analytics AnalyticsConfig `yaml:"analytics" mapstructure:"analytics"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// AnalyticsConfig holds the tunable knobs of the analytics engine. Defaults
// reproduce the legacy dashboard heuristics exactly; the weights are exposed
// so they can be rebalanced without a rebuild.
type AnalyticsConfig struct {
	// Health factor weights (sum = 1.0).
	CompletionWeight  float64 `yaml:"completion_weight" mapstructure:"completion_weight"`
	BugSeverityWeight float64 `yaml:"bug_severity_weight" mapstructure:"bug_severity_weight"`
	VelocityWeight    float64 `yaml:"velocity_weight" mapstructure:"velocity_weight"`
	StagnationWeight  float64 `yaml:"stagnation_weight" mapstructure:"stagnation_weight"`
	WorkloadWeight    float64 `yaml:"workload_weight" mapstructure:"workload_weight"`

	// An active project with no update in more than this many days counts
	// as stagnant.
	StaleAfterDays int `yaml:"stale_after_days" mapstructure:"stale_after_days"`

	// Ratio thresholds for budget and timeline risk bands.
	HighRiskRatio   float64 `yaml:"high_risk_ratio" mapstructure:"high_risk_ratio"`
	MediumRiskRatio float64 `yaml:"medium_risk_ratio" mapstructure:"medium_risk_ratio"`

	// Caps on derived report sections.
	MaxActions   int `yaml:"max_actions" mapstructure:"max_actions"`
	MaxTimelines int `yaml:"max_timelines" mapstructure:"max_timelines"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "insights.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("analytics.completion_weight", 0.30)
	v.SetDefault("analytics.bug_severity_weight", 0.25)
	v.SetDefault("analytics.velocity_weight", 0.20)
	v.SetDefault("analytics.stagnation_weight", 0.15)
	v.SetDefault("analytics.workload_weight", 0.10)
	v.SetDefault("analytics.stale_after_days", 14)
	v.SetDefault("analytics.high_risk_ratio", 0.30)
	v.SetDefault("analytics.medium_risk_ratio", 0.10)
	v.SetDefault("analytics.max_actions", 4)
	v.SetDefault("analytics.max_timelines", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
