package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Resolver ResolverConfig `yaml:"resolver" mapstructure:"resolver"`
	Import   ImportConfig   `yaml:"import" mapstructure:"import"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
}

// StoreConfig configures the session store. The default DSN keeps the
// database in memory for the life of the process.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ScoringConfig is the reference settings a session scores against.
type ScoringConfig struct {
	ReferencePostcode string        `yaml:"reference_postcode" mapstructure:"reference_postcode" json:"reference_postcode"`
	BudgetMin         int64         `yaml:"budget_min" mapstructure:"budget_min" json:"budget_min"`
	BudgetMax         int64         `yaml:"budget_max" mapstructure:"budget_max" json:"budget_max"`
	MinBedrooms       int           `yaml:"min_bedrooms" mapstructure:"min_bedrooms" json:"min_bedrooms"`
	MaxCommuteMinutes float64       `yaml:"max_commute_minutes" mapstructure:"max_commute_minutes" json:"max_commute_minutes"`
	Weights           WeightsConfig `yaml:"weights" mapstructure:"weights" json:"weights"`
}

// WeightsConfig holds the relative importance of each scoring category.
// Weights need not sum to 1.
type WeightsConfig struct {
	Price        float64 `yaml:"price" mapstructure:"price" json:"price"`
	Commute      float64 `yaml:"commute" mapstructure:"commute" json:"commute"`
	PropertyType float64 `yaml:"property_type" mapstructure:"property_type" json:"property_type"`
	Bedrooms     float64 `yaml:"bedrooms" mapstructure:"bedrooms" json:"bedrooms"`
	OutdoorSpace float64 `yaml:"outdoor_space" mapstructure:"outdoor_space" json:"outdoor_space"`
	Schools      float64 `yaml:"schools" mapstructure:"schools" json:"schools"`
	GrammarBonus float64 `yaml:"grammar_bonus" mapstructure:"grammar_bonus" json:"grammar_bonus"`
}

// ResolverConfig selects and tunes the location resolver.
type ResolverConfig struct {
	Mode             string  `yaml:"mode" mapstructure:"mode"` // simulated | http
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	CooldownSecs     int     `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
}

// ImportConfig configures listing URL import.
type ImportConfig struct {
	Parallelism int    `yaml:"parallelism" mapstructure:"parallelism"`
	DelayMs     int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// PipelineConfig configures the analysis session.
type PipelineConfig struct {
	ResolveConcurrency int `yaml:"resolve_concurrency" mapstructure:"resolve_concurrency"`
}

// DefaultScoring returns the scoring defaults used when nothing overrides them.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		ReferencePostcode: "SE1 9SP",
		BudgetMin:         300000,
		BudgetMax:         420000,
		MinBedrooms:       3,
		MaxCommuteMinutes: 60,
		Weights: WeightsConfig{
			Price:        0.20,
			Commute:      0.20,
			PropertyType: 0.15,
			Bedrooms:     0.15,
			OutdoorSpace: 0.10,
			Schools:      0.10,
			GrammarBonus: 0.10,
		},
	}
}

// Load reads configuration from ./config.yaml (if present) and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path and environment. An empty path
// falls back to an optional ./config.yaml; an explicit path must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Environment
	v.SetEnvPrefix("PROPERTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	sc := DefaultScoring()
	v.SetDefault("store.dsn", ":memory:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("scoring.reference_postcode", sc.ReferencePostcode)
	v.SetDefault("scoring.budget_min", sc.BudgetMin)
	v.SetDefault("scoring.budget_max", sc.BudgetMax)
	v.SetDefault("scoring.min_bedrooms", sc.MinBedrooms)
	v.SetDefault("scoring.max_commute_minutes", sc.MaxCommuteMinutes)
	v.SetDefault("scoring.weights.price", sc.Weights.Price)
	v.SetDefault("scoring.weights.commute", sc.Weights.Commute)
	v.SetDefault("scoring.weights.property_type", sc.Weights.PropertyType)
	v.SetDefault("scoring.weights.bedrooms", sc.Weights.Bedrooms)
	v.SetDefault("scoring.weights.outdoor_space", sc.Weights.OutdoorSpace)
	v.SetDefault("scoring.weights.schools", sc.Weights.Schools)
	v.SetDefault("scoring.weights.grammar_bonus", sc.Weights.GrammarBonus)
	v.SetDefault("resolver.mode", "simulated")
	v.SetDefault("resolver.rate_limit", 10.0)
	v.SetDefault("resolver.timeout_secs", 10)
	v.SetDefault("resolver.max_attempts", 3)
	v.SetDefault("resolver.failure_threshold", 5)
	v.SetDefault("resolver.cooldown_secs", 30)
	v.SetDefault("import.parallelism", 2)
	v.SetDefault("import.delay_ms", 1500)
	v.SetDefault("import.timeout_secs", 20)
	v.SetDefault("import.user_agent", "")
	v.SetDefault("pipeline.resolve_concurrency", 8)

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

// Validate checks the settings a command mode depends on. Scoring settings
// are validated by the scorer when they are applied.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "score", "validate", "export":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	case "import":
		if c.Import.Parallelism < 1 || c.Import.Parallelism > 16 {
			errs = append(errs, "import.parallelism must be between 1 and 16")
		}
		if c.Import.DelayMs < 0 {
			errs = append(errs, "import.delay_ms must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Resolver.Mode {
	case "simulated":
	case "http":
		if c.Resolver.BaseURL == "" {
			errs = append(errs, "resolver.base_url is required in http mode")
		}
		if c.Resolver.RateLimit < 0 {
			errs = append(errs, "resolver.rate_limit must be >= 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("resolver.mode must be simulated or http, got %q", c.Resolver.Mode))
	}

	if c.Pipeline.ResolveConcurrency < 1 || c.Pipeline.ResolveConcurrency > 64 {
		errs = append(errs, "pipeline.resolve_concurrency must be between 1 and 64")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
