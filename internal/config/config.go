// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Org       OrgConfig       `yaml:"org" mapstructure:"org"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// OrgConfig identifies the organization whose catalog is resolved
// against.
type OrgConfig struct {
	ID string `yaml:"id" mapstructure:"id"`
}

// StoreConfig configures the catalog backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ResolverConfig configures the resolution pipeline. The threshold and
// confidence constants have no documented derivation, so they are
// tunables rather than literals.
type ResolverConfig struct {
	SimilarityThreshold float64  `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	FuzzyConfidence     float64  `yaml:"fuzzy_confidence" mapstructure:"fuzzy_confidence"`
	Concurrency         int      `yaml:"concurrency" mapstructure:"concurrency"`
	BlockingTypes       []string `yaml:"blocking_types" mapstructure:"blocking_types"`
}

// BlockingPolicy parses BlockingTypes into the per-type set of entity
// types whose unresolved state blocks submission.
func (r ResolverConfig) BlockingPolicy() (map[model.EntityType]bool, error) {
	out := make(map[model.EntityType]bool, len(r.BlockingTypes))
	for _, raw := range r.BlockingTypes {
		t, err := model.ParseEntityType(raw)
		if err != nil {
			return nil, eris.Wrap(err, "config: blocking_types")
		}
		out[t] = true
	}
	return out, nil
}

// ExtractorConfig selects and tunes the candidate extractor.
type ExtractorConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // "model" or "rules"
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("TASKPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("org.id", "default")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "taskpro.db")
	v.SetDefault("resolver.similarity_threshold", 0.8)
	v.SetDefault("resolver.fuzzy_confidence", 0.85)
	v.SetDefault("resolver.concurrency", 8)
	v.SetDefault("resolver.blocking_types", []string{"person"})
	v.SetDefault("extractor.provider", "rules")
	v.SetDefault("extractor.requests_per_second", 2.0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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
