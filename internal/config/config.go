// Package config loads certguru settings from an optional YAML file, a .env
// file and CERTGURU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/certguru/internal/llm"
	"github.com/abhisek/certguru/internal/store"
)

// EnvPrefix is prepended to every environment variable, e.g. CERTGURU_LOG_LEVEL.
const EnvPrefix = "CERTGURU"

// Config holds all configuration for the application.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Content  ContentConfig  `mapstructure:"content"`
	Training TrainingConfig `mapstructure:"training"`
	Log      LogConfig      `mapstructure:"log"`
}

// StoreConfig selects the storage backends. Backends are tried in the order
// postgres, sqlite, data dir; postgres is skipped when no URL is set.
type StoreConfig struct {
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
	DataDir     string `mapstructure:"data_dir"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LLMConfig overrides the provider settings discovered from the environment.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ContentConfig points at exam content on disk.
type ContentConfig struct {
	CaseStudyDir string `mapstructure:"case_study_dir"`
}

// TrainingConfig tunes question selection.
type TrainingConfig struct {
	// Seed fixes the selection RNG. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`

	// Shuffle presents answers in random order with A-F display letters.
	Shuffle bool `mapstructure:"shuffle"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration. configFile may be empty, in which case
// certguru.yaml is looked up in the working directory and
// $XDG_CONFIG_HOME/certguru; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	// .env values become environment variables; existing ones win.
	_ = godotenv.Load()

	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("certguru")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/certguru")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) error {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	dataDir, err := store.DefaultDataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	v.SetDefault("store.sqlite_path", dbPath)
	v.SetDefault("store.postgres_url", "")
	v.SetDefault("store.data_dir", dataDir)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 0)

	v.SetDefault("content.case_study_dir", "")

	v.SetDefault("training.seed", 0)
	v.SetDefault("training.shuffle", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	return nil
}

// LLMProviderConfig resolves the LLM provider. Settings from the config file
// win over CERTGURU_* variables, which win over the well-known vendor API key
// variables. ok is false when no provider is configured at all.
func (c *Config) LLMProviderConfig() (cfg llm.Config, ok bool) {
	cfg = llm.ConfigFromEnv()
	explicit := c.LLM.Provider != "" || os.Getenv(EnvPrefix+"_LLM_PROVIDER") != ""
	if !explicit {
		discovered, found := llm.DiscoverConfig()
		if !found {
			return llm.Config{}, false
		}
		cfg = discovered
	}

	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}

	switch cfg.Provider {
	case "anthropic":
		override(&cfg.Anthropic.Model, c.LLM.Model)
		override(&cfg.Anthropic.APIKey, c.LLM.APIKey)
	case "openai":
		override(&cfg.OpenAI.Model, c.LLM.Model)
		override(&cfg.OpenAI.APIKey, c.LLM.APIKey)
	case "gemini":
		override(&cfg.Gemini.Model, c.LLM.Model)
		override(&cfg.Gemini.APIKey, c.LLM.APIKey)
	case "openrouter":
		override(&cfg.OpenRouter.Model, c.LLM.Model)
		override(&cfg.OpenRouter.APIKey, c.LLM.APIKey)
	}
	return cfg, true
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
