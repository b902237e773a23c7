// Package config handles configuration loading for crewmesh. It layers
// built-in defaults, an optional YAML file and CREWMESH_* environment
// variables via viper.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Delegation  DelegationConfig  `mapstructure:"delegation"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
}

// StorageConfig selects the artifact store backend.
type StorageConfig struct {
	// Path to the sqlite database file. Empty selects the in-memory stores.
	Path string `mapstructure:"path"`
}

// DelegationConfig tunes the manager and specialist pool.
type DelegationConfig struct {
	// InvocationTimeout bounds a single specialist invocation.
	InvocationTimeout time.Duration `mapstructure:"invocation_timeout"`
	// MaxParallel limits concurrent delegations within a stage.
	MaxParallel int `mapstructure:"max_parallel"`
	// MaxAttempts caps retries for failed specialist invocations.
	MaxAttempts int `mapstructure:"max_attempts"`
	// RetryBackoff is the base delay between retry attempts.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// CredentialsConfig holds model provider API keys. Keys are usually supplied
// through ANTHROPIC_API_KEY / OPENAI_API_KEY rather than the config file.
type CredentialsConfig struct {
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
}

// Load loads configuration from defaults, an optional crewmesh.yaml in the
// working directory, and environment variables. Precedence (highest first):
// environment, config file, defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("crewmesh")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	bindEnv(v)

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)

	return unmarshal(v)
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Delegation: DelegationConfig{
			InvocationTimeout: 2 * time.Minute,
			MaxParallel:       4,
			MaxAttempts:       3,
			RetryBackoff:      200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Credentials.AnthropicAPIKey = os.ExpandEnv(cfg.Credentials.AnthropicAPIKey)
	cfg.Credentials.OpenAIAPIKey = os.ExpandEnv(cfg.Credentials.OpenAIAPIKey)

	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CREWMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("credentials.anthropic_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("credentials.openai_api_key", "OPENAI_API_KEY")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", "")

	v.SetDefault("delegation.invocation_timeout", "2m")
	v.SetDefault("delegation.max_parallel", 4)
	v.SetDefault("delegation.max_attempts", 3)
	v.SetDefault("delegation.retry_backoff", "200ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("credentials.anthropic_api_key", "")
	v.SetDefault("credentials.openai_api_key", "")
}
