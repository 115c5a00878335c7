package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// DefaultModelID is the Bedrock model the assistant was tuned against.
const DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// EnvPrefix prefixes every environment override, e.g. MESHASSIST_BEDROCK_MODEL_ID.
const EnvPrefix = "MESHASSIST"

// The global, read-only config variable.
var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads the config file, parses it, and initializes the global cfg variable.
// It ensures that the configuration is set only once.
func LoadConfig(configFile string) (*Config, error) {
	var err error
	once.Do(func() {
		var configuration *Config
		configuration, err = Load(configFile)
		if err != nil {
			return
		}
		cfg = configuration
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

// GetConfig returns the loaded configuration.
// It panics if the configuration has not been set.
func GetConfig() *Config {
	if cfg == nil {
		panic("Config has not been set! Call LoadConfig first.")
	}
	return cfg
}

// Load builds a Config from defaults, an optional YAML file and the
// environment. An empty configFile skips the file, which is the normal
// case inside Lambda.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("bedrock.region", "")
	v.SetDefault("bedrock.endpoint", "")
	v.SetDefault("bedrock.model_id", DefaultModelID)
	v.SetDefault("bedrock.timeout", 60*time.Second)

	v.SetDefault("inference.max_tokens", 4096)
	v.SetDefault("inference.temperature", 0.7)
	v.SetDefault("inference.top_p", 1.0)

	v.SetDefault("compat.legacy", true)
	v.SetDefault("output.validate", false)

	v.SetDefault("limits.default_size", 100)
	v.SetDefault("limits.queue_timeout", 75*time.Second)
	v.SetDefault("limits.models", []ModelLimit{})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the values that would otherwise only fail at the first
// inference call.
func (c *Config) Validate() error {
	if c.Bedrock.ModelID == "" {
		return errors.New("bedrock.model_id is required")
	}
	if c.Bedrock.Timeout <= 0 {
		return errors.New("bedrock.timeout must be positive")
	}
	if c.Inference.MaxTokens <= 0 {
		return fmt.Errorf("inference.max_tokens must be positive, got %d", c.Inference.MaxTokens)
	}
	if c.Inference.Temperature < 0 || c.Inference.Temperature > 1 {
		return fmt.Errorf("inference.temperature must be within [0, 1], got %v", c.Inference.Temperature)
	}
	if c.Inference.TopP < 0 || c.Inference.TopP > 1 {
		return fmt.Errorf("inference.top_p must be within [0, 1], got %v", c.Inference.TopP)
	}
	if c.Limits.DefaultSize <= 0 {
		return errors.New("limits.default_size must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	return nil
}
