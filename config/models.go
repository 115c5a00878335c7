package config

import "time"

// ModelLimit caps concurrent inference calls for a single model id.
type ModelLimit struct {
	Name string `mapstructure:"name"`
	Size int    `mapstructure:"size"`
}

// BedrockConfig selects the inference endpoint and model.
type BedrockConfig struct {
	Region   string        `mapstructure:"region"`
	Endpoint string        `mapstructure:"endpoint"`
	ModelID  string        `mapstructure:"model_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// InferenceConfig holds the sampling parameters sent with every call.
type InferenceConfig struct {
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	TopP        float32 `mapstructure:"top_p"`
}

// CompatConfig toggles byte-for-byte parity with the first deployed version.
// Legacy keeps the "/n" separator, the unterminated "</config" tag and the
// 200-with-error-body convention for downstream failures.
type CompatConfig struct {
	Legacy bool `mapstructure:"legacy"`
}

// OutputConfig controls what happens to the model's reply.
type OutputConfig struct {
	Validate bool `mapstructure:"validate"`
}

// LimitsConfig bounds in-flight inference calls in the HTTP server host.
type LimitsConfig struct {
	DefaultSize  int           `mapstructure:"default_size"`
	QueueTimeout time.Duration `mapstructure:"queue_timeout"`
	Models       []ModelLimit  `mapstructure:"models"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress string          `mapstructure:"listen_address"`
	LogLevel      string          `mapstructure:"log_level"`
	LogFormat     string          `mapstructure:"log_format"`
	Bedrock       BedrockConfig   `mapstructure:"bedrock"`
	Inference     InferenceConfig `mapstructure:"inference"`
	Compat        CompatConfig    `mapstructure:"compat"`
	Output        OutputConfig    `mapstructure:"output"`
	Limits        LimitsConfig    `mapstructure:"limits"`
	Metrics       MetricsConfig   `mapstructure:"metrics"`
}
