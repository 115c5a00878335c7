package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, doc map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Bedrock.ModelID != DefaultModelID {
		t.Errorf("model id = %q, want %q", c.Bedrock.ModelID, DefaultModelID)
	}
	if c.Inference.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want 4096", c.Inference.MaxTokens)
	}
	if c.Inference.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", c.Inference.Temperature)
	}
	if c.Inference.TopP != 1 {
		t.Errorf("top_p = %v, want 1", c.Inference.TopP)
	}
	if !c.Compat.Legacy {
		t.Error("compat.legacy should default to true")
	}
	if c.Output.Validate {
		t.Error("output.validate should default to false")
	}
	if c.Bedrock.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", c.Bedrock.Timeout)
	}
	if c.Limits.DefaultSize != 100 || c.Limits.QueueTimeout != 75*time.Second {
		t.Errorf("limits = %+v", c.Limits)
	}
	if c.ListenAddress != "127.0.0.1:8080" {
		t.Errorf("listen address = %q", c.ListenAddress)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"listen_address": "0.0.0.0:9000",
		"bedrock": map[string]any{
			"region":   "us-west-2",
			"model_id": "anthropic.claude-3-haiku-20240307-v1:0",
			"timeout":  "15s",
		},
		"inference": map[string]any{"temperature": 0.2},
		"compat":    map[string]any{"legacy": false},
		"limits": map[string]any{
			"models": []map[string]any{{"name": "anthropic.claude-3-haiku-20240307-v1:0", "size": 4}},
		},
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("listen address = %q", c.ListenAddress)
	}
	if c.Bedrock.Region != "us-west-2" {
		t.Errorf("region = %q", c.Bedrock.Region)
	}
	if c.Bedrock.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", c.Bedrock.Timeout)
	}
	if c.Inference.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", c.Inference.Temperature)
	}
	// Untouched keys keep their defaults.
	if c.Inference.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want 4096", c.Inference.MaxTokens)
	}
	if c.Compat.Legacy {
		t.Error("compat.legacy should be false")
	}
	if len(c.Limits.Models) != 1 || c.Limits.Models[0].Size != 4 {
		t.Errorf("model limits = %+v", c.Limits.Models)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MESHASSIST_BEDROCK_MODEL_ID", "env-model")
	t.Setenv("MESHASSIST_COMPAT_LEGACY", "false")
	t.Setenv("MESHASSIST_INFERENCE_MAX_TOKENS", "1024")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Bedrock.ModelID != "env-model" {
		t.Errorf("model id = %q, want env-model", c.Bedrock.ModelID)
	}
	if c.Compat.Legacy {
		t.Error("compat.legacy should be overridden to false")
	}
	if c.Inference.MaxTokens != 1024 {
		t.Errorf("max tokens = %d, want 1024", c.Inference.MaxTokens)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "error reading config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty model", func(c *Config) { c.Bedrock.ModelID = "" }, "model_id"},
		{"zero timeout", func(c *Config) { c.Bedrock.Timeout = 0 }, "timeout"},
		{"zero max tokens", func(c *Config) { c.Inference.MaxTokens = 0 }, "max_tokens"},
		{"temperature too high", func(c *Config) { c.Inference.Temperature = 1.5 }, "temperature"},
		{"negative top_p", func(c *Config) { c.Inference.TopP = -0.1 }, "top_p"},
		{"zero default size", func(c *Config) { c.Limits.DefaultSize = 0 }, "default_size"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(c)
			err = c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
