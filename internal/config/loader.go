package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tumord/pkg/types"
)

// Config holds runtime parameters for the service. Zero values mean
// "unspecified" and are replaced by ApplyDefaults before validation.
type Config struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath       string   `json:"model_path" yaml:"model_path" toml:"model_path"`
	Architecture    string   `json:"architecture" yaml:"architecture" toml:"architecture"`
	Labels          []string `json:"labels" yaml:"labels" toml:"labels"`
	OnnxLibrary     string   `json:"onnx_library" yaml:"onnx_library" toml:"onnx_library"`
	Workers         int      `json:"workers" yaml:"workers" toml:"workers"`
	MaxWorkers      int      `json:"max_workers" yaml:"max_workers" toml:"max_workers"`
	MaxUploadBytes  int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	InferTimeoutSec int      `json:"infer_timeout_sec" yaml:"infer_timeout_sec" toml:"infer_timeout_sec"`
	CORSEnabled     bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	SentryDSN       string   `json:"sentry_dsn" yaml:"sentry_dsn" toml:"sentry_dsn"`
}

const (
	DefaultAddr            = ":7860"
	DefaultModelPath       = "efficientnet_finetuned_final.onnx"
	DefaultArchitecture    = "efficientnet_b0"
	DefaultMaxWorkers      = 4
	DefaultMaxUploadBytes  = 5 << 20
	DefaultInferTimeoutSec = 30
	DefaultLogLevel        = "info"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv overlays TUMORD_* environment variables onto cfg. Set variables win
// over file values; unset variables leave cfg untouched.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("TUMORD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TUMORD_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("TUMORD_ARCH"); v != "" {
		cfg.Architecture = v
	}
	if v := os.Getenv("TUMORD_LABELS"); v != "" {
		cfg.Labels = splitCSV(v)
	}
	if v := os.Getenv("TUMORD_ONNX_LIB"); v != "" {
		cfg.OnnxLibrary = v
	}
	if n, ok := envInt("TUMORD_WORKERS"); ok {
		cfg.Workers = n
	}
	if n, ok := envInt("MAX_WORKERS"); ok {
		cfg.MaxWorkers = n
	}
	if n, ok := envInt("TUMORD_MAX_UPLOAD_MB"); ok {
		cfg.MaxUploadBytes = int64(n) << 20
	}
	if n, ok := envInt("TUMORD_INFER_TIMEOUT_SEC"); ok {
		cfg.InferTimeoutSec = n
	}
	if v := os.Getenv("TUMORD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TUMORD_CORS"); v == "1" || strings.EqualFold(v, "true") {
		cfg.CORSEnabled = true
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.SentryDSN = v
	}
	return cfg
}

// ApplyDefaults fills unspecified fields with service defaults.
func ApplyDefaults(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	if cfg.Architecture == "" {
		cfg.Architecture = DefaultArchitecture
	}
	if len(cfg.Labels) == 0 {
		cfg.Labels = append([]string(nil), types.DefaultLabels...)
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.InferTimeoutSec <= 0 {
		cfg.InferTimeoutSec = DefaultInferTimeoutSec
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

// Validate rejects configurations the service cannot start with. Called after
// ApplyDefaults; any error here is fatal at startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path must not be empty")
	}
	if strings.TrimSpace(c.Architecture) == "" {
		return fmt.Errorf("architecture must not be empty")
	}
	if len(c.Labels) == 0 {
		return fmt.Errorf("labels must not be empty")
	}
	for i, l := range c.Labels {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("labels[%d] is empty", i)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (0 means auto)")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
