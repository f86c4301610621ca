package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml",
		"addr: :9999\nmodel_path: /srv/m.onnx\narchitecture: efficientnet_b0\nlabels: [glioma, meningioma, notumor, pituitary]\nworkers: 2\nmax_upload_bytes: 1048576\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ModelPath != "/srv/m.onnx" || cfg.Architecture != "efficientnet_b0" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Labels) != 4 || cfg.Workers != 2 || cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json",
		`{"addr":":7070","model_path":"/m.onnx","architecture":"efficientnet_b0","labels":["a","b"],"infer_timeout_sec":5}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ModelPath != "/m.onnx" || len(cfg.Labels) != 2 || cfg.InferTimeoutSec != 5 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml",
		"addr=\":8081\"\nmodel_path=\"/x.onnx\"\narchitecture=\"efficientnet_b0\"\nlabels=[\"g\",\"m\",\"n\",\"p\"]\nmax_workers=8\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ModelPath != "/x.onnx" || cfg.MaxWorkers != 8 || len(cfg.Labels) != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("TUMORD_ADDR", ":6000")
	t.Setenv("TUMORD_LABELS", "glioma, meningioma ,notumor,pituitary")
	t.Setenv("TUMORD_MAX_UPLOAD_MB", "2")
	t.Setenv("MAX_WORKERS", "3")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example/1")

	cfg := FromEnv(Config{Addr: ":7860", ModelPath: "/m.onnx"})
	if cfg.Addr != ":6000" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.ModelPath != "/m.onnx" {
		t.Fatalf("model path should be untouched, got %q", cfg.ModelPath)
	}
	if len(cfg.Labels) != 4 || cfg.Labels[1] != "meningioma" {
		t.Fatalf("labels=%v", cfg.Labels)
	}
	if cfg.MaxUploadBytes != 2<<20 {
		t.Fatalf("max upload=%d", cfg.MaxUploadBytes)
	}
	if cfg.MaxWorkers != 3 {
		t.Fatalf("max workers=%d", cfg.MaxWorkers)
	}
	if cfg.SentryDSN == "" {
		t.Fatalf("sentry dsn not picked up")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := ApplyDefaults(Config{})
	if cfg.Addr != DefaultAddr || cfg.Architecture != DefaultArchitecture {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes || cfg.MaxWorkers != DefaultMaxWorkers {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Labels) != 4 {
		t.Fatalf("labels=%v", cfg.Labels)
	}
}

func TestValidate(t *testing.T) {
	ok := ApplyDefaults(Config{ModelPath: "/m.onnx"})
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"empty model path", func(c *Config) { c.ModelPath = " " }},
		{"empty architecture", func(c *Config) { c.Architecture = "" }},
		{"no labels", func(c *Config) { c.Labels = nil }},
		{"blank label", func(c *Config) { c.Labels = []string{"glioma", ""} }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ok
			c.Labels = append([]string(nil), ok.Labels...)
			tc.mut(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
