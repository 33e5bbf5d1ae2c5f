package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FACEREC_DATASET_DIR", "FACEREC_MODEL_DIR", "FACEREC_MODEL_FILE", "FACEREC_LABEL_MAP_FILE",
		"FACEREC_LBPH_THRESHOLD", "FACEREC_RECORDING_PATH", "FACEREC_RECORDING_FPS", "FACEREC_CAMERA",
		"FACEREC_CASCADE_DIR", "FACEREC_MIN_FACE_SIZE", "DATABASE_URL", "POSTGRES_HOST",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Model.ModelPath(); got != filepath.Join("models", "lbph_model.xml") {
		t.Errorf("ModelPath() = %q", got)
	}
	if got := cfg.Model.LabelMapPath(); got != filepath.Join("models", "label_map.json") {
		t.Errorf("LabelMapPath() = %q", got)
	}
	if cfg.Recording.FPS != 20 {
		t.Errorf("Recording.FPS = %v, want 20", cfg.Recording.FPS)
	}
	if cfg.Recording.Path != filepath.Join("recogn", "face_recognition_output.mp4") {
		t.Errorf("Recording.Path = %q", cfg.Recording.Path)
	}
	if cfg.Dataset.Dir != "dataset" {
		t.Errorf("Dataset.Dir = %q", cfg.Dataset.Dir)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty", cfg.Database.URL)
	}
}

func TestLoadYAMLAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yamlData := `
dataset:
  dir: /data/faces
model:
  dir: /data/models
  threshold: 80
recording:
  fps: 30
camera:
  device: 2
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FACEREC_CAMERA", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dataset.Dir != "/data/faces" {
		t.Errorf("Dataset.Dir = %q", cfg.Dataset.Dir)
	}
	if cfg.Model.ModelPath() != filepath.Join("/data/models", "lbph_model.xml") {
		t.Errorf("ModelPath() = %q", cfg.Model.ModelPath())
	}
	if cfg.Model.Threshold != 80 {
		t.Errorf("Model.Threshold = %v", cfg.Model.Threshold)
	}
	if cfg.Recording.FPS != 30 {
		t.Errorf("Recording.FPS = %v", cfg.Recording.FPS)
	}
	// Environment wins over the file.
	if cfg.Camera.Device != 1 {
		t.Errorf("Camera.Device = %d, want 1", cfg.Camera.Device)
	}
	// Untouched keys keep their defaults.
	if cfg.Model.LabelMapFile != "label_map.json" {
		t.Errorf("Model.LabelMapFile = %q", cfg.Model.LabelMapFile)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestDatabaseURL(t *testing.T) {
	clearEnv(t)
	if got := DatabaseURL("postgres://flag"); got != "postgres://flag" {
		t.Errorf("DatabaseURL() = %q", got)
	}

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_DB", "faces")
	if got, want := DatabaseURL(""), "postgres://u:p@db:5432/faces"; got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}

	t.Setenv("DATABASE_URL", "postgres://explicit")
	if got := DatabaseURL(""); got != "postgres://explicit" {
		t.Errorf("DatabaseURL() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero fps", func(c *Config) { c.Recording.FPS = 0 }, true},
		{"negative camera", func(c *Config) { c.Camera.Device = -1 }, true},
		{"bad codec", func(c *Config) { c.Recording.Codec = "h264x" }, true},
		{"negative threshold", func(c *Config) { c.Model.Threshold = -1 }, true},
		{"empty dataset", func(c *Config) { c.Dataset.Dir = "" }, true},
		{"inverted face sizes", func(c *Config) { c.Detector.MaxFaceSize = 10 }, true},
		{"no faces", func(c *Config) { c.Detector.MaxFaces = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
