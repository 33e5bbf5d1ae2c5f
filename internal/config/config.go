package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given and the file exists.
const DefaultFile = "facerec.yaml"

type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Model     ModelConfig     `yaml:"model"`
	Recording RecordingConfig `yaml:"recording"`
	Camera    CameraConfig    `yaml:"camera"`
	Detector  DetectorConfig  `yaml:"detector"`
	Database  DatabaseConfig  `yaml:"database"`
}

type DatasetConfig struct {
	Dir string `yaml:"dir"`
}

type ModelConfig struct {
	Dir          string  `yaml:"dir"`
	File         string  `yaml:"file"`
	LabelMapFile string  `yaml:"label_map_file"`
	Radius       int     `yaml:"radius"`
	Neighbors    int     `yaml:"neighbors"`
	Threshold    float64 `yaml:"threshold"` // 0 keeps the LBPH default (no rejection)
}

// ModelPath returns the serialized classifier location.
func (m ModelConfig) ModelPath() string {
	return filepath.Join(m.Dir, m.File)
}

// LabelMapPath returns the label map location.
func (m ModelConfig) LabelMapPath() string {
	return filepath.Join(m.Dir, m.LabelMapFile)
}

type RecordingConfig struct {
	Path  string  `yaml:"path"`
	FPS   float64 `yaml:"fps"`
	Codec string  `yaml:"codec"`
}

type CameraConfig struct {
	Device   int  `yaml:"device"`
	Mirror   bool `yaml:"mirror"`
	Headless bool `yaml:"headless"`
}

type DetectorConfig struct {
	CascadeDir   string  `yaml:"cascade_dir"`
	MinFaceSize  int     `yaml:"min_face_size"`
	MaxFaceSize  int     `yaml:"max_face_size"`
	ShiftFactor  float64 `yaml:"shift_factor"`
	ScaleFactor  float64 `yaml:"scale_factor"`
	IoUThreshold float64 `yaml:"iou_threshold"`
	MinQuality   float64 `yaml:"min_quality"`
	MaxFaces     int     `yaml:"max_faces"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty disables the history log
}

// Default returns the built-in configuration matching the classic layout:
// dataset/, models/lbph_model.xml, models/label_map.json and
// recogn/face_recognition_output.mp4 at 20 fps.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{Dir: "dataset"},
		Model: ModelConfig{
			Dir:          "models",
			File:         "lbph_model.xml",
			LabelMapFile: "label_map.json",
			Radius:       1,
			Neighbors:    8,
		},
		Recording: RecordingConfig{
			Path:  filepath.Join("recogn", "face_recognition_output.mp4"),
			FPS:   20,
			Codec: "mp4v",
		},
		Camera: CameraConfig{Device: 0, Mirror: true},
		Detector: DetectorConfig{
			CascadeDir:   "cascade",
			MinFaceSize:  60,
			MaxFaceSize:  1000,
			ShiftFactor:  0.1,
			ScaleFactor:  1.1,
			IoUThreshold: 0.2,
			MinQuality:   5.0,
			MaxFaces:     5,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An explicit path that does not
// exist is an error; the implicit DefaultFile is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	envString("FACEREC_DATASET_DIR", &cfg.Dataset.Dir)
	envString("FACEREC_MODEL_DIR", &cfg.Model.Dir)
	envString("FACEREC_MODEL_FILE", &cfg.Model.File)
	envString("FACEREC_LABEL_MAP_FILE", &cfg.Model.LabelMapFile)
	envFloat("FACEREC_LBPH_THRESHOLD", &cfg.Model.Threshold)
	envString("FACEREC_RECORDING_PATH", &cfg.Recording.Path)
	envFloat("FACEREC_RECORDING_FPS", &cfg.Recording.FPS)
	envInt("FACEREC_CAMERA", &cfg.Camera.Device)
	envString("FACEREC_CASCADE_DIR", &cfg.Detector.CascadeDir)
	envInt("FACEREC_MIN_FACE_SIZE", &cfg.Detector.MinFaceSize)
	cfg.Database.URL = DatabaseURL(cfg.Database.URL)
}

// DatabaseURL resolves the connection string from DATABASE_URL or the POSTGRES_*
// variables, falling back to current when none are set.
func DatabaseURL(current string) string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return current
}

// Validate rejects values the pipelines cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Dataset.Dir == "":
		return errors.New("dataset dir must not be empty")
	case c.Model.Dir == "" || c.Model.File == "" || c.Model.LabelMapFile == "":
		return errors.New("model dir, file and label map file must not be empty")
	case c.Recording.FPS <= 0:
		return fmt.Errorf("recording fps must be positive, got %v", c.Recording.FPS)
	case len(c.Recording.Codec) != 4:
		return fmt.Errorf("recording codec must be a fourcc, got %q", c.Recording.Codec)
	case c.Camera.Device < 0:
		return fmt.Errorf("camera device must be >= 0, got %d", c.Camera.Device)
	case c.Model.Threshold < 0:
		return fmt.Errorf("lbph threshold must be >= 0, got %v", c.Model.Threshold)
	case c.Model.Radius < 1 || c.Model.Neighbors < 1:
		return fmt.Errorf("lbph radius and neighbors must be >= 1")
	case c.Detector.MinFaceSize < 1 || c.Detector.MaxFaceSize < c.Detector.MinFaceSize:
		return fmt.Errorf("invalid face size range %d-%d", c.Detector.MinFaceSize, c.Detector.MaxFaceSize)
	case c.Detector.MaxFaces < 1:
		return fmt.Errorf("max faces must be >= 1, got %d", c.Detector.MaxFaces)
	}
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envInt ignores values that do not parse so a typo falls back to the file/default.
func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
