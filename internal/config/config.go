package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed menus.yaml
var menusYAML []byte

type Config struct {
	Recognition RecognitionConfig
	Camera      CameraConfig
	Database    DatabaseConfig
	Report      ReportConfig
	Menus       MenusConfig
}

type RecognitionConfig struct {
	ModelsDir string  // directory with dlib model files (shape predictor + ResNet descriptor)
	Threshold float64 // maximum Euclidean distance for a probe to match a gallery identity
	MaxEdge   int     // enrollment images are downscaled so the longer edge fits this bound
}

type CameraConfig struct {
	Device int // V4L2 device index (0 = default webcam)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type ReportConfig struct {
	DisplayTimezone string // IANA zone used when rendering timestamps (storage stays UTC)
}

// MenusConfig holds the three fixed dish lists keyed by time-of-day bucket.
// Loaded once from the embedded menus.yaml at startup, not editable at runtime.
type MenusConfig struct {
	Menus map[string][]string `yaml:"menus"`
}

// DefaultThreshold is the acceptance threshold for dlib's 128D descriptors.
// 0.6 is the conventional operating point for the ResNet v1 model; lower it
// to trade false accepts for false rejects.
const DefaultThreshold = 0.6

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var menus MenusConfig
	if err := yaml.Unmarshal(menusYAML, &menus); err != nil {
		// Embedded file, so this should never happen in practice.
		panic("failed to unmarshal embedded menus.yaml: " + err.Error())
	}

	return &Config{
		Recognition: RecognitionConfig{
			ModelsDir: envString("MODELS_DIR", "models"),
			Threshold: envFloat("MATCH_THRESHOLD", DefaultThreshold),
			MaxEdge:   envInt("ENROLL_MAX_EDGE", 1600),
		},
		Camera: CameraConfig{
			Device: envInt("CAMERA_DEVICE", 0),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Report: ReportConfig{
			DisplayTimezone: envString("DISPLAY_TIMEZONE", "Asia/Kolkata"),
		},
		Menus: menus,
	}
}
