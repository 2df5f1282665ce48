package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/fras/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Store    StoreConfig
	Database DatabaseConfig
	Model    ModelConfig
	Match    MatchConfig
	Capture  CaptureConfig
	LEDs     LEDConfig
	Web      WebConfig
	Log      LogConfig
}

type StoreConfig struct {
	Path string // SQLite file; empty when HOME cannot be resolved and FRAS_DB_PATH is unset
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL, selects the PostgreSQL store when set
	MaxOpenConns int    // Maximum open connections (default 10)
	MaxIdleConns int    // Maximum idle connections (default 5)
	MariaDBDSN   string // MariaDB/MySQL DSN, used when URL is empty
}

type ModelConfig struct {
	URL           string        `yaml:"-"` // model server base URL (defaults to http://localhost:8000)
	Timeout       time.Duration `yaml:"-"`
	Name          string        `yaml:"name"`
	Landmarks     string        `yaml:"landmarks"`
	DescriptorDim int           `yaml:"descriptor_dim"`
	ChipSize      int           `yaml:"chip_size"`
	ChipPadding   float64       `yaml:"chip_padding"`
}

type MatchConfig struct {
	Threshold float64 `yaml:"threshold"`
	Policy    string  `yaml:"policy"` // "first" or "nearest"
}

type CaptureConfig struct {
	Command  []string      // capture command writing one JPEG to stdout
	URL      string        // camera snapshot URL, used instead of Command when set
	Interval time.Duration // minimum delay between recognition iterations
	Timeout  time.Duration
}

// LEDConfig holds sysfs brightness files for the three status LEDs.
// Empty paths disable the LED sink.
type LEDConfig struct {
	Green  string
	Red    string
	Yellow string
}

// Enabled reports whether all three LED paths are configured.
func (c LEDConfig) Enabled() bool {
	return c.Green != "" && c.Red != "" && c.Yellow != ""
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS whitelist from WEB_ALLOWED_ORIGINS (comma-separated)
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

type modelDefaults struct {
	Model ModelConfig `yaml:"model"`
	Match MatchConfig `yaml:"match"`
}

// defaultCaptureCommand grabs a single JPEG frame from the Raspberry Pi camera.
var defaultCaptureCommand = []string{"libcamera-jpeg", "-n", "-t", "1", "-o", "-"}

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

// envFloat reads a non-negative float, falling back to defaultVal when unset or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envDuration reads a positive time.Duration ("750ms", "2s").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// storePath resolves the SQLite store location. FRAS_DB_PATH wins, otherwise
// the path is relative to HOME.
func storePath() string {
	if p := os.Getenv("FRAS_DB_PATH"); p != "" {
		return p
	}
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(home, constants.DefaultStoreDir, constants.DefaultStoreFile)
}

func captureCommand() []string {
	if s := strings.TrimSpace(os.Getenv("CAPTURE_COMMAND")); s != "" {
		return strings.Fields(s)
	}
	return defaultCaptureCommand
}

func Load() *Config {
	var defaults modelDefaults
	if err := yaml.Unmarshal(modelsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	model := defaults.Model
	model.URL = os.Getenv("MODEL_URL")
	model.Timeout = envDuration("MODEL_TIMEOUT", 30*time.Second)

	match := defaults.Match
	match.Threshold = envFloat("MATCH_THRESHOLD", match.Threshold)
	match.Policy = envString("MATCH_POLICY", match.Policy)

	return &Config{
		Store: StoreConfig{
			Path: storePath(),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
		},
		Model: model,
		Match: match,
		Capture: CaptureConfig{
			Command:  captureCommand(),
			URL:      os.Getenv("CAPTURE_URL"),
			Interval: envDuration("RECOGNIZE_INTERVAL", constants.DefaultRecognizeInterval),
			Timeout:  envDuration("CAPTURE_TIMEOUT", constants.DefaultCaptureTimeout),
		},
		LEDs: LEDConfig{
			Green:  os.Getenv("LED_GREEN"),
			Red:    os.Getenv("LED_RED"),
			Yellow: os.Getenv("LED_YELLOW"),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),

			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "text"),
		},
	}
}

// Validate reports configuration problems that must stop the process at startup.
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.MariaDBDSN == "" && c.Store.Path == "" {
		return errors.New("HOME environment variable is required to locate the descriptor store (or set FRAS_DB_PATH)")
	}
	if c.Model.DescriptorDim <= 0 {
		return errors.New("model descriptor dimension must be positive")
	}
	if c.Match.Policy != "first" && c.Match.Policy != "nearest" {
		return errors.New("MATCH_POLICY must be \"first\" or \"nearest\"")
	}
	return nil
}
