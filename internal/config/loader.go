package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader handles loading configuration from multiple sources.
//
// The loading order (from lowest to highest priority):
//  1. Default values (in code)
//  2. Base configuration file (base.yaml)
//  3. Environment-specific file (e.g. production.yaml)
//  4. .env file (only fills variables not already set)
//  5. Environment variables
type Loader struct {
	basePath    string
	environment Environment
	dotenvPath  string
	sources     []string
	fileLoaders []FileLoader
}

// FileLoader interface for different configuration file formats.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// NewLoader creates a new configuration loader.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}

	return &Loader{
		basePath:    basePath,
		environment: env,
		dotenvPath:  ".env",
		fileLoaders: []FileLoader{&YAMLLoader{}, &JSONLoader{}},
	}
}

// WithDotenv overrides the .env path; an empty path disables it.
func (l *Loader) WithDotenv(path string) *Loader {
	l.dotenvPath = path
	return l
}

// BasePath returns the directory configuration files are read from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// Load loads configuration using the hierarchy of sources.
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]

	cfg := l.defaultConfig()
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base", cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	if l.dotenvPath != "" {
		if err := godotenv.Load(l.dotenvPath); err == nil {
			l.sources = append(l.sources, l.dotenvPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", l.dotenvPath, err)
		}
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")

	cfg.LoadedFrom = append([]string(nil), l.sources...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a file with automatic format detection.
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, fmt.Sprintf("%s.%s", name, loader.Extension()))

		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}

	return os.ErrNotExist
}

// loadEnvironmentVariables overlays GRAPHLEARN_* variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	if val := os.Getenv("GRAPHLEARN_API_URL"); val != "" {
		cfg.API.BaseURL = val
	}
	if val := os.Getenv("GRAPHLEARN_API_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.API.Timeout = d
		}
	}
	if val := os.Getenv("GRAPHLEARN_TEMPLATES"); val != "" {
		cfg.Templates.Source = val
	}
	if val := os.Getenv("GRAPHLEARN_SESSION_PATH"); val != "" {
		cfg.Session.Path = val
	}

	if val := os.Getenv("GRAPHLEARN_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("GRAPHLEARN_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = strings.ToLower(val)
	}

	if val := os.Getenv("GRAPHLEARN_TRACING_ENABLED"); val != "" {
		cfg.Tracing.Enabled = parseBool(val)
	}
	if val := os.Getenv("GRAPHLEARN_TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := os.Getenv("GRAPHLEARN_METRICS_ENABLED"); val != "" {
		cfg.Metrics.Enabled = parseBool(val)
	}

	if val := os.Getenv("GRAPHLEARN_SERVER_ADDRESS"); val != "" {
		cfg.Server.Address = val
	}
	if val := os.Getenv("GRAPHLEARN_GRAPHS_PER_PAGE"); val != "" {
		if n := parseInt(val); n > 0 {
			cfg.Pagination.GraphsPerPage = n
		}
	}
}

// defaultConfig returns a configuration that works against a local API.
func (l *Loader) defaultConfig() *Config {
	return &Config{
		Environment: l.environment,
		API: API{
			BaseURL:   "http://127.0.0.1:8000/api/v1",
			Timeout:   15 * time.Second,
			UserAgent: "graphlearn-client",
		},
		Templates: Templates{
			Source: EmbeddedTemplates,
		},
		Session: Session{
			Path: defaultSessionPath(),
		},
		Canvas: Canvas{
			MinZoom:       0.1,
			MaxZoom:       3.0,
			ZoomInFactor:  1.2,
			ZoomOutFactor: 0.8,
			Padding:       30,
			Width:         1200,
			Height:        800,
		},
		Pagination: Pagination{
			GraphsPerPage:   10,
			CommentsPerPage: 5,
			MinSearchLength: 3,
		},
		CircuitBreaker: CircuitBreaker{
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: Tracing{
			ServiceName: "graphlearn-client",
		},
		Metrics: Metrics{
			Namespace: "graphlearn",
		},
		Server: Server{
			Address:        ":8081",
			AllowedOrigins: []string{"*"},
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "graphlearn", "session.db")
}

// ============================================================================
// FILE LOADERS
// ============================================================================

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target interface{}) error {
	return yaml.NewDecoder(reader).Decode(target)
}

func (y *YAMLLoader) Extension() string {
	return "yaml"
}

// JSONLoader loads configuration from JSON files.
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

func (j *JSONLoader) Extension() string {
	return "json"
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func parseInt(s string) int {
	val, _ := strconv.Atoi(s)
	return val
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(s)
	return val
}

// EnvironmentFromEnv reads GRAPHLEARN_ENV, defaulting to development.
func EnvironmentFromEnv() Environment {
	switch env := Environment(strings.ToLower(os.Getenv("GRAPHLEARN_ENV"))); env {
	case Development, Staging, Production, Test:
		return env
	default:
		return Development
	}
}

// DirFromEnv reads GRAPHLEARN_CONFIG_DIR, defaulting to ./config.
func DirFromEnv() string {
	if dir := os.Getenv("GRAPHLEARN_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

// Load loads configuration from the directory and environment named by
// GRAPHLEARN_CONFIG_DIR and GRAPHLEARN_ENV.
func Load() (*Config, error) {
	return NewLoader(DirFromEnv(), EnvironmentFromEnv()).Load()
}
