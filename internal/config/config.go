// Package config provides configuration management for the graphlearn client.
//
// Configuration is layered; see Loader for the precedence order. The Config
// struct is validated with struct tags plus a few cross-field checks before it
// is handed to the rest of the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// EmbeddedTemplates selects the templates compiled into the binary.
const EmbeddedTemplates = "embedded"

// Config holds all client configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"oneof=development staging production test"`

	API            API            `yaml:"api" json:"api"`
	Templates      Templates      `yaml:"templates" json:"templates"`
	Session        Session        `yaml:"session" json:"session"`
	Canvas         Canvas         `yaml:"canvas" json:"canvas"`
	Pagination     Pagination     `yaml:"pagination" json:"pagination"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker" json:"circuit_breaker"`
	Logging        Logging        `yaml:"logging" json:"logging"`
	Tracing        Tracing        `yaml:"tracing" json:"tracing"`
	Metrics        Metrics        `yaml:"metrics" json:"metrics"`
	Server         Server         `yaml:"server" json:"server"`

	// LoadedFrom lists the sources that contributed, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// API configures the RequestClient.
type API struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// Templates configures where view templates are loaded from.
// Source is either EmbeddedTemplates or a base URL.
type Templates struct {
	Source string `yaml:"source" json:"source" validate:"required"`
}

// Session configures durable session storage.
type Session struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// Canvas configures the graph widget.
type Canvas struct {
	MinZoom       float64 `yaml:"min_zoom" json:"min_zoom" validate:"gt=0"`
	MaxZoom       float64 `yaml:"max_zoom" json:"max_zoom" validate:"gtfield=MinZoom"`
	ZoomInFactor  float64 `yaml:"zoom_in_factor" json:"zoom_in_factor" validate:"gt=1"`
	ZoomOutFactor float64 `yaml:"zoom_out_factor" json:"zoom_out_factor" validate:"gt=0,lt=1"`
	Padding       float64 `yaml:"padding" json:"padding" validate:"gte=0"`
	Width         float64 `yaml:"width" json:"width" validate:"gt=0"`
	Height        float64 `yaml:"height" json:"height" validate:"gt=0"`
}

// Pagination configures list views.
type Pagination struct {
	GraphsPerPage   int `yaml:"graphs_per_page" json:"graphs_per_page" validate:"min=1"`
	CommentsPerPage int `yaml:"comments_per_page" json:"comments_per_page" validate:"min=1"`
	MinSearchLength int `yaml:"min_search_length" json:"min_search_length" validate:"min=0"`
}

// CircuitBreaker configures the breaker around API calls.
type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests" validate:"min=1"`
	Interval         time.Duration `yaml:"interval" json:"interval"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" json:"min_requests" validate:"min=1"`
}

// Logging configures zap.
type Logging struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=json console"`
	Output string `yaml:"output" json:"output" validate:"required"`
}

// Tracing configures the OTLP exporter.
type Tracing struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Endpoint    string `yaml:"endpoint" json:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `yaml:"service_name" json:"service_name" validate:"required"`
}

// Metrics configures the prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required"`
}

// Server configures the template host started by `graphlearn serve`.
type Server struct {
	Address        string   `yaml:"address" json:"address" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// Validate checks struct tags and cross-field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var problems []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Templates.Source != EmbeddedTemplates &&
		!strings.HasPrefix(c.Templates.Source, "http://") &&
		!strings.HasPrefix(c.Templates.Source, "https://") {
		return fmt.Errorf("invalid configuration: templates.source must be %q or an http(s) URL", EmbeddedTemplates)
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
