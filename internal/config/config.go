package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"scrollgrid/internal/domain"
)

// FileName is the config file looked up in the working directory
const FileName = ".scrollgrid.toml"

// Provider kinds
const (
	ProviderMemory = "memory"
	ProviderHTTP   = "http"
)

// Config represents the application configuration
type Config struct {
	Version  int              `toml:"version"`
	PageSize int              `toml:"page_size"`
	Provider ProviderSettings `toml:"provider"`
	Memory   MemorySettings   `toml:"memory"`
	Sort     SortSettings     `toml:"sort"`
	Server   ServerSettings   `toml:"server"`
	Log      LogSettings      `toml:"log"`
	UI       UISettings       `toml:"ui"`
}

// ProviderSettings selects and tunes the data provider
type ProviderSettings struct {
	Kind              string  `toml:"kind"`
	BaseURL           string  `toml:"base_url"`
	SearchField       string  `toml:"search_field"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RetryMax          int     `toml:"retry_max"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// MemorySettings shapes the generated in-memory dataset
type MemorySettings struct {
	Items     int   `toml:"items"`
	LatencyMS int   `toml:"latency_ms"`
	Seed      int64 `toml:"seed"`
}

// SortSettings is the initial sort
type SortSettings struct {
	By        string `toml:"by"`
	Direction string `toml:"direction"`
}

// ServerSettings configures the mock server
type ServerSettings struct {
	Addr string `toml:"addr"`
}

// LogSettings configures logging
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowDescription bool `toml:"show_description"`
}

// Timeout returns the provider request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// Latency returns the artificial latency of the in-memory provider
func (c *Config) Latency() time.Duration {
	return time.Duration(c.Memory.LatencyMS) * time.Millisecond
}

// SortSpec returns the initial sort. Validate must have passed.
func (c *Config) SortSpec() domain.SortSpec {
	if c.Sort.By == "" {
		return domain.SortSpec{}
	}
	dir, _ := domain.ParseSortDirection(c.Sort.Direction)
	return domain.SortSpec{By: c.Sort.By, Direction: dir}
}

// Validate checks the configuration for values the application cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	switch c.Provider.Kind {
	case ProviderMemory:
	case ProviderHTTP:
		if c.Provider.BaseURL == "" {
			errs = append(errs, errors.New("provider.base_url is required for the http provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("provider.kind must be %q or %q, got %q", ProviderMemory, ProviderHTTP, c.Provider.Kind))
	}
	if c.Provider.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("provider.timeout_seconds must not be negative"))
	}
	if c.Provider.RetryMax < 0 {
		errs = append(errs, errors.New("provider.retry_max must not be negative"))
	}
	if c.Provider.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("provider.requests_per_second must not be negative"))
	}
	if c.Memory.Items < 0 {
		errs = append(errs, errors.New("memory.items must not be negative"))
	}
	if c.Sort.By != "" && !slices.Contains(domain.Columns, c.Sort.By) {
		errs = append(errs, fmt.Errorf("sort.by must be one of %v, got %q", domain.Columns, c.Sort.By))
	}
	if _, err := domain.ParseSortDirection(c.Sort.Direction); err != nil {
		errs = append(errs, fmt.Errorf("sort.direction: %w", err))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service for the file at path
func NewConfigService(path string) ConfigService {
	return &configService{filePath: path}
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the service's file. A missing file
// yields the default configuration.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		PageSize: 20,
		Provider: ProviderSettings{
			Kind:           ProviderMemory,
			BaseURL:        "http://127.0.0.1:8080",
			SearchField:    "name",
			TimeoutSeconds: 10,
			RetryMax:       3,
		},
		Memory: MemorySettings{
			Items:     500,
			LatencyMS: 150,
			Seed:      1,
		},
		Sort: SortSettings{
			By:        "name",
			Direction: string(domain.SortAscending),
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
		Log: LogSettings{
			Level: "info",
			File:  "scrollgrid.log",
		},
		UI: UISettings{
			ShowDescription: true,
		},
	}
}
