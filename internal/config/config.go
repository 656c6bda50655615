package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when -c is not given.
const DefaultConfigFile = "sitebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Inputs  InputsConfig  `yaml:"inputs"`
	CSS     CSSConfig     `yaml:"css"`
	Images  ImagesConfig  `yaml:"images"`
	QR      QRConfig      `yaml:"qr"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// OutputConfig describes the layout of the generated tree.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	CSSDir    string `yaml:"css_dir,omitempty"`
	AssetsDir string `yaml:"assets_dir,omitempty"`
	IndexFile string `yaml:"index_file,omitempty"`
}

// InputsConfig lists the files the build reads from the working directory.
type InputsConfig struct {
	License  string `yaml:"license,omitempty"`
	Assets   string `yaml:"assets,omitempty"`
	Metadata string `yaml:"metadata,omitempty"`
	Template string `yaml:"template,omitempty"`
}

// CSSConfig controls the remote stylesheet download.
type CSSConfig struct {
	ArchiveURL string        `yaml:"archive_url"`
	Member     string        `yaml:"member"`    // path of the stylesheet inside the zip
	FileName   string        `yaml:"file_name"` // name under output.css_dir
	Gzip       *bool         `yaml:"gzip,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxBytes   int64         `yaml:"max_bytes,omitempty"`
	ScratchDir string        `yaml:"scratch_dir,omitempty"` // extraction parent, os.TempDir when empty
}

// GzipEnabled reports whether a .gz sibling should be written (default true).
func (c CSSConfig) GzipEnabled() bool {
	return c.Gzip == nil || *c.Gzip
}

// ImagesConfig controls asset transcoding.
type ImagesConfig struct {
	// Extensions are the lower-cased raster extensions converted to WebP.
	Extensions []string `yaml:"extensions,omitempty"`
}

// QRConfig controls the generated QR image.
type QRConfig struct {
	FileName   string `yaml:"file_name,omitempty"`
	Border     int    `yaml:"border,omitempty"`
	ModuleSize int    `yaml:"module_size,omitempty"`
	ImageKey   string `yaml:"image_key,omitempty"`
}

// MetricsConfig controls the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load loads configuration from the specified file, applies defaults and validates it.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.NotFoundError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when configPath does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		if envErr := loadEnvFile(); envErr != nil {
			slog.Debug("No .env file loaded", "error", envErr)
		}
		return Default(), nil
	}
	return Load(configPath)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	// The built-in appliers cannot fail on an empty config.
	_ = applyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file populated with the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.InternalError("failed to marshal config").WithCause(err).Build()
	}

	// #nosec G306 -- config file is meant to be readable
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
