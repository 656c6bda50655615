package config

import (
	"strings"
	"time"
)

// Defaults matching the fixed paths of a plain build with no configuration file.
const (
	DefaultOutputDir  = "out"
	DefaultCSSDir     = "css"
	DefaultAssetsDir  = "assets"
	DefaultIndexFile  = "index.html"
	DefaultLicense    = "LICENSE"
	DefaultMetadata   = "details.yaml"
	DefaultTemplate   = "template.html"
	DefaultArchiveURL = "https://github.com/picocss/pico/archive/refs/heads/main.zip"
	DefaultCSSMember  = "pico-main/css/pico.min.css"
	DefaultCSSFile    = "pico.min.css"
	DefaultQRFile     = "qr_code_generated.webp"
	DefaultQRImageKey = "qr"
	DefaultQRBorder   = 2
	DefaultQRModule   = 10
	DefaultTimeout    = 60 * time.Second
	DefaultMaxBytes   = 64 << 20
)

// DefaultImageExtensions is the raster set converted to WebP.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// OutputDefaultApplier handles output layout defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.Output.Directory, DefaultOutputDir)
	setIfEmpty(&cfg.Output.CSSDir, DefaultCSSDir)
	setIfEmpty(&cfg.Output.AssetsDir, DefaultAssetsDir)
	setIfEmpty(&cfg.Output.IndexFile, DefaultIndexFile)
	return nil
}

// InputsDefaultApplier handles input path defaults.
type InputsDefaultApplier struct{}

func (InputsDefaultApplier) Domain() string { return "inputs" }

func (InputsDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.Inputs.License, DefaultLicense)
	setIfEmpty(&cfg.Inputs.Assets, DefaultAssetsDir)
	setIfEmpty(&cfg.Inputs.Metadata, DefaultMetadata)
	setIfEmpty(&cfg.Inputs.Template, DefaultTemplate)
	return nil
}

// CSSDefaultApplier handles stylesheet download defaults.
type CSSDefaultApplier struct{}

func (CSSDefaultApplier) Domain() string { return "css" }

func (CSSDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.CSS.ArchiveURL, DefaultArchiveURL)
	setIfEmpty(&cfg.CSS.Member, DefaultCSSMember)
	setIfEmpty(&cfg.CSS.FileName, DefaultCSSFile)
	if cfg.CSS.Timeout == 0 {
		cfg.CSS.Timeout = DefaultTimeout
	}
	if cfg.CSS.MaxBytes == 0 {
		cfg.CSS.MaxBytes = DefaultMaxBytes
	}
	return nil
}

// ImagesDefaultApplier normalizes the raster extension set.
type ImagesDefaultApplier struct{}

func (ImagesDefaultApplier) Domain() string { return "images" }

func (ImagesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Images.Extensions) == 0 {
		cfg.Images.Extensions = append([]string(nil), DefaultImageExtensions...)
		return nil
	}
	for i, ext := range cfg.Images.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Images.Extensions[i] = ext
	}
	return nil
}

// QRDefaultApplier handles QR image defaults.
type QRDefaultApplier struct{}

func (QRDefaultApplier) Domain() string { return "qr" }

func (QRDefaultApplier) ApplyDefaults(cfg *Config) error {
	setIfEmpty(&cfg.QR.FileName, DefaultQRFile)
	setIfEmpty(&cfg.QR.ImageKey, DefaultQRImageKey)
	if cfg.QR.Border == 0 {
		cfg.QR.Border = DefaultQRBorder
	}
	if cfg.QR.ModuleSize == 0 {
		cfg.QR.ModuleSize = DefaultQRModule
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		OutputDefaultApplier{},
		InputsDefaultApplier{},
		CSSDefaultApplier{},
		ImagesDefaultApplier{},
		QRDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func setIfEmpty(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
