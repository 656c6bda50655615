package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateOutput(); err != nil {
		return err
	}
	if err := cv.validateCSS(); err != nil {
		return err
	}
	if err := cv.validateImages(); err != nil {
		return err
	}
	return cv.validateQR()
}

func (cv *configurationValidator) validateOutput() error {
	out := cv.config.Output
	dir := strings.TrimSpace(out.Directory)
	if dir == "" {
		return invalid("output.directory cannot be empty")
	}
	// RemoveAll runs on this path every build.
	if dir == "/" || dir == "." || dir == ".." {
		return invalid(fmt.Sprintf("output.directory %q would wipe the working tree", dir))
	}
	for name, v := range map[string]string{
		"output.css_dir":    out.CSSDir,
		"output.assets_dir": out.AssetsDir,
		"output.index_file": out.IndexFile,
	} {
		if err := validateRelative(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateCSS() error {
	css := cv.config.CSS
	u, err := url.Parse(css.ArchiveURL)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "css.archive_url is not a valid URL").Fatal().Build()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(fmt.Sprintf("css.archive_url: unsupported URL scheme: %s", u.Scheme))
	}
	if strings.TrimSpace(css.Member) == "" {
		return invalid("css.member cannot be empty")
	}
	if strings.Contains(css.FileName, "/") || strings.Contains(css.FileName, "\\") {
		return invalid("css.file_name must be a bare file name")
	}
	if css.Timeout < 0 {
		return invalid("css.timeout cannot be negative")
	}
	if css.MaxBytes < 0 {
		return invalid("css.max_bytes cannot be negative")
	}
	return nil
}

func (cv *configurationValidator) validateImages() error {
	for _, ext := range cv.config.Images.Extensions {
		if ext == "" || ext == "." {
			return invalid("images.extensions contains an empty extension")
		}
		if ext == ".webp" {
			return invalid("images.extensions cannot include .webp")
		}
	}
	return nil
}

func (cv *configurationValidator) validateQR() error {
	qr := cv.config.QR
	if qr.Border < 0 {
		return invalid("qr.border cannot be negative")
	}
	if qr.ModuleSize < 1 {
		return invalid("qr.module_size must be at least 1")
	}
	if !strings.HasSuffix(strings.ToLower(qr.FileName), ".webp") {
		return invalid("qr.file_name must end in .webp")
	}
	return validateRelative("qr.file_name", qr.FileName)
}

func validateRelative(name, p string) error {
	if strings.TrimSpace(p) == "" {
		return invalid(name + " cannot be empty")
	}
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return invalid(fmt.Sprintf("%s must stay inside the output directory: %s", name, p))
	}
	return nil
}

func invalid(msg string) error {
	return errors.ValidationError(msg).Build()
}
