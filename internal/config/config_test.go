package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitebuilder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultMatchesPlainBuild(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, "css", cfg.Output.CSSDir)
	assert.Equal(t, "assets", cfg.Output.AssetsDir)
	assert.Equal(t, "index.html", cfg.Output.IndexFile)
	assert.Equal(t, "LICENSE", cfg.Inputs.License)
	assert.Equal(t, "assets", cfg.Inputs.Assets)
	assert.Equal(t, "details.yaml", cfg.Inputs.Metadata)
	assert.Equal(t, "template.html", cfg.Inputs.Template)
	assert.Equal(t, DefaultArchiveURL, cfg.CSS.ArchiveURL)
	assert.Equal(t, "pico-main/css/pico.min.css", cfg.CSS.Member)
	assert.Equal(t, "pico.min.css", cfg.CSS.FileName)
	assert.True(t, cfg.CSS.GzipEnabled())
	assert.Equal(t, "qr_code_generated.webp", cfg.QR.FileName)
	assert.Equal(t, 2, cfg.QR.Border)
	assert.Equal(t, "qr", cfg.QR.ImageKey)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}, cfg.Images.Extensions)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadAppliesOverridesAndDefaults(t *testing.T) {
	t.Setenv("SITEBUILDER_TEST_OUT", "public")
	path := writeConfig(t, `
output:
  directory: ${SITEBUILDER_TEST_OUT}
css:
  archive_url: https://example.com/pico.zip
  gzip: false
  timeout: 5s
images:
  extensions: [JPG, png]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "public", cfg.Output.Directory)
	assert.Equal(t, "css", cfg.Output.CSSDir)
	assert.Equal(t, "https://example.com/pico.zip", cfg.CSS.ArchiveURL)
	assert.False(t, cfg.CSS.GzipEnabled())
	assert.Equal(t, 5*time.Second, cfg.CSS.Timeout)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.Images.Extensions)
	assert.Equal(t, DefaultCSSMember, cfg.CSS.Member)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "output: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ftp archive", func(c *Config) { c.CSS.ArchiveURL = "ftp://example.com/a.zip" }},
		{"output is cwd", func(c *Config) { c.Output.Directory = "." }},
		{"css dir escapes", func(c *Config) { c.Output.CSSDir = "../css" }},
		{"css file has slash", func(c *Config) { c.CSS.FileName = "a/b.css" }},
		{"negative timeout", func(c *Config) { c.CSS.Timeout = -time.Second }},
		{"webp as input", func(c *Config) { c.Images.Extensions = []string{".webp"} }},
		{"qr not webp", func(c *Config) { c.QR.FileName = "qr.png" }},
		{"negative border", func(c *Config) { c.QR.Border = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)
		})
	}
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitebuilder.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().CSS.Timeout, cfg.CSS.Timeout)

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(".env", []byte("SITEBUILDER_ENV_A=fromfile\nSITEBUILDER_ENV_B=fromfile\n"), 0o600))
	t.Setenv("SITEBUILDER_ENV_A", "fromenv")
	t.Setenv("SITEBUILDER_ENV_B", "")
	require.NoError(t, os.Unsetenv("SITEBUILDER_ENV_B"))

	require.NoError(t, loadEnvFile())
	assert.Equal(t, "fromenv", os.Getenv("SITEBUILDER_ENV_A"))
	assert.Equal(t, "fromfile", os.Getenv("SITEBUILDER_ENV_B"))
}
