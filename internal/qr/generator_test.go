package qr

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/imaging"
)

func TestImage_Geometry(t *testing.T) {
	g := NewGenerator(2, 10)
	img, err := g.Image("https://example.com")
	require.NoError(t, err)

	side := img.Bounds().Dx()
	assert.Equal(t, side, img.Bounds().Dy())
	assert.Zero(t, side%10)
	// Version 1 is 21 modules; any version is 17+4v.
	modules := side/10 - 4
	assert.Zero(t, (modules-17)%4)

	// Quiet zone is white, the finder pattern corner is black.
	assert.Equal(t, color.Gray{Y: 0xff}, img.GrayAt(0, 0))
	assert.Equal(t, color.Gray{Y: 0xff}, img.GrayAt(19, 19))
	assert.Equal(t, color.Gray{Y: 0}, img.GrayAt(20, 20))
	assert.Equal(t, color.Gray{Y: 0}, img.GrayAt(29, 29))
}

func TestImage_ZeroBorder(t *testing.T) {
	img, err := NewGenerator(0, 1).Image("x")
	require.NoError(t, err)
	assert.Equal(t, 21, img.Bounds().Dx())
	assert.Equal(t, color.Gray{Y: 0}, img.GrayAt(0, 0))
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(-1, 0)
	assert.Equal(t, DefaultBorder, g.border)
	assert.Equal(t, DefaultModuleSize, g.moduleSize)
}

func TestGenerate_WritesWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "assets", "qr_code_generated.webp")
	require.NoError(t, NewGenerator(2, 10).Generate("https://example.com/card", path))

	img, format, err := imaging.DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	side := img.Bounds().Dx()
	assert.Zero(t, side%10)
	assert.GreaterOrEqual(t, side/10-4, 25, "24 bytes at level M need at least version 2")
}

func TestGenerate_ContentTooLong(t *testing.T) {
	err := NewGenerator(2, 10).Generate(strings.Repeat("x", 5000), filepath.Join(t.TempDir(), "qr.webp"))
	require.Error(t, err)
	assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
}
