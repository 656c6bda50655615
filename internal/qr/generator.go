// Package qr renders a URL as a QR code image stored as lossless WebP.
package qr

import (
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/imaging"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

const (
	DefaultBorder     = 2
	DefaultModuleSize = 10
)

// Generator renders QR codes with a fixed quiet zone and module size.
type Generator struct {
	border     int
	moduleSize int
	level      qrcode.RecoveryLevel
}

// NewGenerator creates a Generator. Non-positive sizes fall back to the
// defaults; a zero border is allowed.
func NewGenerator(border, moduleSize int) *Generator {
	if border < 0 {
		border = DefaultBorder
	}
	if moduleSize <= 0 {
		moduleSize = DefaultModuleSize
	}
	return &Generator{border: border, moduleSize: moduleSize, level: qrcode.Medium}
}

// Image encodes content and draws it black on white.
func (g *Generator) Image(content string) (*image.Gray, error) {
	code, err := qrcode.New(content, g.level)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()

	modules := len(bitmap) + 2*g.border
	side := modules * g.moduleSize
	img := image.NewGray(image.Rect(0, 0, side, side))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	for y, row := range bitmap {
		for x, set := range row {
			if !set {
				continue
			}
			x0 := (x + g.border) * g.moduleSize
			y0 := (y + g.border) * g.moduleSize
			for dy := range g.moduleSize {
				for dx := range g.moduleSize {
					img.SetGray(x0+dx, y0+dy, color.Gray{Y: 0})
				}
			}
		}
	}
	return img, nil
}

// Generate renders content and writes it to path as WebP, creating the
// parent directory when needed.
func (g *Generator) Generate(content, path string) error {
	img, err := g.Image(content)
	if err != nil {
		return ferrors.ImageError("failed to encode QR code").
			WithCause(err).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.FileSystemError("failed to create QR output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := imaging.WriteWebP(path, img); err != nil {
		return ferrors.ImageError("failed to write QR image").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	slog.Debug("QR code written", logfields.Path(path), slog.Int("pixels", img.Bounds().Dx()))
	return nil
}
