// Package imaging decodes raster images and writes them as lossless WebP.
package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for the raster set.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/HugoSmits86/nativewebp"
)

// WebPExt is the extension of every transcoded image.
const WebPExt = ".webp"

// DecodeFile decodes the image at path and returns it with its format name.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = f.Close()
	}()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// WriteWebP encodes img as lossless WebP into path, replacing any existing file.
func WriteWebP(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("encode %s: nil image", filepath.Base(path))
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("encode %s: empty image", filepath.Base(path))
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// WebPPath returns path with its extension replaced by .webp.
func WebPPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + WebPExt
}
