package assets

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/imaging"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

var rasterExts = []string{".jpg", ".jpeg", ".png"}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, solid(4, 4), nil))
	require.NoError(t, f.Close())
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(5, 3)))
	require.NoError(t, f.Close())
}

type assetCounter struct {
	metrics.NoopRecorder
	counts map[metrics.AssetResult]int
}

func (c *assetCounter) IncAsset(r metrics.AssetResult) { c.counts[r]++ }

func TestProcess_ConvertsRasterAndCopiesOthers(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "assets")
	dst := filepath.Join(root, "out", "assets")

	writeJPEG(t, filepath.Join(src, "photo.jpg"))
	writePNG(t, filepath.Join(src, "icons", "Logo.PNG"))
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\nbinary\x00payload")
	require.NoError(t, os.WriteFile(filepath.Join(src, "doc.pdf"), pdf, 0o600))

	rec := &assetCounter{counts: map[metrics.AssetResult]int{}}
	res, err := NewTranscoder(rasterExts, rec).Process(context.Background(), src, dst)
	require.NoError(t, err)

	assert.False(t, res.Missing)
	assert.Equal(t, 3, res.Found())
	assert.Len(t, res.Converted, 2)
	assert.Len(t, res.Copied, 1)
	assert.Empty(t, res.Failed)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, rec.counts[metrics.AssetConverted])
	assert.Equal(t, 1, rec.counts[metrics.AssetCopied])

	assert.FileExists(t, filepath.Join(dst, "photo.webp"))
	assert.NoFileExists(t, filepath.Join(dst, "photo.jpg"))
	assert.FileExists(t, filepath.Join(dst, "icons", "Logo.webp"))
	assert.NoFileExists(t, filepath.Join(dst, "icons", "Logo.PNG"))

	_, format, err := imaging.DecodeFile(filepath.Join(dst, "photo.webp"))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)

	copied, err := os.ReadFile(filepath.Join(dst, "doc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, copied)

	assert.FileExists(t, filepath.Join(src, "photo.jpg"), "sources are never modified")
}

func TestProcess_MissingSourceIsNotAnError(t *testing.T) {
	root := t.TempDir()
	res, err := NewTranscoder(rasterExts, nil).Process(context.Background(), filepath.Join(root, "assets"), filepath.Join(root, "out", "assets"))
	require.NoError(t, err)
	assert.True(t, res.Missing)
	assert.Zero(t, res.Found())
}

func TestProcess_CorruptImageIsWarning(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "assets")
	dst := filepath.Join(root, "out", "assets")
	require.NoError(t, os.MkdirAll(src, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("nope"), 0o600))
	writeJPEG(t, filepath.Join(src, "ok.jpg"))

	res, err := NewTranscoder(rasterExts, nil).Process(context.Background(), src, dst)
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "broken.png", res.Failed[0].Rel)
	require.Len(t, res.Warnings, 1)
	assert.True(t, ferrors.HasSeverity(res.Warnings[0], ferrors.SeverityWarning))
	assert.True(t, ferrors.HasCategory(res.Warnings[0], ferrors.CategoryImage))

	assert.FileExists(t, filepath.Join(dst, "broken.png"))
	assert.FileExists(t, filepath.Join(dst, "ok.webp"))
}

func TestProcess_BaseNameCollisionLaterWins(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "assets")
	dst := filepath.Join(root, "out", "assets")
	writeJPEG(t, filepath.Join(src, "x.jpg"))
	writePNG(t, filepath.Join(src, "x.png"))

	res, err := NewTranscoder(rasterExts, nil).Process(context.Background(), src, dst)
	require.NoError(t, err)

	assert.Len(t, res.Converted, 2)
	require.Len(t, res.Warnings, 1)
	ce, ok := ferrors.AsClassified(res.Warnings[0])
	require.True(t, ok)
	file, _ := ce.Context().GetString("file")
	prev, _ := ce.Context().GetString("previous")
	assert.Equal(t, "x.png", file)
	assert.Equal(t, "x.jpg", prev)

	img, _, err := imaging.DecodeFile(filepath.Join(dst, "x.webp"))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx(), "x.png sorts after x.jpg and wins")
}

func TestProcess_CanceledContext(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "assets")
	writeJPEG(t, filepath.Join(src, "photo.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTranscoder(rasterExts, nil).Process(ctx, src, filepath.Join(root, "out"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassifier(t *testing.T) {
	c := NewClassifier([]string{"JPG", ".png", " "})
	assert.Equal(t, KindRaster, c.Classify("a/b.jpg"))
	assert.Equal(t, KindRaster, c.Classify("a/b.PNG"))
	assert.Equal(t, KindOther, c.Classify("a/b.jpeg"))
	assert.Equal(t, KindOther, c.Classify("noext"))
	assert.Equal(t, "raster", KindRaster.String())
	assert.Equal(t, "other", KindOther.String())
}
