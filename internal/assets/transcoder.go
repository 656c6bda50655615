// Package assets mirrors the source asset tree into the output tree and
// replaces raster images with lossless WebP copies.
package assets

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/imaging"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// Result summarises one transcoder run.
type Result struct {
	// Missing is set when the source tree does not exist.
	Missing   bool
	Copied    []Entry
	Converted []Entry
	Failed    []Entry
	// Warnings holds one classified warning per failed file or collision.
	Warnings []error
}

// Found returns the number of files discovered.
func (r *Result) Found() int {
	return len(r.Copied) + len(r.Converted) + len(r.Failed)
}

// Transcoder copies and converts assets.
type Transcoder struct {
	classifier Classifier
	recorder   metrics.Recorder
}

// NewTranscoder creates a Transcoder converting the given raster extensions.
func NewTranscoder(extensions []string, recorder metrics.Recorder) *Transcoder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Transcoder{classifier: NewClassifier(extensions), recorder: recorder}
}

// Process walks srcDir in lexical order and mirrors it into dstDir. Raster
// images end up as <name>.webp and their copied original is removed. A
// failure to convert one image is a warning and leaves the original copy in
// place; failures to copy are fatal.
func (t *Transcoder) Process(ctx context.Context, srcDir, dstDir string) (*Result, error) {
	res := &Result{}

	info, err := os.Stat(srcDir)
	if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		res.Missing = true
		return res, nil
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to stat asset directory").
			WithCause(err).
			WithContext("path", srcDir).
			Build()
	}

	// produced maps output paths to the source that wrote them.
	produced := make(map[string]string)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !isRegular(path, d) {
			slog.Debug("Skipping non-regular asset", logfields.Path(path))
			return nil
		}

		entry := Entry{Source: path, Rel: filepath.ToSlash(rel), Dest: target, Kind: t.classifier.Classify(path)}
		if err := workspace.CopyFile(path, target); err != nil {
			return ferrors.FileSystemError("failed to copy asset").
				WithCause(err).
				WithContext("source", path).
				WithContext("dest", target).
				Build()
		}

		if entry.Kind == KindOther {
			t.claim(res, produced, target, entry)
			res.Copied = append(res.Copied, entry)
			t.recorder.IncAsset(metrics.AssetCopied)
			slog.Debug("Copied asset", logfields.Source(path), logfields.Dest(target))
			return nil
		}

		webp := imaging.WebPPath(target)
		if err := convert(target, webp); err != nil {
			res.Failed = append(res.Failed, entry)
			t.claim(res, produced, target, entry)
			res.Warnings = append(res.Warnings, ferrors.ImageError("failed to convert image to webp").
				WithCause(err).
				WithContext("file", entry.Rel).
				Build())
			t.recorder.IncAsset(metrics.AssetFailed)
			slog.Warn("Failed to convert image, keeping original", logfields.File(entry.Rel), logfields.Error(err))
			return nil
		}

		entry.Dest = webp
		t.claim(res, produced, webp, entry)
		res.Converted = append(res.Converted, entry)
		t.recorder.IncAsset(metrics.AssetConverted)
		slog.Debug("Converted image", logfields.Source(path), logfields.Dest(webp))
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if ferrors.IsClassified(walkErr) {
			return res, walkErr
		}
		return res, ferrors.FileSystemError("failed to process assets").
			WithCause(walkErr).
			WithContext("path", srcDir).
			Build()
	}

	slog.Info("Assets processed",
		logfields.Count(res.Found()),
		slog.Int("converted", len(res.Converted)),
		slog.Int("copied", len(res.Copied)),
		slog.Int("failed", len(res.Failed)))
	return res, nil
}

// claim records that entry produced out. When an earlier file already wrote
// the same path, the later one has overwritten it and a warning is recorded.
func (t *Transcoder) claim(res *Result, produced map[string]string, out string, entry Entry) {
	if prev, ok := produced[out]; ok && prev != entry.Rel {
		res.Warnings = append(res.Warnings, ferrors.ImageError("asset output collision").
			WithContext("file", entry.Rel).
			WithContext("previous", prev).
			WithContext("dest", filepath.ToSlash(filepath.Base(out))).
			Build())
		slog.Warn("Asset output collision, later file wins",
			logfields.File(entry.Rel),
			slog.String("previous", prev),
			logfields.Dest(out))
	}
	produced[out] = entry.Rel
}

// convert decodes src, writes dst as lossless WebP and removes src.
func convert(src, dst string) error {
	img, _, err := imaging.DecodeFile(src)
	if err != nil {
		return err
	}
	if err := imaging.WriteWebP(dst, img); err != nil {
		return err
	}
	return os.Remove(src)
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
