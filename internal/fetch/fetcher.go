package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// Options describes one stylesheet fetch.
type Options struct {
	ArchiveURL string
	Member     string // slash separated path inside the archive
	DestDir    string // e.g. out/css
	FileName   string // e.g. pico.min.css
	Gzip       bool
	ScratchDir string // parent for the temporary extraction directory
}

// Result describes the files written by Fetch.
type Result struct {
	Path         string
	GzipPath     string
	ArchiveBytes int64
	Bytes        int64
	GzipBytes    int64
}

// Fetcher downloads archives and extracts members from them.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	recorder metrics.Recorder
}

// NewFetcher creates a Fetcher. A nil client gets NewHTTPClient defaults and
// a nil recorder records nothing.
func NewFetcher(client *http.Client, maxBytes int64, recorder metrics.Recorder) *Fetcher {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Fetcher{client: client, maxBytes: maxBytes, recorder: recorder}
}

// Fetch downloads opts.ArchiveURL, extracts opts.Member into a scratch
// directory, moves it to DestDir/FileName and optionally writes a .gz sibling.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) (*Result, error) {
	slog.Info("Downloading stylesheet archive", logfields.URL(opts.ArchiveURL))

	body, err := download(ctx, f.client, opts.ArchiveURL, f.maxBytes)
	if err != nil {
		return nil, err
	}
	f.recorder.AddFetchedBytes(int64(len(body)))
	slog.Debug("Archive downloaded", logfields.URL(opts.ArchiveURL), logfields.Size(int64(len(body))))

	scratch := workspace.NewManager(opts.ScratchDir)
	if err := scratch.Create(); err != nil {
		return nil, ferrors.FileSystemError("failed to create scratch directory").
			WithCause(err).
			Build()
	}
	defer func() {
		if cerr := scratch.Cleanup(); cerr != nil {
			slog.Warn("Failed to remove scratch directory", logfields.Error(cerr))
		}
	}()

	extracted, size, err := extractMember(body, opts.Member, scratch.GetPath())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.DestDir, 0o750); err != nil {
		return nil, ferrors.FileSystemError("failed to create stylesheet directory").
			WithCause(err).
			WithContext("path", opts.DestDir).
			Build()
	}
	dest := filepath.Join(opts.DestDir, opts.FileName)
	if err := moveFile(extracted, dest); err != nil {
		return nil, ferrors.FileSystemError("failed to move stylesheet into place").
			WithCause(err).
			WithContext("source", extracted).
			WithContext("dest", dest).
			Build()
	}

	res := &Result{Path: dest, ArchiveBytes: int64(len(body)), Bytes: size}

	if opts.Gzip {
		gz := dest + ".gz"
		n, err := GzipFile(dest, gz)
		if err != nil {
			return nil, ferrors.FileSystemError("failed to compress stylesheet").
				WithCause(err).
				WithContext("path", gz).
				Build()
		}
		res.GzipPath = gz
		res.GzipBytes = n
	}

	slog.Info("Stylesheet ready",
		logfields.Path(dest),
		logfields.Size(res.Bytes),
		slog.String("gzip_size", humanizeOrEmpty(res.GzipPath, res.GzipBytes)))
	return res, nil
}

// extractMember writes the archive member named member into dir and returns
// the written path and size.
func extractMember(data []byte, member, dir string) (string, int64, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, ferrors.NetworkError("downloaded file is not a zip archive").
			WithCause(err).
			Build()
	}

	want := path.Clean(member)
	for _, zf := range zr.File {
		if path.Clean(zf.Name) != want || zf.FileInfo().IsDir() {
			continue
		}

		out := filepath.Join(dir, path.Base(want))
		n, err := writeZipFile(zf, out)
		if err != nil {
			return "", 0, ferrors.FileSystemError("failed to extract archive member").
				WithCause(err).
				WithContext("member", member).
				Build()
		}
		return out, n, nil
	}

	return "", 0, ferrors.NotFoundError("archive member not found").
		WithContext("member", member).
		Build()
}

func writeZipFile(zf *zip.File, dst string) (int64, error) {
	rc, err := zf.Open()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = rc.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	// #nosec G110 -- member size is bounded by the archive size limit.
	n, err := io.Copy(out, rc)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	return n, out.Close()
}

// moveFile renames src to dst, falling back to copy and remove when the two
// live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := workspace.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
