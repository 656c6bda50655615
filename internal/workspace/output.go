package workspace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Reset removes outputDir recursively if it exists and recreates it together
// with the given subdirectories.
func Reset(outputDir string, subdirs ...string) error {
	if _, err := os.Stat(outputDir); err == nil {
		if err := os.RemoveAll(outputDir); err != nil {
			return errors.FileSystemError("failed to remove old output directory").
				WithCause(err).
				WithContext("path", outputDir).
				Build()
		}
		slog.Debug("Removed previous build output", logfields.Path(outputDir))
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", outputDir).
			Build()
	}
	for _, sub := range subdirs {
		dir := filepath.Join(outputDir, sub)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.FileSystemError("failed to create output subdirectory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	return nil
}

// CopyLicense copies src into outputDir, keeping its base name. It reports
// whether a file was copied; a missing src is not an error.
func CopyLicense(src, outputDir string) (bool, error) {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.FileSystemError("failed to stat license file").
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	if info.IsDir() {
		return false, nil
	}

	dst := filepath.Join(outputDir, filepath.Base(src))
	if err := CopyFile(src, dst); err != nil {
		return false, errors.FileSystemError("failed to copy license file").
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	return true, nil
}

// CopyFile copies src to dst byte for byte, preserving permission bits and
// modification time.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
