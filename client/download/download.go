package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const tempPattern = ".fetch-dl-*"

// Save streams body to a temp file in the same directory as destPath,
// which is renamed to destPath on success. On any error the temp file is
// removed. A negative contentLength disables the length check.
func Save(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	if destPath == "" {
		return ErrEmptyPath
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	if opts.skipExisting {
		if info, err := os.Stat(destPath); err == nil && info.Mode().IsRegular() {
			logger.Info("destination exists, skipping download", "path", destPath)
			return nil
		}
	}

	tmp, err := createTemp(destPath)
	if err != nil {
		return err
	}
	defer tmp.discard(logger)

	var src io.Reader = &contextReader{ctx: ctx, r: body}
	if opts.progress {
		src = newProgressReader(src, contentLength, logger)
	}

	v := &verifier{digest: opts.digest, expected: opts.expectedDigest}

	_, err = io.Copy(io.MultiWriter(tmp.f, v), src)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrDownloadCancelled, context.Cause(ctx))
	default:
		return fmt.Errorf("writing %s: %w", destPath, err)
	}

	if err := v.check(destPath, contentLength); err != nil {
		return err
	}

	return tmp.commit(destPath)
}

// tempFile is the partial download. It is either committed to its
// destination or discarded.
type tempFile struct {
	f         *os.File
	committed bool
}

func createTemp(destPath string) (*tempFile, error) {
	f, err := os.CreateTemp(filepath.Dir(destPath), tempPattern)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	return &tempFile{f: f}, nil
}

func (t *tempFile) commit(destPath string) error {
	if err := t.f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := t.f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(t.f.Name(), destPath); err != nil {
		return fmt.Errorf("moving download into place: %w", err)
	}
	t.committed = true

	return nil
}

func (t *tempFile) discard(logger *slog.Logger) {
	if t.committed {
		return
	}

	if err := t.f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Warn("closing discarded temp file", "path", t.f.Name(), "error", err)
	}
	if err := os.Remove(t.f.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("removing discarded temp file", "path", t.f.Name(), "error", err)
	}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}
