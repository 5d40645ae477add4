package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const progressInterval = time.Second

// progressReader logs how much of the body has been read, at most once per
// progressInterval, and once more when the body ends.
type progressReader struct {
	r      io.Reader
	logger *slog.Logger
	total  int64 // -1 when unknown
	read   int64
	start  time.Time
	next   time.Time
}

func newProgressReader(r io.Reader, total int64, logger *slog.Logger) *progressReader {
	now := time.Now()

	return &progressReader{
		r:      r,
		logger: logger,
		total:  total,
		start:  now,
		next:   now.Add(progressInterval),
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read += int64(n)

	switch {
	case errors.Is(err, io.EOF):
		pr.report("download complete")
	case time.Now().After(pr.next):
		pr.next = time.Now().Add(progressInterval)
		pr.report("downloading")
	}

	return n, err
}

func (pr *progressReader) report(msg string) {
	elapsed := time.Since(pr.start)

	attrs := []slog.Attr{
		slog.Int64("bytes", pr.read),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, slog.String("rate", fmt.Sprintf("%.2f MiB/s", float64(pr.read)/secs/(1<<20))))
	}
	if pr.total > 0 {
		attrs = append(attrs,
			slog.Int64("total", pr.total),
			slog.String("progress", fmt.Sprintf("%.1f%%", float64(pr.read)/float64(pr.total)*100)),
		)
	}

	pr.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
}
