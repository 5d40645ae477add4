package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// decodeContent wraps body with one decoder per coding listed in the
// Content-Encoding values, undoing the last applied coding first.
func decodeContent(body io.Reader, contentEncoding []string) (io.ReadCloser, error) {
	var codings []string
	for _, v := range contentEncoding {
		for coding := range strings.SplitSeq(v, ",") {
			coding = strings.ToLower(strings.TrimSpace(coding))
			if coding != "" && coding != "identity" {
				codings = append(codings, coding)
			}
		}
	}

	dec := &decoders{Reader: body}
	for _, coding := range slices.Backward(codings) {
		if err := dec.push(coding); err != nil {
			_ = dec.Close()
			return nil, err
		}
	}

	return dec, nil
}

// decoders is a stack of decompressing readers.
type decoders struct {
	io.Reader
	closers []io.Closer
}

func (d *decoders) push(coding string) error {
	switch coding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(d.Reader)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		d.Reader = zr
		d.closers = append(d.closers, zr)

	case "deflate":
		// "deflate" is meant to be zlib-wrapped, but raw streams are common.
		br := bufio.NewReader(d.Reader)
		if isZlibHeader(br) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return fmt.Errorf("opening zlib stream: %w", err)
			}
			d.Reader = zr
			d.closers = append(d.closers, zr)
			return nil
		}
		fr := flate.NewReader(br)
		d.Reader = fr
		d.closers = append(d.closers, fr)

	case "br":
		d.Reader = brotli.NewReader(d.Reader)

	case "zstd":
		zr, err := zstd.NewReader(d.Reader)
		if err != nil {
			return fmt.Errorf("opening zstd stream: %w", err)
		}
		rc := zr.IOReadCloser()
		d.Reader = rc
		d.closers = append(d.closers, rc)

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, coding)
	}

	return nil
}

func (d *decoders) Close() error {
	var errs []error
	for _, c := range slices.Backward(d.closers) {
		errs = append(errs, c.Close())
	}
	d.closers = nil

	return errors.Join(errs...)
}

// isZlibHeader reports whether the next two bytes form a zlib header
// (RFC 1950): deflate compression method and a valid check value.
func isZlibHeader(br *bufio.Reader) bool {
	h, err := br.Peek(2)
	if err != nil {
		return false
	}

	cmf, flg := h[0], h[1]
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
