package download

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath             = errors.New("download: empty destination path")
	ErrDownloadCancelled     = errors.New("download: cancelled before the body was read")
	ErrContentLengthMismatch = errors.New("download: body length differs from Content-Length")
	ErrChecksumMismatch      = errors.New("download: digest differs from expected checksum")
)

// VerifyError reports a body that was read in full but did not match what
// was promised for it. Nothing is written to Path when it is returned.
type VerifyError struct {
	Path string
	Want string
	Got  string
	Err  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %v (want %s, got %s)", e.Path, e.Err, e.Want, e.Got)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}
