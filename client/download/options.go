package download

import (
	"crypto/sha256"
	"errors"
	"hash"
)

// Option defines optional settings for Save.
type Option func(*options) error

type options struct {
	digest         hash.Hash
	expectedDigest string
	progress       bool
	skipExisting   bool
}

// WithChecksum enables checksum validation of the saved file. h is a
// hash.Hash instance (e.g. sha256.New()), and expected is the hex-encoded
// digest.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.digest = h
		opts.expectedDigest = expected
		return nil
	}
}

// WithSHA256 is WithChecksum using SHA-256.
func WithSHA256(expected string) Option {
	return WithChecksum(sha256.New(), expected)
}

// WithProgress enables periodic progress logging via the logger supplied
// to Save.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting makes Save return nil immediately when the destination
// file already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}
