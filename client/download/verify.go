package download

import (
	"encoding/hex"
	"hash"
	"strconv"
	"strings"
)

// verifier sits beside the temp file in the copy. It counts every byte and
// feeds them to the optional digest so the body can be checked before it
// is moved into place.
type verifier struct {
	n        int64
	digest   hash.Hash
	expected string
}

func (v *verifier) Write(p []byte) (int, error) {
	v.n += int64(len(p))
	if v.digest != nil {
		v.digest.Write(p)
	}

	return len(p), nil
}

// check compares the copied body with contentLength, when it is not
// negative, and then with the expected digest, when one was given.
func (v *verifier) check(destPath string, contentLength int64) error {
	if contentLength >= 0 && v.n != contentLength {
		return &VerifyError{
			Path: destPath,
			Want: strconv.FormatInt(contentLength, 10) + " bytes",
			Got:  strconv.FormatInt(v.n, 10) + " bytes",
			Err:  ErrContentLengthMismatch,
		}
	}

	if v.digest == nil {
		return nil
	}

	got := hex.EncodeToString(v.digest.Sum(nil))
	if !strings.EqualFold(got, v.expected) {
		return &VerifyError{
			Path: destPath,
			Want: strings.ToLower(v.expected),
			Got:  got,
			Err:  ErrChecksumMismatch,
		}
	}

	return nil
}
