package weburl

import (
	"errors"
	"fmt"
)

// ErrMalformedQueryParameter is wrapped by QueryError when a query
// candidate has no '=' separating its name from its value.
var ErrMalformedQueryParameter = errors.New("malformed query parameter")

// QueryError reports the query candidate rejected by ParseSearchParams.
type QueryError struct {
	Candidate string
	Index     int
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%v: candidate %d %q", e.Err, e.Index, e.Candidate)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
