// Package fetch exposes the client builder and one-shot helpers.
//
// Most programs build a [client.Client] once with [NewClient] and reuse it.
// [Get] and [Fetch] use a shared client with default options.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/adamwoolhether/fetch/client"
	"github.com/adamwoolhether/fetch/weburl"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, the default Transport dials a fresh connection per request.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

var defaultClient = sync.OnceValues(func() (*client.Client, error) {
	return client.Build()
})

// Fetch parses rawURL and sends a request with the given method through the
// shared default client. The caller must close the response body.
func Fetch(ctx context.Context, rawURL, method string, opts ...client.RequestOption) (*client.Response, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, fmt.Errorf("building default client: %w", err)
	}

	req, err := client.NewRequest(ctx, weburl.New(rawURL), method, opts...)
	if err != nil {
		return nil, err
	}

	return c.Fetch(req)
}

// Get is Fetch with the GET method.
func Get(ctx context.Context, rawURL string, opts ...client.RequestOption) (*client.Response, error) {
	return Fetch(ctx, rawURL, http.MethodGet, opts...)
}
