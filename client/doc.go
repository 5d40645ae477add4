// Package client performs fetches addressed by [weburl.URL] values.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithCompression(),
//	)
//
// Requests pass through a chain of [RoundTripper] decorators (throttle,
// User-Agent, Accept-Encoding) before reaching the base [Transport], which
// opens a fresh TCP or TLS connection per request and speaks HTTP/1.1.
//
// # Making Requests
//
// Construct a [URL] and [Request], then execute with [Client.Do]:
//
//	u := client.URL("https", "api.example.com", "/v1/resource")
//	req, err := client.NewRequest(ctx, u, http.MethodGet)
//	err = c.Do(req, http.StatusOK, client.WithDestination(&result))
//
// [Client.Fetch] returns the raw [Response] instead. Its body is read with
// [Response.Text] or [Response.Bytes], which undo any Content-Encoding and
// convert the payload to UTF-8.
//
// Credentials embedded in the URL are sent as Basic authorization unless
// the request sets its own Authorization header. Redirects are returned to
// the caller, not followed.
//
// # Aborting
//
// Tie a request to an [abort.Signal] with [WithSignal]. Aborting the
// controller stops the fetch at whatever stage it is in, including while
// the body is streaming, and the error matches [ErrAborted]:
//
//	ctrl := abort.NewController()
//	req, _ := client.NewRequest(ctx, u, http.MethodGet, client.WithSignal(ctrl.Signal()))
//	go func() { time.Sleep(time.Second); ctrl.Abort(nil) }()
//	_, err := c.Fetch(req) // errors.Is(err, client.ErrAborted)
//
// # Downloading Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	err = c.Download(req, http.StatusOK, "/tmp/file.bin",
//		download.WithSHA256(expectedHex),
//		download.WithProgress(),
//	)
//
// For lower-level control see the
// [github.com/adamwoolhether/fetch/client/download] package.
package client
