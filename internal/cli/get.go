package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/fetch/abort"
	"github.com/adamwoolhether/fetch/client"
	"github.com/adamwoolhether/fetch/client/download"
	"github.com/adamwoolhether/fetch/weburl"
)

// ErrRequestFailed is returned by get --fail when the response status is
// not 2xx.
var ErrRequestFailed = errors.New("request failed")

type getFlags struct {
	method     string
	headers    []string
	data       string
	timeout    time.Duration
	include    bool
	output     string
	sha256     string
	progress   bool
	compressed bool
	fail       bool
}

func (a *app) getCmd() *cobra.Command {
	var f getFlags

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Fetch a URL and print the response body",
		Example: `  fetch get http://127.0.0.1:2010/hello
  fetch get -X POST -H 'Content-Type: text/plain' -d 'hi' http://127.0.0.1:2010/
  fetch get -o archive.tar.gz --sha256 <hex> https://example.com/archive.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.get(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.method, "request", "X", http.MethodGet, "request method")
	flags.StringArrayVarP(&f.headers, "header", "H", nil, `request header as "Name: value", repeatable`)
	flags.StringVarP(&f.data, "data", "d", "", "request body")
	flags.DurationVar(&f.timeout, "timeout", 0, "overall time limit for the fetch; 0 means none")
	flags.BoolVarP(&f.include, "include", "i", false, "print the status line and headers before the body")
	flags.StringVarP(&f.output, "output", "o", "", "write the body to a file instead of stdout")
	flags.StringVar(&f.sha256, "sha256", "", "expected SHA-256 of the file written with --output")
	flags.BoolVar(&f.progress, "progress", false, "log download progress with --output")
	flags.BoolVar(&f.compressed, "compressed", false, "ask for a compressed response and decode it")
	flags.BoolVarP(&f.fail, "fail", "f", false, "fail on responses outside the 2xx range")

	return cmd
}

func (a *app) get(cmd *cobra.Command, rawURL string, f getFlags) error {
	c, err := a.client(f)
	if err != nil {
		return err
	}

	// Interrupting the command aborts the fetch, including the body read.
	ctrl := abort.NewController()
	stop := context.AfterFunc(cmd.Context(), func() {
		ctrl.Abort(context.Cause(cmd.Context()))
	})
	defer stop()

	reqOpts := []client.RequestOption{client.WithSignal(ctrl.Signal())}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return err
	}
	if len(headers) > 0 {
		reqOpts = append(reqOpts, client.WithHeaders(headers))
	}
	if f.data != "" {
		reqOpts = append(reqOpts, client.WithBody([]byte(f.data)))
	}

	req, err := c.Request(cmd.Context(), weburl.New(rawURL), strings.ToUpper(f.method), reqOpts...)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	if f.output != "" {
		var dlOpts []download.Option
		if f.sha256 != "" {
			dlOpts = append(dlOpts, download.WithSHA256(f.sha256))
		}
		if f.progress {
			dlOpts = append(dlOpts, download.WithProgress())
		}

		if err := c.Download(req, http.StatusOK, f.output, dlOpts...); err != nil {
			return fmt.Errorf("downloading %s: %w", rawURL, err)
		}

		return nil
	}

	resp, err := c.Fetch(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.include {
		writeHead(out, resp)
	}

	text, err := resp.Text()
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	fmt.Fprint(out, text)

	if f.fail && !resp.OK() {
		return fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
	}

	return nil
}

func (a *app) client(f getFlags) (*client.Client, error) {
	opts := []client.Option{client.WithLogger(a.logger)}

	if a.cfg.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(a.cfg.UserAgent))
	}
	if a.cfg.RPS > 0 {
		opts = append(opts, client.WithThrottle(a.cfg.RPS, a.cfg.Burst))
	}
	if f.timeout > 0 {
		opts = append(opts, client.WithTimeout(f.timeout))
	}
	if f.compressed {
		opts = append(opts, client.WithCompression())
	}

	c, err := client.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return c, nil
}

func parseHeaders(raw []string) (map[string][]string, error) {
	headers := make(map[string][]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		key := http.CanonicalHeaderKey(name)
		headers[key] = append(headers[key], strings.TrimSpace(value))
	}

	return headers, nil
}

func writeHead(w io.Writer, resp *client.Response) {
	fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)
	for _, name := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, v := range resp.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(w)
}
