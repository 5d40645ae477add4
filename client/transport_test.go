package client_test

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/fetch/client"
)

// rawServer accepts a single connection, captures the request head and
// body verbatim and replies with response.
func rawServer(t *testing.T, response string) (string, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	captured := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(captured)
			return
		}
		defer conn.Close()

		var (
			wire          strings.Builder
			contentLength int
		)
		br := bufio.NewReader(conn)
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				captured <- wire.String()
				return
			}
			wire.WriteString(line)
			if line == "\r\n" {
				break
			}
			if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
				contentLength, _ = strconv.Atoi(strings.TrimSpace(v))
			}
		}

		body := make([]byte, contentLength)
		if _, err := io.ReadFull(br, body); err == nil {
			wire.Write(body)
		}

		io.WriteString(conn, response)
		captured <- wire.String()
	}()

	return ln.Addr().String(), captured
}

func TestTransport_Wire(t *testing.T) {
	const okResponse = "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"

	tests := map[string]struct {
		rawURL string
		method string
		opts   []client.RequestOption
		client []client.Option
		want   string
	}{
		"get defaults": {
			rawURL: "http://{addr}",
			method: http.MethodGet,
			want: "GET / HTTP/1.1\r\n" +
				"Host: {addr}\r\n" +
				"Connection: close\r\n" +
				"\r\n",
		},
		"post with credentials and query": {
			rawURL: "http://user:pw@{addr}/submit?b=2&a=1#frag",
			method: http.MethodPost,
			opts: []client.RequestOption{
				client.WithBody([]byte("hello")),
				client.WithHeaders(map[string][]string{
					"x-zeta": {"z"},
					"Accept": {"*/*"},
				}),
			},
			want: "POST /submit?b=2&a=1 HTTP/1.1\r\n" +
				"Host: {addr}\r\n" +
				"Accept: */*\r\n" +
				"Authorization: Basic dXNlcjpwdw==\r\n" +
				"Connection: close\r\n" +
				"Content-Length: 5\r\n" +
				"X-Zeta: z\r\n" +
				"\r\n" +
				"hello",
		},
		"empty post": {
			rawURL: "http://{addr}/empty",
			method: http.MethodPost,
			want: "POST /empty HTTP/1.1\r\n" +
				"Host: {addr}\r\n" +
				"Connection: close\r\n" +
				"Content-Length: 0\r\n" +
				"\r\n",
		},
		"explicit authorization wins": {
			rawURL: "http://user:pw@{addr}/",
			method: http.MethodDelete,
			opts: []client.RequestOption{
				client.WithHeaders(map[string][]string{"Authorization": {"Bearer token"}}),
			},
			want: "DELETE / HTTP/1.1\r\n" +
				"Host: {addr}\r\n" +
				"Authorization: Bearer token\r\n" +
				"Connection: close\r\n" +
				"\r\n",
		},
		"user agent and compression": {
			rawURL: "http://{addr}/ua",
			method: http.MethodGet,
			client: []client.Option{client.WithUserAgent("fetch-test/1.0"), client.WithCompression()},
			want: "GET /ua HTTP/1.1\r\n" +
				"Host: {addr}\r\n" +
				"Accept-Encoding: br, zstd, gzip, deflate\r\n" +
				"Connection: close\r\n" +
				"User-Agent: fetch-test/1.0\r\n" +
				"\r\n",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			addr, captured := rawServer(t, okResponse)

			req := newRequest(t, strings.ReplaceAll(tc.rawURL, "{addr}", addr), tc.method, tc.opts...)

			resp, err := build(t, tc.client...).Fetch(req)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			text, err := resp.Text()
			if err != nil {
				t.Fatalf("reading text: %v", err)
			}
			if text != "ok" {
				t.Errorf("expected body %q, got %q", "ok", text)
			}

			want := strings.ReplaceAll(tc.want, "{addr}", addr)
			if diff := cmp.Diff(want, <-captured); diff != "" {
				t.Errorf("wire mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransport_MalformedResponse(t *testing.T) {
	addr, _ := rawServer(t, "SSH-2.0-OpenSSH_9.6\r\n")

	_, err := build(t).Fetch(newRequest(t, "http://"+addr+"/", http.MethodGet))
	if !errors.Is(err, client.ErrMalformedResponse) {
		t.Errorf("expected malformed response error, got: %v", err)
	}
}

func TestTransport_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = build(t).Fetch(newRequest(t, "http://"+addr+"/", http.MethodGet))
	if err == nil || !strings.Contains(err.Error(), "dialing "+addr) {
		t.Errorf("expected dial error, got: %v", err)
	}
}
