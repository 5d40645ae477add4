package echo

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/vfaronov/httpheader"
)

const maxBodySize = 1 << 20

// Echo describes a received request. It is the JSON body of every reply
// on the echo route.
type Echo struct {
	Method    string              `json:"method"`
	Target    string              `json:"target"`
	Proto     string              `json:"proto"`
	Host      string              `json:"host"`
	Header    map[string][]string `json:"header"`
	Body      string              `json:"body,omitempty"`
	RequestID string              `json:"requestId"`
	Auth      *Auth               `json:"auth,omitempty"`
}

// Auth holds the parsed Authorization header.
type Auth struct {
	Scheme string `json:"scheme"`
	Token  string `json:"token,omitempty"`
}

// Handler returns the echo routes behind the request id, logging, CORS,
// compression and panic recovery middleware, outermost first.
func Handler(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", echoRequest)
	mux.HandleFunc("GET /status/{code}", status)

	return wrap(mux, requestID, logRequests(logger), allowCrossOrigin, compress, panics(logger))
}

func echoRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	e := Echo{
		Method:    r.Method,
		Target:    r.RequestURI,
		Proto:     r.Proto,
		Host:      r.Host,
		Header:    r.Header,
		Body:      string(body),
		RequestID: w.Header().Get(requestIDHeader),
	}
	if auth := httpheader.Authorization(r.Header); auth.Scheme != "" {
		e.Auth = &Auth{Scheme: auth.Scheme, Token: auth.Token}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(e); err != nil {
		http.Error(w, "encoding reply", http.StatusInternalServerError)
	}
}

// status replies with the requested code. Codes that call for a header
// explaining them get one.
func status(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil || code < 200 || code > 599 {
		http.Error(w, fmt.Sprintf("invalid status code %q", r.PathValue("code")), http.StatusBadRequest)
		return
	}

	switch code {
	case http.StatusUnauthorized:
		httpheader.SetWWWAuthenticate(w.Header(), []httpheader.Auth{{Scheme: "Basic", Realm: "echo"}})
	case http.StatusMethodNotAllowed:
		httpheader.SetAllow(w.Header(), []string{http.MethodGet, http.MethodHead})
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		httpheader.SetRetryAfter(w.Header(), time.Now().Add(30*time.Second))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintln(w, http.StatusText(code))
}
