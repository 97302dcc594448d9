package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    string
	}{
		{name: "asset", path: "/assets/js/app.js", want: classAsset},
		{name: "health", path: "/health", want: classHealth},
		{name: "pos events", path: "/pos/events", want: classStream},
		{name: "event stream accept", path: "/anything", headers: map[string]string{"Accept": "text/event-stream"}, want: classStream},
		{name: "htmx fragment", path: "/menu/picker/toggle", headers: map[string]string{"HX-Request": "true"}, want: classFragment},
		{name: "page", path: "/menu", want: classPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			if got := requestClass(req); got != tt.want {
				t.Fatalf("requestClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestIDFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{name: "none", inbound: ""},
		{name: "safe", inbound: "edge-7f3a_01.b", keep: true},
		{name: "newline injection", inbound: "abc\nlevel=ERROR"},
		{name: "too long", inbound: strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/menu", nil)
			if tt.inbound != "" {
				req.Header["X-Request-Id"] = []string{tt.inbound}
			}
			got := requestIDFromRequest(req)
			if tt.keep && got != tt.inbound {
				t.Fatalf("expected inbound id %q to be kept, got %q", tt.inbound, got)
			}
			if !tt.keep && (got == tt.inbound || !validRequestID(got)) {
				t.Fatalf("expected a fresh id, got %q", got)
			}
		})
	}
}

func TestRequestLogger_SharesRequestIDDownstream(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := &Handlers{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromRequest(r)
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	h.RequestLogger(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil))

	id := rec.Header().Get("X-Request-ID")
	if id == "" || seen != id {
		t.Fatalf("downstream saw request id %q, response carried %q", seen, id)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if record["msg"] != "request completed" || record["request_id"] != id || record["status"] != float64(http.StatusAccepted) {
		t.Fatalf("unexpected log record %v", record)
	}
}

func TestSurfaceFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/pos/draft":        "pos",
		"/admin/products":   "admin",
		"/auth/session":     "auth",
		"/assets/css/a.css": "system",
		"/health":           "system",
		"/menu/picker/open": "menu",
		"/checkout":         "menu",
	}
	for path, want := range tests {
		if got := surfaceFor(path); got != want {
			t.Fatalf("surfaceFor(%q) = %q, want %q", path, got, want)
		}
	}
}
