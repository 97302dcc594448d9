package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tablesideapp/tableside/app"
	"github.com/tablesideapp/tableside/internal/auth"
	"github.com/tablesideapp/tableside/internal/config"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products":
			_, _ = io.WriteString(w, `[{"id":"combo-a","name":"Combo A","basePrice":5500,
				"variantAxes":[{"name":"Type","type":"default","options":["default"]}],
				"variants":[{"id":"combo-a-default","value":"default","stock":3}]}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		BackendURL:        upstream.URL,
		BackendTimeout:    5 * time.Second,
		CatalogSource:     "remote",
		CatalogTTL:        time.Minute,
		DraftStore:        "memory",
		AuthTokenSecret:   testSecret,
		TrackingTimeout:   time.Second,
		MutationRateLimit: 100,
		Port:              "0",
	}
	application, err := app.Build(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(application.Close)

	srv, err := New(cfg, application.Logger, application.Handlers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestRouter_AccessControl(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	employeeToken, err := auth.NewVerifier(testSecret).Sign("emp-1", session.RoleEmployee, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	client := ts.Client()
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "menu is public", method: http.MethodGet, path: "/menu", want: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "pos needs a session", method: http.MethodGet, path: "/pos/draft", want: http.StatusUnauthorized},
		{name: "pos open to employees", method: http.MethodGet, path: "/pos/draft", token: employeeToken, want: http.StatusOK},
		{name: "admin closed to employees", method: http.MethodGet, path: "/admin/products", token: employeeToken, want: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/menu", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookie *http.Cookie
			if tt.token != "" {
				cookie = signIn(t, client, ts.URL, tt.token)
			}
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			req.Header.Set("Origin", ts.URL)
			if cookie != nil {
				req.AddCookie(cookie)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("%s %s: got %d want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRouter_RejectsCrossOriginMutations(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/menu/picker/close", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Origin", "https://attacker.example")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRouter_ServesAssets(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/assets/js/app.js")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "EventSource") {
		t.Fatalf("unexpected asset response %d", resp.StatusCode)
	}
}

func signIn(t *testing.T, client *http.Client, baseURL, token string) *http.Cookie {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/session", strings.NewReader("token="+token))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", baseURL)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign in status %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie after sign in")
	return nil
}
