package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/Kush-Singh-26/devserve/internal/config"
)

func TestGzip_CompressesSuccessfulResponses(t *testing.T) {
	content := strings.Repeat("console.log('compress me');\n", 200)
	s, _ := setupServerTest(t, map[string]string{"app.js": content}, func(c *config.Config) {
		c.Gzip = true
	})

	resp := doRequest(t, s.Handler(), http.MethodGet, "/app.js", map[string]string{"Accept-Encoding": "gzip"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ce := resp.Header.Get("Content-Encoding"); ce != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", ce)
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		t.Errorf("Content-Length = %q, want none for compressed body", cl)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/javascript" {
		t.Errorf("Content-Type = %q, want application/javascript", ct)
	}
	if vary := resp.Header.Get("Vary"); vary != "Accept-Encoding" {
		t.Errorf("Vary = %q, want Accept-Encoding", vary)
	}
	assertNoCacheHeaders(t, resp)

	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	if string(data) != content {
		t.Error("decompressed body differs from the file")
	}
}

func TestGzip_PassThrough(t *testing.T) {
	s, _ := setupServerTest(t, map[string]string{"notes.txt": "plain text body"}, func(c *config.Config) {
		c.Gzip = true
	})
	h := s.Handler()

	tests := []struct {
		name    string
		method  string
		target  string
		headers map[string]string
		status  int
		body    string
	}{
		{"no accept-encoding", http.MethodGet, "/notes.txt", nil, http.StatusOK, "plain text body"},
		{"refused with q=0", http.MethodGet, "/notes.txt", map[string]string{"Accept-Encoding": "gzip;q=0"}, http.StatusOK, "plain text body"},
		{"other encoding", http.MethodGet, "/notes.txt", map[string]string{"Accept-Encoding": "br"}, http.StatusOK, "plain text body"},
		{"range request", http.MethodGet, "/notes.txt", map[string]string{"Accept-Encoding": "gzip", "Range": "bytes=0-4"}, http.StatusPartialContent, "plain"},
		{"not found", http.MethodGet, "/missing.js", map[string]string{"Accept-Encoding": "gzip"}, http.StatusNotFound, "404 page not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, h, tt.method, tt.target, tt.headers)
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ce := resp.Header.Get("Content-Encoding"); ce != "" {
				t.Errorf("Content-Encoding = %q, want none", ce)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
			assertNoCacheHeaders(t, resp)
		})
	}
}

func TestGzip_DisabledByDefault(t *testing.T) {
	s, _ := setupServerTest(t, map[string]string{"app.js": "console.log(1)"}, nil)

	resp := doRequest(t, s.Handler(), http.MethodGet, "/app.js", map[string]string{"Accept-Encoding": "gzip"})
	body := readBody(t, resp)
	if ce := resp.Header.Get("Content-Encoding"); ce != "" {
		t.Errorf("Content-Encoding = %q, want none", ce)
	}
	if body != "console.log(1)" {
		t.Errorf("body = %q", body)
	}
}

func TestGzipResponseWriter_SniffsBeforeCompressing(t *testing.T) {
	rec := httptest.NewRecorder()
	gzw := &gzipResponseWriter{ResponseWriter: rec}
	if _, err := gzw.Write([]byte("<html><body>hi</body></html>")); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Error("implicit 200 should be compressed")
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", true},
		{"GZIP", true},
		{"deflate, gzip;q=1.0, *;q=0.5", true},
		{"gzip;q=0", false},
		{"gzip; q=0", false},
		{"br, deflate", false},
		{"x-gzip", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", tt.header)
		if got := acceptsGzip(req); got != tt.want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
