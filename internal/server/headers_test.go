package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNoCache_OverridesHandlerHeaders(t *testing.T) {
	h := noCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("Expires", "Thu, 01 Dec 2094 16:00:00 GMT")
		w.WriteHeader(http.StatusOK)
	}))

	resp := doRequest(t, h, http.MethodGet, "/", nil)
	assertNoCacheHeaders(t, resp)
}

func TestNoCache_AppliedAfterHeadersCleared(t *testing.T) {
	h := noCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// What the file handler does before writing an error.
		w.Header().Del("Cache-Control")
		http.Error(w, "gone", http.StatusGone)
	}))

	resp := doRequest(t, h, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusGone {
		t.Errorf("status = %d, want 410", resp.StatusCode)
	}
	assertNoCacheHeaders(t, resp)
}

func TestNoCache_ImplicitHeader(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"write without WriteHeader", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("body"))
		}},
		{"nothing written", func(w http.ResponseWriter, r *http.Request) {}},
		{"flush first", func(w http.ResponseWriter, r *http.Request) {
			w.(http.Flusher).Flush()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, noCache(tt.handler), http.MethodGet, "/", nil)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
			assertNoCacheHeaders(t, resp)
		})
	}
}

func TestNoCacheWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &noCacheWriter{ResponseWriter: rec}
	if w.Unwrap() != rec {
		t.Error("Unwrap() should return the wrapped writer")
	}
}
