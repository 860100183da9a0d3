package server

import (
	"net/http"
)

// Sent on every response so the browser always refetches.
var noCacheHeaders = [...]struct{ key, value string }{
	{"Cache-Control", "no-cache, no-store, must-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
}

// noCacheWriter sets the no-cache headers at the moment the header block
// is committed. The file handler clears Cache-Control on error responses,
// so setting them up front is not enough.
type noCacheWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *noCacheWriter) applyHeaders() {
	h := w.ResponseWriter.Header()
	for _, kv := range noCacheHeaders {
		h.Set(kv.key, kv.value)
	}
}

func (w *noCacheWriter) WriteHeader(code int) {
	// Informational responses carry their own header block.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	if !w.wroteHeader {
		w.wroteHeader = true
		w.applyHeaders()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *noCacheWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *noCacheWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *noCacheWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// noCache decorates every response of next with the no-cache headers.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nw := &noCacheWriter{ResponseWriter: w}
		next.ServeHTTP(nw, r)
		// Handlers that write nothing leave the header block to net/http.
		if !nw.wroteHeader {
			nw.applyHeaders()
		}
	})
}
