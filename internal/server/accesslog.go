package server

import (
	"net/http"
	"time"
)

// statusRecorder captures what was sent on the wire for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status   int
	bytes    int64
	writeErr error
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 && (code < 100 || code >= 200) {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	if err != nil && r.writeErr == nil {
		r.writeErr = err
	}
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// accessLog records every response in the metrics and, unless quiet, logs
// one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.metrics.RecordRequest(rec.status, rec.bytes)

		if s.cfg.Quiet {
			return
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		}
		if rec.writeErr != nil {
			// Client went away mid-response.
			attrs = append(attrs, "aborted", true)
		}
		s.logger.Info("request", attrs...)
	})
}
