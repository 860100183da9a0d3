// Package metrics tracks what the preview server has served.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ServeMetrics counts requests across all connections. It is safe for
// concurrent use.
type ServeMetrics struct {
	StartTime time.Time

	requests     atomic.Int64
	bytesWritten atomic.Int64
	notFound     atomic.Int64
	// Indexed by status/100: 1xx..5xx.
	byClass [6]atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests     int64
	BytesWritten int64
	NotFound     int64
	Success      int64 // 2xx
	Redirects    int64 // 3xx
	ClientErrors int64 // 4xx
	ServerErrors int64 // 5xx
	Uptime       time.Duration
}

// NewServeMetrics creates a new metrics instance.
func NewServeMetrics() *ServeMetrics {
	return &ServeMetrics{
		StartTime: time.Now(),
	}
}

// RecordRequest counts one finished response.
func (m *ServeMetrics) RecordRequest(status int, bytes int64) {
	m.requests.Add(1)
	if bytes > 0 {
		m.bytesWritten.Add(bytes)
	}
	if status == 404 {
		m.notFound.Add(1)
	}
	if class := status / 100; class >= 1 && class <= 5 {
		m.byClass[class].Add(1)
	}
}

// Requests returns the number of responses recorded.
func (m *ServeMetrics) Requests() int64 {
	return m.requests.Load()
}

// NotFound returns the number of 404 responses.
func (m *ServeMetrics) NotFound() int64 {
	return m.notFound.Load()
}

// BytesWritten returns the body bytes written across all responses.
func (m *ServeMetrics) BytesWritten() int64 {
	return m.bytesWritten.Load()
}

// Uptime returns the time since the metrics were created.
func (m *ServeMetrics) Uptime() time.Duration {
	return time.Since(m.StartTime)
}

// Snapshot reads every counter once. Fields are read individually, so
// a snapshot taken under load may mix neighbouring requests.
func (m *ServeMetrics) Snapshot() Snapshot {
	return Snapshot{
		Requests:     m.requests.Load(),
		BytesWritten: m.bytesWritten.Load(),
		NotFound:     m.notFound.Load(),
		Success:      m.byClass[2].Load(),
		Redirects:    m.byClass[3].Load(),
		ClientErrors: m.byClass[4].Load(),
		ServerErrors: m.byClass[5].Load(),
		Uptime:       m.Uptime(),
	}
}

// String returns a minimal single-line summary.
func (m *ServeMetrics) String() string {
	s := m.Snapshot()
	return fmt.Sprintf("📊 Served %d requests (%d not found, %s) in %v",
		s.Requests,
		s.NotFound,
		FormatBytes(s.BytesWritten),
		s.Uptime.Round(time.Second),
	)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
