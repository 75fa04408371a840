// Package telemetry is minimal, low-overhead request tracing for local
// usage. By default only slow requests are logged; full span traces are
// recorded for a small sample (or when forced via X-Debug-Telemetry).
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

type ctxKeyType struct{}

var (
	writerOnce    sync.Once
	writerCh      chan []byte
	requestCtr    uint64
	spanCtr       uint64
	sampleRate    = 0.001
	slowThreshold = 200 * time.Millisecond
	outDir        = "./logs"
)

// Span is a simple span relative to request start (milliseconds).
type Span struct {
	ID       string `json:"id"`
	Op       string `json:"op"`
	StartMs  int64  `json:"start_ms"`
	Duration int64  `json:"duration_ms"`
}

type trace struct {
	requestID string
	op        string
	startTime time.Time
	mu        sync.Mutex
	spans     []Span
}

// SetOutputDir points the background writer at dir (default ./logs).
// Must be called before the first request.
func SetOutputDir(dir string) {
	if dir != "" {
		outDir = dir
	}
}

// SetSampleRate sets the approximate sampling rate for full traces (0..1).
func SetSampleRate(r float64) {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	sampleRate = r
}

// SetSlowThreshold sets the duration above which non-sampled requests get
// a lightweight log line.
func SetSlowThreshold(d time.Duration) {
	slowThreshold = d
}

// initWriter lazily starts a background writer appending to telemetry.log.
func initWriter() {
	writerCh = make(chan []byte, 1024)
	go func() {
		_ = os.MkdirAll(outDir, 0o755)
		f, err := os.OpenFile(filepath.Join(outDir, "telemetry.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		for b := range writerCh {
			_, _ = f.Write(b)
		}
	}()
}

func emit(b []byte) {
	writerOnce.Do(initWriter)
	select {
	case writerCh <- b:
	default:
		// drop if channel full to avoid blocking request paths
	}
}

// Middleware wraps the handler and records request timing plus sampled
// span traces.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := genRequestID()

		var t *trace
		if shouldSample(r) {
			t = &trace{requestID: reqID, op: r.Method + " " + r.URL.Path, startTime: start}
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyType{}, t))
		}

		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)

		dur := time.Since(start)
		if t != nil {
			t.mu.Lock()
			var b []byte
			b = append(b, fmt.Sprintf("REQ %s op=%s duration_ms=%d status=%d\n",
				t.requestID, t.op, dur.Milliseconds(), srw.status)...)
			for _, sp := range t.spans {
				b = append(b, fmt.Sprintf("  - %s id=%s start_ms=%d duration_ms=%d\n",
					sp.Op, sp.ID, sp.StartMs, sp.Duration)...)
			}
			t.mu.Unlock()
			emit(b)
			return
		}
		if dur > slowThreshold {
			emit([]byte(fmt.Sprintf("SLOW %s op=%s %s duration_ms=%d status=%d\n",
				reqID, r.Method, r.URL.Path, dur.Milliseconds(), srw.status)))
		}
	})
}

// StartSpan returns an end function. When the request is not sampled the
// returned func is a no-op.
func StartSpan(ctx context.Context, name string) func() {
	t, ok := ctx.Value(ctxKeyType{}).(*trace)
	if !ok {
		return func() {}
	}
	startRel := time.Since(t.startTime).Milliseconds()
	id := genSpanID()

	t.mu.Lock()
	t.spans = append(t.spans, Span{ID: id, Op: name, StartMs: startRel})
	idx := len(t.spans) - 1
	t.mu.Unlock()

	return func() {
		endRel := time.Since(t.startTime).Milliseconds()
		t.mu.Lock()
		if idx < len(t.spans) {
			t.spans[idx].Duration = endRel - t.spans[idx].StartMs
		}
		t.mu.Unlock()
	}
}

// shouldSample forces sampling via X-Debug-Telemetry: 1, otherwise samples
// roughly 1-in-N requests.
func shouldSample(r *http.Request) bool {
	if r.Header.Get("X-Debug-Telemetry") == "1" {
		return true
	}
	if sampleRate <= 0 {
		return false
	}
	denom := int64(1 / sampleRate)
	if denom <= 1 {
		return true
	}
	n := int64(atomic.AddUint64(&requestCtr, 1))
	return n%denom == 0
}

func genRequestID() string {
	n := atomic.AddUint64(&requestCtr, 1)
	return fmt.Sprintf("r-%s-%d", time.Now().Format("20060102T150405"), n)
}

func genSpanID() string {
	return fmt.Sprintf("s-%d", atomic.AddUint64(&spanCtr, 1))
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
