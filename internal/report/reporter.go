package report

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Summary is the outcome of an injection run.
type Summary struct {
	RunID         string        `json:"run_id"`
	Algorithm     string        `json:"algorithm"`
	Keys          int           `json:"keys"`
	PayloadBytes  int           `json:"payload_bytes"`
	Requests      int           `json:"requests"`
	Failures      int           `json:"failures"`
	StatusCounts  map[int]int   `json:"status_counts"`
	BytesReceived int64         `json:"bytes_received"`
	MaxLatency    time.Duration `json:"max_latency"`
	AvgLatency    time.Duration `json:"avg_latency"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Reporter accumulates request outcomes from concurrent clients.
type Reporter struct {
	mu         sync.Mutex
	summary    Summary
	latencySum time.Duration
	started    time.Time
}

// NewReporter starts a run with a fresh run id.
func NewReporter(algorithm string, keys, payloadBytes int) *Reporter {
	return &Reporter{
		summary: Summary{
			RunID:        uuid.NewString(),
			Algorithm:    algorithm,
			Keys:         keys,
			PayloadBytes: payloadBytes,
			StatusCounts: make(map[int]int),
		},
		started: time.Now(),
	}
}

func (r *Reporter) RunID() string { return r.summary.RunID }

// Record adds one request. A request that failed before a status arrived
// counts as a failure only.
func (r *Reporter) Record(statusCode int, received int64, latency time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Requests++
	if statusCode != 0 {
		r.summary.StatusCounts[statusCode]++
	}
	if err != nil {
		r.summary.Failures++
	}
	r.summary.BytesReceived += received
	r.latencySum += latency
	if latency > r.summary.MaxLatency {
		r.summary.MaxLatency = latency
	}
}

// Summary returns a snapshot of the run so far.
func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.summary
	s.StatusCounts = make(map[int]int, len(r.summary.StatusCounts))
	for k, v := range r.summary.StatusCounts {
		s.StatusCounts[k] = v
	}
	if s.Requests > 0 {
		s.AvgLatency = r.latencySum / time.Duration(s.Requests)
	}
	s.Elapsed = time.Since(r.started)
	return s
}

// Print writes a human readable summary to w.
func Print(w io.Writer, s Summary, noColor bool) {
	heading := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	if noColor {
		heading.DisableColor()
		ok.DisableColor()
		bad.DisableColor()
	}

	heading.Fprintf(w, "Run %s\n", s.RunID)
	fmt.Fprintf(w, "  algorithm:      %s\n", s.Algorithm)
	fmt.Fprintf(w, "  keys/request:   %d (%d bytes)\n", s.Keys, s.PayloadBytes)
	fmt.Fprintf(w, "  requests:       %d\n", s.Requests)
	if s.Failures > 0 {
		bad.Fprintf(w, "  failures:       %d\n", s.Failures)
	} else {
		ok.Fprintf(w, "  failures:       0\n")
	}

	codes := make([]int, 0, len(s.StatusCounts))
	for code := range s.StatusCounts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		c := ok
		if code >= 400 {
			c = bad
		}
		c.Fprintf(w, "  status %d:     %d\n", code, s.StatusCounts[code])
	}

	fmt.Fprintf(w, "  bytes received: %d\n", s.BytesReceived)
	fmt.Fprintf(w, "  latency:        avg %s, max %s\n", s.AvgLatency.Round(time.Millisecond), s.MaxLatency.Round(time.Millisecond))
	fmt.Fprintf(w, "  elapsed:        %s\n", s.Elapsed.Round(time.Millisecond))
}
