// Package perf keeps a bounded rolling window of analysis timings, used only
// to estimate how long the next analysis will take. It is advisory: losing
// or duplicating a sample never affects correctness.
package perf

import (
	"fmt"
	"sync"
	"time"
)

// Sample is one completed analysis measurement.
type Sample struct {
	ContentLength int       `json:"content_length"`
	Duration      float64   `json:"actual_seconds"`
	RecordedAt    time.Time `json:"timestamp"`
}

// Estimate is a pre-analysis duration guess shown to the client.
type Estimate struct {
	EstimatedSeconds int    `json:"estimated_seconds"`
	Complexity       string `json:"complexity"`
	ContentLength    int    `json:"content_length"`
	Message          string `json:"message"`
}

// Stats summarizes the current window for the metrics endpoint.
type Stats struct {
	TotalAnalyses int      `json:"total_analyses"`
	AverageTime   float64  `json:"average_time"`
	MinTime       float64  `json:"min_time"`
	MaxTime       float64  `json:"max_time"`
	Recent        []Sample `json:"recent,omitempty"`
}

// History is a fixed-capacity ring of recent samples plus a smoothed
// per-model base time. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	samples  []Sample
	next     int
	filled   bool
	capacity int
	baseAvg  float64
}

// defaultBase seconds for a model we have no samples for yet.
const defaultBase = 15.0

// NewHistory returns a History holding at most capacity samples.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 50
	}
	return &History{
		samples:  make([]Sample, capacity),
		capacity: capacity,
		baseAvg:  defaultBase,
	}
}

// Record adds a sample and folds it into the smoothed base time
// (70% old, 30% new).
func (h *History) Record(contentLength int, duration time.Duration) {
	secs := duration.Seconds()
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.next] = Sample{
		ContentLength: contentLength,
		Duration:      secs,
		RecordedAt:    time.Now(),
	}
	h.next = (h.next + 1) % h.capacity
	if h.next == 0 {
		h.filled = true
	}
	h.baseAvg = h.baseAvg*0.7 + secs*0.3
}

// Estimate guesses the analysis duration for a document of the given length.
// Thresholds calibrated against observed model latencies.
func (h *History) Estimate(contentLength int) Estimate {
	h.mu.Lock()
	base := h.baseAvg
	h.mu.Unlock()

	var mult float64
	var complexity string
	switch {
	case contentLength < 1000:
		mult, complexity = 0.6, "Simple"
	case contentLength < 3000:
		mult, complexity = 0.9, "Medium"
	case contentLength < 8000:
		mult, complexity = 1.2, "Complex"
	case contentLength < 15000:
		mult, complexity = 1.6, "Very Complex"
	default:
		mult, complexity = 2.0, "Extremely Complex"
	}

	// 20% buffer covers the rest of the pipeline around the model call.
	secs := int(base * mult * 1.2)
	if secs < 1 {
		secs = 1
	}
	return Estimate{
		EstimatedSeconds: secs,
		Complexity:       complexity,
		ContentLength:    contentLength,
		Message:          fmt.Sprintf("Estimated time: %d seconds (%s contract)", secs, complexity),
	}
}

// Snapshot returns aggregate stats over the current window.
func (h *History) Snapshot() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.filled {
		n = h.capacity
	}
	if n == 0 {
		return Stats{}
	}

	st := Stats{TotalAnalyses: n, MinTime: h.samples[0].Duration}
	var sum float64
	for i := 0; i < n; i++ {
		d := h.samples[i].Duration
		sum += d
		if d < st.MinTime {
			st.MinTime = d
		}
		if d > st.MaxTime {
			st.MaxTime = d
		}
	}
	st.AverageTime = sum / float64(n)

	// Up to five most recent samples, newest last.
	recent := 5
	if recent > n {
		recent = n
	}
	for i := n - recent; i < n; i++ {
		idx := i
		if h.filled {
			idx = (h.next + i) % h.capacity
		}
		st.Recent = append(st.Recent, h.samples[idx])
	}
	return st
}
