package perf

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateBeforeAnySamples(t *testing.T) {
	h := NewHistory(10)

	est := h.Estimate(500)
	assert.Equal(t, "Simple", est.Complexity)
	assert.Equal(t, 10, est.EstimatedSeconds) // 15.0 * 0.6 * 1.2
	assert.Equal(t, 500, est.ContentLength)
	assert.NotEmpty(t, est.Message)
}

func TestEstimateComplexityTiers(t *testing.T) {
	h := NewHistory(10)

	tests := []struct {
		length int
		want   string
	}{
		{500, "Simple"},
		{2000, "Medium"},
		{5000, "Complex"},
		{10000, "Very Complex"},
		{20000, "Extremely Complex"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.Estimate(tt.length).Complexity, "length %d", tt.length)
	}
}

func TestRecordSmoothsBase(t *testing.T) {
	h := NewHistory(10)

	// Fast samples should drag the estimate down from the default base.
	before := h.Estimate(2000).EstimatedSeconds
	for i := 0; i < 5; i++ {
		h.Record(2000, 2*time.Second)
	}
	after := h.Estimate(2000).EstimatedSeconds
	assert.Less(t, after, before)
	assert.GreaterOrEqual(t, after, 1)
}

func TestSnapshot(t *testing.T) {
	h := NewHistory(3)
	assert.Equal(t, Stats{}, h.Snapshot())

	h.Record(1000, 10*time.Second)
	h.Record(2000, 20*time.Second)

	st := h.Snapshot()
	assert.Equal(t, 2, st.TotalAnalyses)
	assert.InDelta(t, 15.0, st.AverageTime, 1e-9)
	assert.InDelta(t, 10.0, st.MinTime, 1e-9)
	assert.InDelta(t, 20.0, st.MaxTime, 1e-9)
	require.NotEmpty(t, st.Recent)
}

func TestRingOverwritesOldest(t *testing.T) {
	h := NewHistory(2)
	h.Record(1000, 10*time.Second)
	h.Record(1000, 10*time.Second)
	h.Record(1000, 30*time.Second)

	st := h.Snapshot()
	assert.Equal(t, 2, st.TotalAnalyses)
	assert.InDelta(t, 20.0, st.AverageTime, 1e-9)
}

func TestConcurrentUse(t *testing.T) {
	h := NewHistory(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Record(3000, 5*time.Second)
				h.Estimate(3000)
				h.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Snapshot().TotalAnalyses)
}
