package hazard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hazard.monitor/internal/timeutil"
)

func testEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		HistoryCapacity:  10,
		MinSamples:       3,
		MinApproachSpeed: 0.01,
		TTCMinSeconds:    0.1,
		TTCMaxSeconds:    60.0,
	}
}

// feed observes one distance per second for the given zone.
func feed(e *TTCEstimator, clock *timeutil.MockClock, zone Zone, distances ...float64) {
	for i, d := range distances {
		if i > 0 {
			clock.Advance(time.Second)
		}
		e.Observe(zone, d)
	}
}

func TestTTCMonotonicApproach(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	// 5.0m, 4.0m, 3.0m at one-second intervals: velocity -1.0 m/s.
	feed(e, clock, ZoneCenter, 5.0, 4.0, 3.0)

	ttc, ok := e.Estimate(ZoneCenter)
	require.True(t, ok, "TTC must be defined for a steady approach")
	assert.InDelta(t, 3.0, ttc, 1e-9)
}

func TestTTCUndefinedOnRecession(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	feed(e, clock, ZoneLeft, 3.0, 4.0, 5.0)

	_, ok := e.Estimate(ZoneLeft)
	assert.False(t, ok, "receding object must not produce a TTC")
}

func TestTTCUndefinedBelowMinimumHistory(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	feed(e, clock, ZoneRight, 5.0, 1.0) // steep approach, but only 2 samples

	_, ok := e.Estimate(ZoneRight)
	assert.False(t, ok, "TTC must be undefined with fewer than 3 samples regardless of trend")
}

func TestTTCUndefinedWithoutElapsedTime(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	// Three samples at the identical instant.
	e.Observe(ZoneCenter, 5.0)
	e.Observe(ZoneCenter, 4.0)
	e.Observe(ZoneCenter, 3.0)

	_, ok := e.Estimate(ZoneCenter)
	assert.False(t, ok, "TTC undefined when newest and oldest share a timestamp")
}

func TestTTCNoiseFilter(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	// Closing at 5mm/s: below the 0.01 m/s minimum approach speed.
	feed(e, clock, ZoneCenter, 3.000, 2.995, 2.990)

	_, ok := e.Estimate(ZoneCenter)
	assert.False(t, ok, "sub-threshold closing rates are noise, not approach")
}

func TestTTCOutOfBandDiscarded(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
	}{
		// 0.02m at 0.5 m/s closing: TTC 0.04s, below the 0.1s band edge.
		{"below band", []float64{1.02, 0.52, 0.02}},
		// 100m at 1 m/s closing: TTC 100s, above the 60s band edge.
		{"above band", []float64{102, 101, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := timeutil.NewMockClock(time.Unix(100, 0))
			e := NewTTCEstimator(testEstimatorConfig(), clock)
			feed(e, clock, ZoneCenter, tt.distances...)

			ttc, ok := e.Estimate(ZoneCenter)
			assert.False(t, ok, "out-of-band TTC %f must be discarded, not clamped", ttc)
		})
	}
}

func TestTTCZonesIndependent(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	// Interleave one approaching and one receding zone on the same clock.
	approach := []float64{5.0, 4.0, 3.0}
	recede := []float64{3.0, 4.0, 5.0}
	for i := range approach {
		if i > 0 {
			clock.Advance(time.Second)
		}
		e.Observe(ZoneLeft, approach[i])
		e.Observe(ZoneRight, recede[i])
	}

	_, leftOK := e.Estimate(ZoneLeft)
	_, rightOK := e.Estimate(ZoneRight)
	assert.True(t, leftOK, "left zone approach should estimate")
	assert.False(t, rightOK, "right zone recession must stay undefined")
}

func TestTTCWindowSlides(t *testing.T) {
	cfg := testEstimatorConfig()
	cfg.HistoryCapacity = 3
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(cfg, clock)

	// A long stationary stretch followed by an approach. With the window
	// holding only the last 3 samples, the stationary prefix is evicted
	// and the slope reflects the recent approach.
	feed(e, clock, ZoneCenter, 5.0, 5.0, 5.0, 5.0, 4.0, 3.0)

	ttc, ok := e.Estimate(ZoneCenter)
	require.True(t, ok)
	// Window is [5.0, 4.0, 3.0] over 2s: velocity -1.0 m/s, TTC 3.0s.
	assert.InDelta(t, 3.0, ttc, 1e-9)
}

func TestUpdateFillsResults(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	distances := [][ZoneCount]float64{
		{5.0, 6.0, 0.0},
		{4.0, 6.0, 0.0},
		{3.0, 6.0, 0.0},
	}
	var results [ZoneCount]ZoneResult
	for i, pass := range distances {
		if i > 0 {
			clock.Advance(time.Second)
		}
		results = [ZoneCount]ZoneResult{
			{Zone: ZoneLeft, Status: StatusSafe, MinDistanceM: pass[0]},
			{Zone: ZoneCenter, Status: StatusSafe, MinDistanceM: pass[1]},
			{Zone: ZoneRight, Status: StatusSafe, MinDistanceM: pass[2]},
		}
		e.Update(&results)
	}

	require.True(t, results[ZoneLeft].TTCValid)
	assert.InDelta(t, 3.0, results[ZoneLeft].TTCSeconds, 1e-9)
	assert.False(t, results[ZoneCenter].TTCValid, "stationary zone has no TTC")
	assert.False(t, results[ZoneRight].TTCValid, "empty zone has no TTC")
}

func TestEstimatorReset(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(100, 0))
	e := NewTTCEstimator(testEstimatorConfig(), clock)

	feed(e, clock, ZoneCenter, 5.0, 4.0, 3.0)
	e.Reset()

	_, ok := e.Estimate(ZoneCenter)
	assert.False(t, ok, "estimate defined after Reset")
	assert.Equal(t, 0, e.History(ZoneCenter).Size())
}
