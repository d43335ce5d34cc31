package hazard

import (
	"github.com/banshee-data/hazard.monitor/internal/config"
	"github.com/banshee-data/hazard.monitor/internal/timeutil"
)

// EstimatorConfig holds the TTC estimation parameters.
type EstimatorConfig struct {
	HistoryCapacity  int     // samples retained per zone
	MinSamples       int     // samples required before estimating
	MinApproachSpeed float64 // m/s closing rate below which the trend is treated as noise
	TTCMinSeconds    float64 // estimates below this band edge are unreliable
	TTCMaxSeconds    float64 // estimates above this band edge are irrelevant
}

// DefaultEstimatorConfig returns estimator configuration loaded from the
// canonical tuning defaults file. Panics if the file cannot be found;
// intended for tests.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfigFromTuning(config.MustLoadDefaultConfig())
}

// EstimatorConfigFromTuning builds an EstimatorConfig from a loaded
// TuningConfig.
func EstimatorConfigFromTuning(cfg *config.TuningConfig) EstimatorConfig {
	return EstimatorConfig{
		HistoryCapacity:  cfg.GetHistoryCapacity(),
		MinSamples:       cfg.GetMinHistorySamples(),
		MinApproachSpeed: cfg.GetMinApproachSpeed(),
		TTCMinSeconds:    cfg.GetTTCMinSeconds(),
		TTCMaxSeconds:    cfg.GetTTCMaxSeconds(),
	}
}

// TTCEstimator derives time-to-collision per zone from the trend of
// minimum-distance samples. It owns one ZoneHistory per zone and is an
// explicitly constructed instance, not process-wide state: it belongs to
// whichever consumer loop feeds it.
type TTCEstimator struct {
	cfg       EstimatorConfig
	clock     timeutil.Clock
	histories [ZoneCount]*ZoneHistory
}

// NewTTCEstimator creates an estimator. A nil clock selects the real one.
func NewTTCEstimator(cfg EstimatorConfig, clock timeutil.Clock) *TTCEstimator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	e := &TTCEstimator{cfg: cfg, clock: clock}
	for i := range e.histories {
		e.histories[i] = NewZoneHistory(cfg.HistoryCapacity)
	}
	return e
}

// Observe appends the zone's current minimum distance at the current
// wall-clock time. Called once per zone per analysis pass.
func (e *TTCEstimator) Observe(zone Zone, distanceM float64) {
	e.histories[zone].Add(DistanceSample{DistanceM: distanceM, Time: e.clock.Now()})
}

// Estimate returns the zone's time-to-collision in seconds. The second
// return is false whenever TTC is undefined: insufficient history, a
// non-advancing clock, a non-approaching trend, or an estimate outside
// the accepted band. Undefined is an expected steady state, not an error.
func (e *TTCEstimator) Estimate(zone Zone) (float64, bool) {
	h := e.histories[zone]
	if h.Size() < e.cfg.MinSamples {
		return 0, false
	}

	oldest, _ := h.Oldest()
	newest, _ := h.Newest()

	dt := newest.Time.Sub(oldest.Time).Seconds()
	if dt <= 0 {
		return 0, false
	}

	// Two-point slope across the whole window. Negative means approaching.
	velocity := (newest.DistanceM - oldest.DistanceM) / dt
	if velocity >= -e.cfg.MinApproachSpeed {
		return 0, false
	}

	ttc := newest.DistanceM / -velocity
	if ttc < e.cfg.TTCMinSeconds || ttc > e.cfg.TTCMaxSeconds {
		// Out-of-band estimates are discarded, not clamped.
		return 0, false
	}
	return ttc, true
}

// Update runs one full estimator pass: it records each zone's current
// minimum distance and fills the TTC fields of the results in place.
func (e *TTCEstimator) Update(results *[ZoneCount]ZoneResult) {
	for i := range results {
		e.Observe(Zone(i), results[i].MinDistanceM)
		results[i].TTCSeconds, results[i].TTCValid = e.Estimate(Zone(i))
	}
}

// History exposes a zone's sample window, for status reporting.
func (e *TTCEstimator) History(zone Zone) *ZoneHistory {
	return e.histories[zone]
}

// Reset clears all zone histories, for use after a stream reconnect.
func (e *TTCEstimator) Reset() {
	for _, h := range e.histories {
		h.Clear()
	}
}
