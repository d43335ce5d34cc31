// Package monitor runs the analysis side of the hazard pipeline: a
// consumer loop that pulls the latest cached frame on a fixed tick, runs
// zone analysis and TTC estimation over it, hands qualifying zones to the
// alert dispatcher, and exposes the results over HTTP.
package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/alert"
	"github.com/banshee-data/hazard.monitor/internal/camstream"
	"github.com/banshee-data/hazard.monitor/internal/config"
	"github.com/banshee-data/hazard.monitor/internal/db"
	"github.com/banshee-data/hazard.monitor/internal/hazard"
	"github.com/banshee-data/hazard.monitor/internal/monitoring"
	"github.com/banshee-data/hazard.monitor/internal/timeutil"
)

// Renderer receives each analyzed frame together with its zone results.
// Display surfaces (overlay windows, recorders) implement this; the
// consumer calls it synchronously on its own goroutine.
type Renderer interface {
	Render(frame *camstream.DecodedFrame, results *[hazard.ZoneCount]hazard.ZoneResult)
}

// noopRenderer is the fallback when no display surface is attached.
type noopRenderer struct{}

func (noopRenderer) Render(*camstream.DecodedFrame, *[hazard.ZoneCount]hazard.ZoneResult) {}

// ZoneSnapshot is one retained analysis pass, kept for the status API and
// debug charts.
type ZoneSnapshot struct {
	Time    time.Time
	FrameID uint32
	Results [hazard.ZoneCount]hazard.ZoneResult
}

const (
	defaultSnapshotCapacity = 300
	statsLogInterval        = 10 * time.Second
)

// ConsumerConfig holds the dependencies and tuning for a Consumer.
type ConsumerConfig struct {
	Cache      *camstream.FrameCache
	Estimator  *hazard.TTCEstimator
	Dispatcher *alert.Dispatcher

	// Renderer receives analyzed frames; nil means no display.
	Renderer Renderer

	// Events, when non-nil, receives a row per warn-status zone.
	Events    *db.DB
	SessionID string

	// Stats, when non-nil, is fed frame/pass/warning counts.
	Stats *PipelineStats

	Analyzer         hazard.AnalyzerConfig
	Tick             time.Duration
	TTCWarnThreshold float64

	Clock timeutil.Clock
}

// ConsumerConfigFromTuning builds the tunable parts of a ConsumerConfig.
// Callers fill in the pipeline dependencies afterwards.
func ConsumerConfigFromTuning(cfg *config.TuningConfig) ConsumerConfig {
	return ConsumerConfig{
		Analyzer:         hazard.AnalyzerConfigFromTuning(cfg),
		Tick:             cfg.GetConsumerTick(),
		TTCWarnThreshold: cfg.GetTTCWarnThreshold(),
	}
}

// Consumer drives the analysis pipeline from the single-slot frame cache.
// It never blocks the receiver: a slow pass simply means intermediate
// frames are overwritten in the cache before they are seen.
type Consumer struct {
	config ConsumerConfig
	clock  timeutil.Clock

	mu          sync.Mutex
	lastFrameID uint32
	hasFrame    bool
	latest      *ZoneSnapshot
	snapshots   []ZoneSnapshot
	snapshotIdx int
}

// NewConsumer validates config and creates a Consumer. The returned
// consumer does nothing until Run is called.
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	if config.Cache == nil {
		return nil, fmt.Errorf("consumer requires a frame cache")
	}
	if config.Estimator == nil {
		return nil, fmt.Errorf("consumer requires a TTC estimator")
	}
	if config.Dispatcher == nil {
		return nil, fmt.Errorf("consumer requires an alert dispatcher")
	}
	if config.Renderer == nil {
		config.Renderer = noopRenderer{}
	}
	if config.Tick <= 0 {
		config.Tick = 30 * time.Millisecond
	}
	if config.TTCWarnThreshold <= 0 {
		config.TTCWarnThreshold = 4.0
	}
	if config.Clock == nil {
		config.Clock = timeutil.RealClock{}
	}
	return &Consumer{
		config:    config,
		clock:     config.Clock,
		snapshots: make([]ZoneSnapshot, 0, defaultSnapshotCapacity),
	}, nil
}

// Run executes the consumer loop until ctx is cancelled. It is intended
// to be launched on its own goroutine.
func (c *Consumer) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.config.Tick)
	defer ticker.Stop()

	statsTicker := c.clock.NewTicker(statsLogInterval)
	defer statsTicker.Stop()

	monitoring.Logf("Consumer started (tick %v, TTC threshold %.1fs)",
		c.config.Tick, c.config.TTCWarnThreshold)

	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("Consumer stopped: %v", ctx.Err())
			return
		case <-statsTicker.C():
			if c.config.Stats != nil {
				c.config.Stats.LogStats()
			}
		case <-ticker.C():
			c.Step()
		}
	}
}

// Step runs a single analysis pass over the latest cached frame. It is a
// no-op when the cache is empty or still holds the frame analyzed last
// pass. Exposed for tests and for callers that drive their own loop.
func (c *Consumer) Step() {
	frame := c.config.Cache.Latest()
	if frame == nil {
		return
	}

	c.mu.Lock()
	seen := c.hasFrame && frame.FrameID == c.lastFrameID
	c.lastFrameID = frame.FrameID
	c.hasFrame = true
	c.mu.Unlock()
	if seen {
		return
	}

	if c.config.Stats != nil {
		c.config.Stats.AddFrame()
	}

	results := hazard.AnalyzeZones(frame, c.config.Analyzer)
	c.config.Estimator.Update(&results)

	if c.config.Stats != nil {
		c.config.Stats.AddPass()
	}

	hazards := alert.Evaluate(results, c.config.TTCWarnThreshold)
	dispatched := false
	if len(hazards) > 0 {
		dispatched = c.config.Dispatcher.Dispatch(hazards)
		if dispatched && c.config.Stats != nil {
			c.config.Stats.AddWarning()
		}
	}

	c.recordSnapshot(frame.FrameID, results)
	c.config.Renderer.Render(frame, &results)

	if c.config.Events != nil {
		c.persistWarnings(results, dispatched)
	}
}

func (c *Consumer) recordSnapshot(frameID uint32, results [hazard.ZoneCount]hazard.ZoneResult) {
	snap := ZoneSnapshot{
		Time:    c.clock.Now(),
		FrameID: frameID,
		Results: results,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = &snap
	if len(c.snapshots) < defaultSnapshotCapacity {
		c.snapshots = append(c.snapshots, snap)
	} else {
		c.snapshots[c.snapshotIdx] = snap
		c.snapshotIdx = (c.snapshotIdx + 1) % defaultSnapshotCapacity
	}
}

// persistWarnings writes one event row per warn-status zone. Storage
// failures are logged, never propagated; the alert path must not depend
// on the event store.
func (c *Consumer) persistWarnings(results [hazard.ZoneCount]hazard.ZoneResult, dispatched bool) {
	for _, r := range results {
		if r.Status != hazard.StatusWarn {
			continue
		}
		event := db.HazardEvent{
			SessionID:    c.config.SessionID,
			Zone:         r.Zone.String(),
			Status:       string(r.Status),
			MinDistanceM: r.MinDistanceM,
			Dispatched:   dispatched,
			Timestamp:    c.clock.Now(),
		}
		if r.TTCValid {
			event.TTCSeconds = sql.NullFloat64{Float64: r.TTCSeconds, Valid: true}
		}
		if _, err := c.config.Events.RecordHazardEvent(event); err != nil {
			monitoring.Logf("Failed to record hazard event for zone %s: %v", r.Zone, err)
		}
	}
}

// Latest returns the most recent analysis snapshot, or nil before the
// first pass.
func (c *Consumer) Latest() *ZoneSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil
	}
	snap := *c.latest
	return &snap
}

// RecentSnapshots returns retained snapshots in chronological order.
func (c *Consumer) RecentSnapshots() []ZoneSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ZoneSnapshot, 0, len(c.snapshots))
	if len(c.snapshots) < defaultSnapshotCapacity {
		out = append(out, c.snapshots...)
		return out
	}
	out = append(out, c.snapshots[c.snapshotIdx:]...)
	out = append(out, c.snapshots[:c.snapshotIdx]...)
	return out
}
