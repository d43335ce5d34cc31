package monitor

import (
	"log"
	"sync"
	"time"
)

// StatsSnapshot represents a snapshot of current pipeline statistics.
type StatsSnapshot struct {
	FramesPerSec float64
	PassesPerSec float64
	WarningCount int64
	Timestamp    time.Time
}

// PipelineStats tracks frame and analysis rates with thread-safe operations.
// The receiver goroutine feeds frame counts, the consumer feeds pass and
// warning counts, and the web server reads snapshots.
type PipelineStats struct {
	mu             sync.Mutex
	frameCount     int64
	passCount      int64
	warningCount   int64
	totalWarnings  int64
	lastReset      time.Time
	startTime      time.Time
	latestSnapshot *StatsSnapshot
}

// NewPipelineStats creates a new PipelineStats instance.
func NewPipelineStats() *PipelineStats {
	now := time.Now()
	return &PipelineStats{
		lastReset: now,
		startTime: now,
	}
}

// AddFrame increments the received-frame count.
func (ps *PipelineStats) AddFrame() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.frameCount++
}

// AddPass increments the analysis-pass count.
func (ps *PipelineStats) AddPass() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.passCount++
}

// AddWarning increments the dispatched-warning count.
func (ps *PipelineStats) AddWarning() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.warningCount++
	ps.totalWarnings++
}

// GetAndReset returns current interval counters and resets them.
func (ps *PipelineStats) GetAndReset() (frames, passes, warnings int64, duration time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := time.Now()
	duration = now.Sub(ps.lastReset)
	frames = ps.frameCount
	passes = ps.passCount
	warnings = ps.warningCount

	ps.frameCount = 0
	ps.passCount = 0
	ps.warningCount = 0
	ps.lastReset = now
	return
}

// LogStats logs formatted statistics and stores a snapshot for the web
// interface.
func (ps *PipelineStats) LogStats() {
	frames, passes, warnings, duration := ps.GetAndReset()
	if frames == 0 && passes == 0 {
		return
	}

	framesPerSec := float64(frames) / duration.Seconds()
	passesPerSec := float64(passes) / duration.Seconds()

	ps.mu.Lock()
	ps.latestSnapshot = &StatsSnapshot{
		FramesPerSec: framesPerSec,
		PassesPerSec: passesPerSec,
		WarningCount: warnings,
		Timestamp:    time.Now(),
	}
	ps.mu.Unlock()

	if warnings > 0 {
		log.Printf("Hazard stats (/sec): %.1f frames, %.1f passes, %d warnings dispatched",
			framesPerSec, passesPerSec, warnings)
	} else {
		log.Printf("Hazard stats (/sec): %.1f frames, %.1f passes", framesPerSec, passesPerSec)
	}
}

// GetUptime returns the time since the stats were created.
func (ps *PipelineStats) GetUptime() time.Duration {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return time.Since(ps.startTime)
}

// TotalWarnings returns the all-time dispatched-warning count.
func (ps *PipelineStats) TotalWarnings() int64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.totalWarnings
}

// GetLatestSnapshot returns the most recent stats snapshot, or nil before
// the first LogStats.
func (ps *PipelineStats) GetLatestSnapshot() *StatsSnapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.latestSnapshot == nil {
		return nil
	}
	snapshot := *ps.latestSnapshot
	return &snapshot
}
