package alert

import (
	"context"
	"strings"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/config"
	"github.com/banshee-data/hazard.monitor/internal/hazard"
	"github.com/banshee-data/hazard.monitor/internal/monitoring"
	"github.com/banshee-data/hazard.monitor/internal/timeutil"
)

// PriorityOrder is the fixed playback order for qualifying zones. Warnings
// are filtered from this ordering, never sorted by urgency.
var PriorityOrder = [hazard.ZoneCount]hazard.Zone{hazard.ZoneRight, hazard.ZoneLeft, hazard.ZoneCenter}

// Evaluate returns the zones whose TTC is defined and at or below the
// threshold, in fixed priority order. TTC-based warning is independent of
// the zone's safe/warn distance status; it is the earlier-triggering
// signal.
func Evaluate(results [hazard.ZoneCount]hazard.ZoneResult, thresholdSeconds float64) []hazard.Zone {
	var qualifying []hazard.Zone
	for _, zone := range PriorityOrder {
		r := results[zone]
		if r.TTCValid && r.TTCSeconds <= thresholdSeconds {
			qualifying = append(qualifying, zone)
		}
	}
	return qualifying
}

// DispatcherConfig contains configuration options for the dispatcher.
type DispatcherConfig struct {
	Assets *AssetLibrary
	Player Player

	// Cooldown suppresses repeat dispatches of the identical warning set.
	// Zero selects 2s.
	Cooldown time.Duration

	// InterClipGap is the pause between consecutive clips of one warning
	// set. Zero selects 200ms.
	InterClipGap time.Duration

	// Clock defaults to the real clock.
	Clock timeutil.Clock

	// QueueDepth bounds pending warning sets. Zero selects 4; when the
	// queue is full new sets are dropped, not queued behind stale audio.
	QueueDepth int
}

// DispatcherConfigFromTuning fills the duration fields from a loaded
// TuningConfig; assets, player and clock are still the caller's to set.
func DispatcherConfigFromTuning(cfg *config.TuningConfig) DispatcherConfig {
	return DispatcherConfig{
		Cooldown:     cfg.GetAlertCooldown(),
		InterClipGap: cfg.GetInterClipGap(),
	}
}

// Dispatcher sequences spoken warnings. All playback goes through one
// worker goroutine: within a warning set clips play sequentially with a
// fixed gap, and separate dispatches are serialized instead of spawning a
// thread each, so two bursts can never talk over each other.
type Dispatcher struct {
	assets       *AssetLibrary
	player       Player
	cooldown     time.Duration
	interClipGap time.Duration
	clock        timeutil.Clock

	// lastDispatch maps a canonical warning-set key to the time that
	// combination last went out. Touched only by the Dispatch caller.
	lastDispatch map[string]time.Time

	queue  chan []hazard.Zone
	done   chan struct{}
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher and starts its playback worker.
// Call Close to drain and stop the worker.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	player := config.Player
	if player == nil {
		player = noopPlayer{}
	}
	clock := config.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	cooldown := config.Cooldown
	if cooldown == 0 {
		cooldown = 2 * time.Second
	}
	gap := config.InterClipGap
	if gap == 0 {
		gap = 200 * time.Millisecond
	}
	depth := config.QueueDepth
	if depth <= 0 {
		depth = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		assets:       config.Assets,
		player:       player,
		cooldown:     cooldown,
		interClipGap: gap,
		clock:        clock,
		lastDispatch: make(map[string]time.Time),
		queue:        make(chan []hazard.Zone, depth),
		done:         make(chan struct{}),
		cancel:       cancel,
	}
	go d.playbackWorker(ctx)
	return d
}

// Dispatch schedules spoken playback for the qualifying zones. It returns
// true if the set was accepted, false if it was suppressed by cooldown,
// empty, or shed because the queue is full. Dispatch never blocks on
// playback; it is safe to call from the analysis path every pass.
func (d *Dispatcher) Dispatch(labels []hazard.Zone) bool {
	if len(labels) == 0 {
		return false
	}

	key := warningKey(labels)
	now := d.clock.Now()
	if last, seen := d.lastDispatch[key]; seen && now.Sub(last) < d.cooldown {
		// Identical set inside the cooldown window: suppressed entirely,
		// and the recorded trigger time is left untouched.
		return false
	}

	select {
	case d.queue <- append([]hazard.Zone(nil), labels...):
		d.lastDispatch[key] = now
		return true
	default:
		monitoring.Logf("alert: playback queue full, shedding warning %s", key)
		return false
	}
}

// Close stops accepting work and waits for the worker to finish the clip
// in progress.
func (d *Dispatcher) Close() {
	d.cancel()
	<-d.done
}

func (d *Dispatcher) playbackWorker(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case labels := <-d.queue:
			d.playAll(ctx, labels)
		}
	}
}

// playAll plays each zone's clip to completion, strictly sequentially,
// with the configured gap between clips. Playback failures are logged and
// never propagate.
func (d *Dispatcher) playAll(ctx context.Context, labels []hazard.Zone) {
	for i, zone := range labels {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			d.clock.Sleep(d.interClipGap)
		}

		path, ok := d.assetPath(zone)
		if !ok {
			monitoring.Logf("alert: no audio asset for %v zone", zone)
			continue
		}
		if err := d.player.Play(path); err != nil {
			monitoring.Logf("alert: playback failed for %v zone: %v", zone, err)
		}
	}
}

func (d *Dispatcher) assetPath(zone hazard.Zone) (string, bool) {
	if d.assets == nil {
		return "", false
	}
	return d.assets.Path(zone)
}

// warningKey canonicalizes a label set: sorted, deduplicated, order
// independent. {left,right} and {right,left} share one cooldown entry
// even though playback order is fixed.
func warningKey(labels []hazard.Zone) string {
	var present [hazard.ZoneCount]bool
	for _, z := range labels {
		if z >= 0 && int(z) < hazard.ZoneCount {
			present[z] = true
		}
	}

	var parts []string
	for z := hazard.Zone(0); z < hazard.ZoneCount; z++ {
		if present[z] {
			parts = append(parts, z.String())
		}
	}
	return strings.Join(parts, "+")
}
