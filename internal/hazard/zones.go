package hazard

import (
	"fmt"

	"github.com/banshee-data/hazard.monitor/internal/camstream"
	"github.com/banshee-data/hazard.monitor/internal/config"
	"github.com/banshee-data/hazard.monitor/internal/units"
)

// Zone identifies one of the three fixed horizontal regions of the depth
// field: left 30%, center 40%, right 30% of the frame width.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneCenter
	ZoneRight

	// ZoneCount is the number of zones; usable as an array length.
	ZoneCount = 3
)

func (z Zone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneCenter:
		return "center"
	case ZoneRight:
		return "right"
	default:
		return fmt.Sprintf("Zone(%d)", int(z))
	}
}

// ZoneStatus classifies a zone's distance risk.
type ZoneStatus string

const (
	StatusSafe ZoneStatus = "safe" // nothing below the zone's distance threshold
	StatusWarn ZoneStatus = "warn" // a valid reading below the zone's distance threshold
)

// ZoneResult is the outcome of one analysis pass for one zone. TTC fields
// are filled in by the estimator; TTCValid distinguishes "no collision
// risk detected" from "cannot yet tell".
type ZoneResult struct {
	Zone         Zone
	Status       ZoneStatus
	MinDistanceM float64

	TTCSeconds float64
	TTCValid   bool
}

// AnalyzerConfig holds the zone classification parameters.
type AnalyzerConfig struct {
	SideThresholdRaw   uint16 // warn below this raw depth in left/right zones
	CenterThresholdRaw uint16 // warn below this raw depth in the center zone
	ValidDepthMin      uint16 // readings at or below are sensor-invalid
	ValidDepthMax      uint16 // readings at or above are saturated/error
}

// DefaultAnalyzerConfig returns analyzer configuration loaded from the
// canonical tuning defaults file. Panics if the file cannot be found;
// intended for tests and binaries that have already validated config
// availability.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfigFromTuning(config.MustLoadDefaultConfig())
}

// AnalyzerConfigFromTuning builds an AnalyzerConfig from a loaded
// TuningConfig. Use this in production code where the TuningConfig is
// already loaded.
func AnalyzerConfigFromTuning(cfg *config.TuningConfig) AnalyzerConfig {
	return AnalyzerConfig{
		SideThresholdRaw:   uint16(cfg.GetSideThresholdRaw()),
		CenterThresholdRaw: uint16(cfg.GetCenterThresholdRaw()),
		ValidDepthMin:      uint16(cfg.GetValidDepthMin()),
		ValidDepthMax:      uint16(cfg.GetValidDepthMax()),
	}
}

// ZoneBounds returns the half-open column ranges [start, end) of the three
// zones for a frame of the given width, using truncating boundaries at
// 0.3·W and 0.7·W. The ranges are contiguous and cover exactly [0, W).
func ZoneBounds(width int) (bounds [ZoneCount][2]int) {
	leftEnd := int(float64(width) * 0.3)
	centerEnd := int(float64(width) * 0.7)

	bounds[ZoneLeft] = [2]int{0, leftEnd}
	bounds[ZoneCenter] = [2]int{leftEnd, centerEnd}
	bounds[ZoneRight] = [2]int{centerEnd, width}
	return bounds
}

// AnalyzeZones classifies one depth frame. Absent depth data yields three
// safe zones with zero distance: no data is deliberately not treated as
// danger, matching the sensor's behaviour when it has nothing in range.
func AnalyzeZones(frame *camstream.DecodedFrame, cfg AnalyzerConfig) [ZoneCount]ZoneResult {
	results := [ZoneCount]ZoneResult{
		{Zone: ZoneLeft, Status: StatusSafe},
		{Zone: ZoneCenter, Status: StatusSafe},
		{Zone: ZoneRight, Status: StatusSafe},
	}
	if frame == nil || !frame.HasDepth() {
		return results
	}

	width, height := frame.DepthWidth, frame.DepthHeight
	bounds := ZoneBounds(width)

	for zi := range results {
		start, end := bounds[zi][0], bounds[zi][1]

		// Minimum valid raw reading across the zone's columns, all rows.
		var rawMin uint16
		found := false
		for row := 0; row < height; row++ {
			rowStart := row * width
			for col := start; col < end; col++ {
				raw := frame.Depth[rowStart+col]
				if raw <= cfg.ValidDepthMin || raw >= cfg.ValidDepthMax {
					continue
				}
				if !found || raw < rawMin {
					rawMin = raw
					found = true
				}
			}
		}

		if !found {
			continue // stays safe with zero distance
		}

		threshold := cfg.SideThresholdRaw
		if Zone(zi) == ZoneCenter {
			threshold = cfg.CenterThresholdRaw
		}

		results[zi].MinDistanceM = units.RawDepthToMeters(rawMin)
		if rawMin < threshold {
			results[zi].Status = StatusWarn
		}
	}
	return results
}
