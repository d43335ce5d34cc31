package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// All fields are pointers so that a partial JSON document only overrides
// the values it names; the Get* accessors supply defaults for the rest.
type TuningConfig struct {
	// Zone analyzer params
	SideThresholdRaw   *int `json:"side_threshold_raw,omitempty"`   // warn below this raw depth, left/right zones
	CenterThresholdRaw *int `json:"center_threshold_raw,omitempty"` // warn below this raw depth, center zone
	ValidDepthMin      *int `json:"valid_depth_min,omitempty"`      // raw readings must be strictly above this
	ValidDepthMax      *int `json:"valid_depth_max,omitempty"`      // raw readings must be strictly below this

	// TTC estimator params
	HistoryCapacity   *int     `json:"history_capacity,omitempty"`     // samples retained per zone
	MinHistorySamples *int     `json:"min_history_samples,omitempty"`  // samples required before estimating
	MinApproachSpeed  *float64 `json:"min_approach_speed,omitempty"`   // m/s; slower closing rates are noise
	TTCMinSeconds     *float64 `json:"ttc_min_seconds,omitempty"`      // estimates below this are unreliable
	TTCMaxSeconds     *float64 `json:"ttc_max_seconds,omitempty"`      // estimates above this are irrelevant
	TTCWarnThreshold  *float64 `json:"ttc_warn_threshold,omitempty"`   // seconds; at or below triggers a warning
	ReceiverTimeout   *string  `json:"receiver_timeout,omitempty"`     // read deadline, duration string like "100ms"
	ConsumerTick      *string  `json:"consumer_tick,omitempty"`        // analysis pacing, duration string like "30ms"
	AlertCooldown     *string  `json:"alert_cooldown,omitempty"`       // duration string like "2s"
	InterClipGap      *string  `json:"inter_clip_gap,omitempty"`       // pause between spoken clips, like "200ms"
	EventFlush        *bool    `json:"event_flush,omitempty"`          // record warn events to the store
	MaxFrameBytes     *int     `json:"max_frame_bytes,omitempty"`      // per-channel payload size sanity limit
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ValidDepthMin != nil && c.ValidDepthMax != nil {
		if *c.ValidDepthMin >= *c.ValidDepthMax {
			return fmt.Errorf("valid_depth_min %d must be below valid_depth_max %d", *c.ValidDepthMin, *c.ValidDepthMax)
		}
	}

	if c.HistoryCapacity != nil && *c.HistoryCapacity < 1 {
		return fmt.Errorf("history_capacity must be positive, got %d", *c.HistoryCapacity)
	}

	if c.MinHistorySamples != nil && *c.MinHistorySamples < 2 {
		return fmt.Errorf("min_history_samples must be at least 2, got %d", *c.MinHistorySamples)
	}

	if c.MinApproachSpeed != nil && *c.MinApproachSpeed < 0 {
		return fmt.Errorf("min_approach_speed must be non-negative, got %f", *c.MinApproachSpeed)
	}

	if c.TTCMinSeconds != nil && c.TTCMaxSeconds != nil {
		if *c.TTCMinSeconds >= *c.TTCMaxSeconds {
			return fmt.Errorf("ttc_min_seconds %f must be below ttc_max_seconds %f", *c.TTCMinSeconds, *c.TTCMaxSeconds)
		}
	}

	if c.TTCWarnThreshold != nil && *c.TTCWarnThreshold <= 0 {
		return fmt.Errorf("ttc_warn_threshold must be positive, got %f", *c.TTCWarnThreshold)
	}

	// Validate duration strings can be parsed if set
	for name, v := range map[string]*string{
		"receiver_timeout": c.ReceiverTimeout,
		"consumer_tick":    c.ConsumerTick,
		"alert_cooldown":   c.AlertCooldown,
		"inter_clip_gap":   c.InterClipGap,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}

	if c.MaxFrameBytes != nil && *c.MaxFrameBytes < 1 {
		return fmt.Errorf("max_frame_bytes must be positive, got %d", *c.MaxFrameBytes)
	}

	return nil
}

// GetSideThresholdRaw returns the side_threshold_raw value or the default.
func (c *TuningConfig) GetSideThresholdRaw() int {
	if c.SideThresholdRaw == nil {
		return 1000 // 1.0m
	}
	return *c.SideThresholdRaw
}

// GetCenterThresholdRaw returns the center_threshold_raw value or the default.
func (c *TuningConfig) GetCenterThresholdRaw() int {
	if c.CenterThresholdRaw == nil {
		return 1500 // 1.5m
	}
	return *c.CenterThresholdRaw
}

// GetValidDepthMin returns the valid_depth_min value or the default.
func (c *TuningConfig) GetValidDepthMin() int {
	if c.ValidDepthMin == nil {
		return 100
	}
	return *c.ValidDepthMin
}

// GetValidDepthMax returns the valid_depth_max value or the default.
func (c *TuningConfig) GetValidDepthMax() int {
	if c.ValidDepthMax == nil {
		return 60000
	}
	return *c.ValidDepthMax
}

// GetHistoryCapacity returns the history_capacity value or the default.
func (c *TuningConfig) GetHistoryCapacity() int {
	if c.HistoryCapacity == nil {
		return 10
	}
	return *c.HistoryCapacity
}

// GetMinHistorySamples returns the min_history_samples value or the default.
func (c *TuningConfig) GetMinHistorySamples() int {
	if c.MinHistorySamples == nil {
		return 3
	}
	return *c.MinHistorySamples
}

// GetMinApproachSpeed returns the min_approach_speed value or the default.
func (c *TuningConfig) GetMinApproachSpeed() float64 {
	if c.MinApproachSpeed == nil {
		return 0.01 // m/s
	}
	return *c.MinApproachSpeed
}

// GetTTCMinSeconds returns the ttc_min_seconds value or the default.
func (c *TuningConfig) GetTTCMinSeconds() float64 {
	if c.TTCMinSeconds == nil {
		return 0.1
	}
	return *c.TTCMinSeconds
}

// GetTTCMaxSeconds returns the ttc_max_seconds value or the default.
func (c *TuningConfig) GetTTCMaxSeconds() float64 {
	if c.TTCMaxSeconds == nil {
		return 60.0
	}
	return *c.TTCMaxSeconds
}

// GetTTCWarnThreshold returns the ttc_warn_threshold value or the default.
func (c *TuningConfig) GetTTCWarnThreshold() float64 {
	if c.TTCWarnThreshold == nil {
		return 4.0 // seconds
	}
	return *c.TTCWarnThreshold
}

// GetReceiverTimeout parses and returns the ReceiverTimeout as a time.Duration.
func (c *TuningConfig) GetReceiverTimeout() time.Duration {
	return c.durationOr(c.ReceiverTimeout, 100*time.Millisecond)
}

// GetConsumerTick parses and returns the ConsumerTick as a time.Duration.
func (c *TuningConfig) GetConsumerTick() time.Duration {
	return c.durationOr(c.ConsumerTick, 30*time.Millisecond)
}

// GetAlertCooldown parses and returns the AlertCooldown as a time.Duration.
func (c *TuningConfig) GetAlertCooldown() time.Duration {
	return c.durationOr(c.AlertCooldown, 2*time.Second)
}

// GetInterClipGap parses and returns the InterClipGap as a time.Duration.
func (c *TuningConfig) GetInterClipGap() time.Duration {
	return c.durationOr(c.InterClipGap, 200*time.Millisecond)
}

// GetEventFlush returns the event_flush value or the default.
func (c *TuningConfig) GetEventFlush() bool {
	if c.EventFlush == nil {
		return true
	}
	return *c.EventFlush
}

// GetMaxFrameBytes returns the max_frame_bytes value or the default.
func (c *TuningConfig) GetMaxFrameBytes() int {
	if c.MaxFrameBytes == nil {
		return 64 * 1024 * 1024 // generous bound against corrupt headers
	}
	return *c.MaxFrameBytes
}

func (c *TuningConfig) durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}
