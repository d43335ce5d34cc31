package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetSideThresholdRaw(); got != 1000 {
		t.Errorf("GetSideThresholdRaw() = %d, want 1000", got)
	}
	if got := cfg.GetCenterThresholdRaw(); got != 1500 {
		t.Errorf("GetCenterThresholdRaw() = %d, want 1500", got)
	}
	if got := cfg.GetValidDepthMin(); got != 100 {
		t.Errorf("GetValidDepthMin() = %d, want 100", got)
	}
	if got := cfg.GetValidDepthMax(); got != 60000 {
		t.Errorf("GetValidDepthMax() = %d, want 60000", got)
	}
	if got := cfg.GetHistoryCapacity(); got != 10 {
		t.Errorf("GetHistoryCapacity() = %d, want 10", got)
	}
	if got := cfg.GetMinHistorySamples(); got != 3 {
		t.Errorf("GetMinHistorySamples() = %d, want 3", got)
	}
	if got := cfg.GetMinApproachSpeed(); got != 0.01 {
		t.Errorf("GetMinApproachSpeed() = %f, want 0.01", got)
	}
	if got := cfg.GetTTCWarnThreshold(); got != 4.0 {
		t.Errorf("GetTTCWarnThreshold() = %f, want 4.0", got)
	}
	if got := cfg.GetAlertCooldown(); got != 2*time.Second {
		t.Errorf("GetAlertCooldown() = %v, want 2s", got)
	}
	if got := cfg.GetInterClipGap(); got != 200*time.Millisecond {
		t.Errorf("GetInterClipGap() = %v, want 200ms", got)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeTempConfig(t, `{"ttc_warn_threshold": 2.5, "alert_cooldown": "5s"}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}

	if got := cfg.GetTTCWarnThreshold(); got != 2.5 {
		t.Errorf("GetTTCWarnThreshold() = %f, want 2.5", got)
	}
	if got := cfg.GetAlertCooldown(); got != 5*time.Second {
		t.Errorf("GetAlertCooldown() = %v, want 5s", got)
	}
	// Unset fields fall back to defaults.
	if got := cfg.GetSideThresholdRaw(); got != 1000 {
		t.Errorf("GetSideThresholdRaw() = %d, want default 1000", got)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := LoadTuningConfig("tuning.yaml"); err == nil {
		t.Error("expected error for non-.json extension")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"inverted depth bounds", `{"valid_depth_min": 60000, "valid_depth_max": 100}`},
		{"zero history capacity", `{"history_capacity": 0}`},
		{"one-sample minimum", `{"min_history_samples": 1}`},
		{"negative approach speed", `{"min_approach_speed": -0.5}`},
		{"inverted ttc band", `{"ttc_min_seconds": 60, "ttc_max_seconds": 0.1}`},
		{"zero warn threshold", `{"ttc_warn_threshold": 0}`},
		{"bad cooldown duration", `{"alert_cooldown": "two seconds"}`},
		{"zero frame bytes", `{"max_frame_bytes": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.json)
			if _, err := LoadTuningConfig(path); err == nil {
				t.Errorf("LoadTuningConfig accepted %s", tt.json)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	// The checked-in defaults file must agree with the compiled-in fallbacks.
	if got := cfg.GetTTCWarnThreshold(); got != 4.0 {
		t.Errorf("defaults file ttc_warn_threshold = %f, want 4.0", got)
	}
	if got := cfg.GetHistoryCapacity(); got != 10 {
		t.Errorf("defaults file history_capacity = %d, want 10", got)
	}
	if got := cfg.GetConsumerTick(); got != 30*time.Millisecond {
		t.Errorf("defaults file consumer_tick = %v, want 30ms", got)
	}
}
