package hazard

import "time"

// DistanceSample is one (distance, wall-clock) observation for a zone.
type DistanceSample struct {
	DistanceM float64
	Time      time.Time
}

// ZoneHistory maintains a sliding window of distance samples for one zone,
// oldest evicted first once capacity is exceeded. Samples are appended in
// non-decreasing time order by the consumer loop.
type ZoneHistory struct {
	samples  []DistanceSample
	capacity int
	head     int // next write position
	size     int
}

// NewZoneHistory creates a history buffer with the specified capacity.
func NewZoneHistory(capacity int) *ZoneHistory {
	if capacity < 1 {
		capacity = 10 // default window
	}
	return &ZoneHistory{
		samples:  make([]DistanceSample, capacity),
		capacity: capacity,
	}
}

// Add stores a new sample, overwriting the oldest if at capacity.
func (h *ZoneHistory) Add(sample DistanceSample) {
	h.samples[h.head] = sample
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Oldest returns the earliest retained sample. The second return is false
// when the history is empty.
func (h *ZoneHistory) Oldest() (DistanceSample, bool) {
	if h.size == 0 {
		return DistanceSample{}, false
	}
	idx := (h.head - h.size + h.capacity) % h.capacity
	return h.samples[idx], true
}

// Newest returns the most recently added sample. The second return is
// false when the history is empty.
func (h *ZoneHistory) Newest() (DistanceSample, bool) {
	if h.size == 0 {
		return DistanceSample{}, false
	}
	idx := (h.head - 1 + h.capacity) % h.capacity
	return h.samples[idx], true
}

// Size returns the current number of samples in history.
func (h *ZoneHistory) Size() int { return h.size }

// Capacity returns the maximum number of samples that can be stored.
func (h *ZoneHistory) Capacity() int { return h.capacity }

// Clear removes all samples from history.
func (h *ZoneHistory) Clear() {
	for i := range h.samples {
		h.samples[i] = DistanceSample{}
	}
	h.head = 0
	h.size = 0
}
