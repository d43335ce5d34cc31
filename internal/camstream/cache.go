package camstream

import "sync"

// FrameCache is the single-slot holder of the most recently decoded frame.
// The receiver goroutine is its only writer; the consumer reads the latest
// frame whenever it is ready for one. There is no history and no blocking:
// a publish simply replaces whatever was there.
type FrameCache struct {
	mu         sync.Mutex
	frame      *DecodedFrame
	frameCount uint64
}

// NewFrameCache creates an empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{}
}

// Publish replaces the held frame and bumps the publish counter.
func (c *FrameCache) Publish(frame *DecodedFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
	c.frameCount++
}

// Latest returns the currently held frame, or nil before the first publish.
// The returned frame stays valid for the caller but may no longer be the
// newest one the moment this returns.
func (c *FrameCache) Latest() *DecodedFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// FrameCount returns the number of frames published so far. Used only for
// rate reporting.
func (c *FrameCache) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount
}
