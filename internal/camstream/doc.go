// Package camstream owns ingestion of the depth-camera TCP stream.
//
// Responsibilities: the 48-byte little-endian frame header codec, payload
// decoding into DecodedFrame (depth, color, infrared channels), the
// single-slot FrameCache shared between the receiver goroutine and the
// consumer, and the Receiver loop itself.
//
// A fast producer may overwrite a cached frame the consumer never saw.
// That is the intended drop policy: alerting cares about "now", not about
// every frame, so there is no queue and no backpressure.
package camstream
