// Package alert turns TTC breaches into spoken warnings.
//
// Responsibilities: selecting which zones qualify for a warning, cooldown
// deduplication of repeated warning sets, and sequencing clip playback.
// All playback is serialized through a single worker goroutine so rapid
// successive dispatches can never overlap on the audio device.
package alert
