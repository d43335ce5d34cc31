// Package hazard owns proximity analysis of decoded depth frames.
//
// Responsibilities: partitioning the depth field into left/center/right
// zones, classifying each zone's distance risk, and estimating
// time-to-collision from the trend of recent minimum-distance samples.
// Key types: ZoneResult, TTCEstimator.
//
// Everything here is driven from the consumer loop; nothing in this
// package is shared across goroutines.
package hazard
