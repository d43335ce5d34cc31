// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Meters = "m"
	Feet   = "ft"
	Inches = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Feet, Inches}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft, in"
}

// RawDepthToMeters converts a raw sensor reading (millimetres) to metres.
// The pipeline stores and reports distances in metres.
func RawDepthToMeters(raw uint16) float64 {
	return float64(raw) / 1000.0
}

// ConvertDistance converts a distance from metres to the target units
func ConvertDistance(distanceM float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return distanceM * 3.28084 // m to ft
	case Inches:
		return distanceM * 39.3701 // m to in
	case Meters:
		return distanceM // no conversion needed
	default:
		return distanceM // default to metres if unknown unit
	}
}
