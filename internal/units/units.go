// Package units provides shared constants and validation for voltage display units
package units

import "fmt"

// Unit constants
const (
	V  = "V"
	MV = "mV"
	UV = "uV"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{V, MV, UV}

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
	return "V, mV, uV"
}

// ConvertVoltage converts a value in volts to the target units.
// Margins are computed and stored in volts.
func ConvertVoltage(volts float64, targetUnits string) float64 {
	switch targetUnits {
	case MV:
		return volts * 1e3
	case UV:
		return volts * 1e6
	default:
		return volts // V, or unknown units
	}
}

// FormatVoltage renders a value in volts in the target units with a
// precision suited to the unit.
func FormatVoltage(volts float64, targetUnits string) string {
	switch targetUnits {
	case MV:
		return fmt.Sprintf("%.1f mV", ConvertVoltage(volts, MV))
	case UV:
		return fmt.Sprintf("%.0f uV", ConvertVoltage(volts, UV))
	default:
		return fmt.Sprintf("%.6f V", volts)
	}
}
