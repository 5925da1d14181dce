// Package gluco grades glucose readings against a patient's threshold pair.
package gluco

type Severity string

type Direction string

const (
	NORMAL  Severity = "normal"
	WARNING Severity = "warning"
	DANGER  Severity = "danger"

	LOW  Direction = "LOW"
	HIGH Direction = "HIGH"

	// Readings within this margin of a threshold grade as a warning
	// on the dashboard.
	WARNING_MARGIN = 10
)

// Classify grades a reading into normal/warning/danger against the
// given threshold pair. Direction reports which bound was approached
// or crossed & is meaningless when the severity is 'normal'.
//
// Thresholds are taken as configured - low == high or low > high still
// produce a deterministic answer per the rules below.
func Classify(level, low, high float64) (Severity, Direction) {
	switch {
	case level <= low:
		return DANGER, LOW
	case level >= high:
		return DANGER, HIGH
	case level <= low+WARNING_MARGIN:
		return WARNING, LOW
	case level >= high-WARNING_MARGIN:
		return WARNING, HIGH
	}

	return NORMAL, ""
}

// ShouldNotify is the firing rule for outbound alerts. Unlike Classify
// there is no warning buffer - only an outright threshold breach fires.
func ShouldNotify(level, low, high float64) (bool, Direction) {
	if level <= low {
		return true, LOW
	}

	if level >= high {
		return true, HIGH
	}

	return false, ""
}
