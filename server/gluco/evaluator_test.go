package gluco

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name              string
		level             float64
		low               float64
		high              float64
		expectedSeverity  Severity
		expectedDirection Direction
	}{
		{name: "at low threshold", level: 70, low: 70, high: 180, expectedSeverity: DANGER, expectedDirection: LOW},
		{name: "below low threshold", level: 55, low: 70, high: 180, expectedSeverity: DANGER, expectedDirection: LOW},
		{name: "at high threshold", level: 180, low: 70, high: 180, expectedSeverity: DANGER, expectedDirection: HIGH},
		{name: "above high threshold", level: 250, low: 70, high: 180, expectedSeverity: DANGER, expectedDirection: HIGH},
		{name: "inside low warning buffer", level: 75, low: 70, high: 180, expectedSeverity: WARNING, expectedDirection: LOW},
		{name: "at edge of low warning buffer", level: 80, low: 70, high: 180, expectedSeverity: WARNING, expectedDirection: LOW},
		{name: "inside high warning buffer", level: 172, low: 70, high: 180, expectedSeverity: WARNING, expectedDirection: HIGH},
		{name: "at edge of high warning buffer", level: 170, low: 70, high: 180, expectedSeverity: WARNING, expectedDirection: HIGH},
		{name: "comfortably in range", level: 110, low: 70, high: 180, expectedSeverity: NORMAL, expectedDirection: Direction("")},
		{name: "low equals high grades low first", level: 100, low: 100, high: 100, expectedSeverity: DANGER, expectedDirection: LOW},
		{name: "inverted thresholds still deterministic", level: 150, low: 180, high: 70, expectedSeverity: DANGER, expectedDirection: LOW},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			severity, direction := Classify(tc.level, tc.low, tc.high)
			assert.Equal(t, tc.expectedSeverity, severity)
			assert.Equal(t, tc.expectedDirection, direction)
		})
	}
}

func TestClassifyProperties(t *testing.T) {
	low, high := 70.0, 180.0

	for level := 0.0; level <= 300; level++ {
		severity, _ := Classify(level, low, high)

		switch {
		case level <= low || level >= high:
			assert.Equal(t, DANGER, severity, "level=%v", level)
		case level <= low+WARNING_MARGIN || level >= high-WARNING_MARGIN:
			assert.Equal(t, WARNING, severity, "level=%v", level)
		default:
			assert.Equal(t, NORMAL, severity, "level=%v", level)
		}
	}
}

func TestShouldNotify(t *testing.T) {
	testCases := []struct {
		level             float64
		expectedFire      bool
		expectedDirection Direction
	}{
		{level: 70, expectedFire: true, expectedDirection: LOW},
		{level: 65, expectedFire: true, expectedDirection: LOW},
		{level: 75, expectedFire: false, expectedDirection: Direction("")},
		{level: 180, expectedFire: true, expectedDirection: HIGH},
		{level: 185, expectedFire: true, expectedDirection: HIGH},
	}

	for _, tc := range testCases {
		fire, direction := ShouldNotify(tc.level, 70, 180)
		assert.Equal(t, tc.expectedFire, fire, "level=%v", tc.level)
		assert.Equal(t, tc.expectedDirection, direction, "level=%v", tc.level)
	}
}

// The dashboard grading has a warning buffer, the notification rule
// doesn't - a reading can grade 'warning' without firing anything.
func TestWarningZoneDoesNotFire(t *testing.T) {
	severity, _ := Classify(75, 70, 180)
	assert.Equal(t, WARNING, severity)

	fire, _ := ShouldNotify(75, 70, 180)
	assert.False(t, fire)
}
