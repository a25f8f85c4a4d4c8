package clicker

import (
	"github.com/hsanzg/wiinote/internal/logger"
)

// The four player LEDs double as a battery gauge: one LED lit near
// empty, all four near full.

// ledsForLevel returns how many LEDs represent a battery percentage.
func ledsForLevel(level uint8) int {
	n := 1 + int(level)/30
	if n > 4 {
		n = 4
	}
	return n
}

// updateLights reads the battery and lights the LED bar accordingly.
// Failures are logged and ignored; a stale gauge must not disturb the
// event loop.
func updateLights(s Session) {
	level, err := s.Battery()
	if err != nil {
		logger.Warnf("Failed to read battery level: %v", err)
		return
	}
	lit := ledsForLevel(level)
	for n := 1; n <= 4; n++ {
		want := n <= lit
		// Skip writes for LEDs already in the right state.
		if cur, err := s.LED(n); err == nil && cur == want {
			continue
		}
		if err := s.SetLED(n, want); err != nil {
			logger.Warnf("Failed to set LED %d: %v", n, err)
			return
		}
	}
	logger.Debugf("Battery at %d%%, lighting %d LED(s)", level, lit)
}
