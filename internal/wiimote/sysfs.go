package wiimote

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The hid-wiimote driver publishes the battery as a power_supply
// child of the HID device and the four player LEDs as leds children
// named <dev>:blue:p0 through <dev>:blue:p3.

func readSysfsAttr(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// batteryLevel reads the battery capacity percentage under hidDir.
func batteryLevel(hidDir string) (uint8, error) {
	matches, err := filepath.Glob(filepath.Join(hidDir, "power_supply", "*", "capacity"))
	if err != nil || len(matches) == 0 {
		return 0, fmt.Errorf("no battery reported under %s", hidDir)
	}
	raw, err := readSysfsAttr(matches[0])
	if err != nil {
		return 0, fmt.Errorf("read battery level: %w", err)
	}
	level, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad battery level %q: %w", raw, err)
	}
	if level > 100 {
		level = 100
	}
	return uint8(level), nil
}

// ledBrightnessPath locates the brightness attribute of player LED n
// (1-based, 1..4).
func ledBrightnessPath(hidDir string, n int) (string, error) {
	if n < 1 || n > 4 {
		return "", fmt.Errorf("led index %d out of range", n)
	}
	pattern := filepath.Join(hidDir, "leds", fmt.Sprintf("*:blue:p%d", n-1), "brightness")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("led %d not found under %s", n, hidDir)
	}
	return matches[0], nil
}

func setLED(hidDir string, n int, on bool) error {
	path, err := ledBrightnessPath(hidDir, n)
	if err != nil {
		return err
	}
	value := "0"
	if on {
		value = "1"
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("set led %d: %w", n, err)
	}
	return nil
}

func ledState(hidDir string, n int) (bool, error) {
	path, err := ledBrightnessPath(hidDir, n)
	if err != nil {
		return false, err
	}
	raw, err := readSysfsAttr(path)
	if err != nil {
		return false, fmt.Errorf("read led %d: %w", n, err)
	}
	return raw != "0", nil
}
