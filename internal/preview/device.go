package preview

import (
	"errors"
	"fmt"
	"strings"
)

// Device is the viewport the preview frame is sized for.
type Device string

const (
	Mobile  Device = "mobile"
	Tablet  Device = "tablet"
	Desktop Device = "desktop"
)

var ErrUnknownDevice = errors.New("unknown device")

// Width returns the CSS width of the preview frame.
func (d Device) Width() string {
	switch d {
	case Mobile:
		return "375px"
	case Tablet:
		return "768px"
	default:
		return "100%"
	}
}

func (d Device) Valid() bool {
	return d == Mobile || d == Tablet || d == Desktop
}

// ParseDevice accepts a device name case-insensitively. An empty name selects
// the desktop frame.
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Desktop, nil
	}
	d := Device(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDevice, s)
	}
	return d, nil
}
