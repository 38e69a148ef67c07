package models

import (
	"fmt"
	"strings"
)

// DisplayMode selects what the display pipeline renders.
type DisplayMode int

const (
	DisplayInfrared DisplayMode = iota
	DisplayColor
	DisplayDepth
	DisplayBodyMask
	DisplayBodyJoints
)

var displayModeNames = map[DisplayMode]string{
	DisplayInfrared:   "infrared",
	DisplayColor:      "color",
	DisplayDepth:      "depth",
	DisplayBodyMask:   "bodymask",
	DisplayBodyJoints: "bodyjoints",
}

func (m DisplayMode) String() string {
	if n, ok := displayModeNames[m]; ok {
		return n
	}
	return "unknown"
}

// ParseDisplayMode maps a command or config value to a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, n := range displayModeNames {
		if n == s {
			return m, nil
		}
	}
	return DisplayInfrared, fmt.Errorf("unknown display mode %q", s)
}
