package dial

import (
	"fmt"
	"sort"
	"strings"
)

// Colour is an RGB backlight, each channel 0-100.
type Colour struct {
	Red   int
	Green int
	Blue  int
}

// Preset backlight colours.
var (
	White = Colour{100, 100, 100}
	Red   = Colour{100, 0, 0}
	Green = Colour{0, 100, 0}
	Blue  = Colour{0, 0, 100}
	Off   = Colour{0, 0, 0}
)

var colours = map[string]Colour{
	"WHITE": White,
	"RED":   Red,
	"GREEN": Green,
	"BLUE":  Blue,
}

// Brightness scales a colour.
var brightness = map[string]float64{
	"MAX": 1.0,
	"MID": 0.5,
	"LOW": 0.2,
	"OFF": 0.0,
}

// ColourNames returns the preset colour names, sorted.
func ColourNames() []string {
	return sortedKeys(colours)
}

// BrightnessNames returns the brightness level names, sorted.
func BrightnessNames() []string {
	return sortedKeys(brightness)
}

// BacklightFor resolves a preset colour and brightness level into the RGB
// values sent to the server. Channels are truncated toward zero.
func BacklightFor(colour, level string) (Colour, error) {
	c, ok := colours[strings.ToUpper(colour)]
	if !ok {
		return Colour{}, fmt.Errorf("unknown colour %q (want one of %s)", colour, strings.Join(ColourNames(), ", "))
	}
	b, ok := brightness[strings.ToUpper(level)]
	if !ok {
		return Colour{}, fmt.Errorf("unknown brightness %q (want one of %s)", level, strings.Join(BrightnessNames(), ", "))
	}
	return Colour{
		Red:   int(float64(c.Red) * b),
		Green: int(float64(c.Green) * b),
		Blue:  int(float64(c.Blue) * b),
	}, nil
}

// Element is the part of a dial that "vu1 reset" restores.
type Element string

const (
	ElementDial      Element = "dial"
	ElementBacklight Element = "backlight"
	ElementImage     Element = "image"
)

// ParseElement validates a reset target.
func ParseElement(s string) (Element, error) {
	switch e := Element(strings.ToLower(s)); e {
	case ElementDial, ElementBacklight, ElementImage:
		return e, nil
	default:
		return "", fmt.Errorf("unknown element %q (want dial, backlight, or image)", s)
	}
}

// DefaultImage returns the file name of the stock face image for role.
func DefaultImage(role Role) string {
	switch role {
	case RoleCPU:
		return "cpu-load.png"
	case RoleGPU:
		return "gpu-load.png"
	case RoleMemory:
		return "mem-load.png"
	case RoleNetwork:
		return "net-down.png"
	default:
		return ""
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
