// Package progress turns a day's intake into a fill ratio, a bar color and a
// motivational hint.
package progress

import (
	"encoding/json"
	"fmt"
	"math"
)

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String renders the color in CSS functional form
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalJSON encodes the color in both hex and CSS forms
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hex string `json:"hex"`
		RGB string `json:"rgb"`
	}{Hex: c.Hex(), RGB: c.String()})
}

// Color stops
var (
	Red   = RGB{R: 0xef, G: 0x44, B: 0x44}
	Amber = RGB{R: 0xf5, G: 0x9e, B: 0x0b}
	Blue  = RGB{R: 0x25, G: 0x63, B: 0xeb}
)

// Ratio returns totalMl/goalMl clamped to [0, 1]. A non-positive goal yields 0.
func Ratio(totalMl, goalMl int) float64 {
	if goalMl <= 0 {
		return 0
	}
	return clamp01(float64(totalMl) / float64(goalMl))
}

// ColorFor interpolates red to amber over [0, 0.5] and amber to blue over (0.5, 1]
func ColorFor(ratio float64) RGB {
	ratio = clamp01(ratio)
	if ratio <= 0.5 {
		return mix(Red, Amber, ratio/0.5)
	}
	return mix(Amber, Blue, (ratio-0.5)/0.5)
}

func mix(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
	}
}

// lerp rounds half up so 0.5 channels match the browser build
func lerp(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Floor(v + 0.5))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
