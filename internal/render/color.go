package render

import (
	"fmt"
	"image/color"
	"math"
)

// Cubehelix coefficients (Green, 2011).
const (
	chA = -0.14861
	chB = +1.78277
	chC = -0.29227
	chD = -0.90649
	chE = +1.97294
)

type cubehelix struct{ h, s, l float64 }

func (c cubehelix) rgb() color.RGBA {
	h := (c.h + 120) * math.Pi / 180
	a := c.s * c.l * (1 - c.l)
	cosh, sinh := math.Cos(h), math.Sin(h)
	return color.RGBA{
		R: channel(c.l + a*(chA*cosh+chB*sinh)),
		G: channel(c.l + a*(chC*cosh+chD*sinh)),
		B: channel(c.l + a*(chE*cosh)),
		A: 0xff,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// coolStart and coolEnd bound the "cool" cubehelix ramp, purple to green.
var (
	coolStart = cubehelix{h: -100, s: 0.75, l: 0.35}
	coolEnd   = cubehelix{h: 80, s: 1.50, l: 0.8}
)

// InterpolateCool samples the cool ramp at t in [0, 1], interpolating hue the
// long way round.
func InterpolateCool(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	return cubehelix{
		h: coolStart.h + t*(coolEnd.h-coolStart.h),
		s: coolStart.s + t*(coolEnd.s-coolStart.s),
		l: coolStart.l + t*(coolEnd.l-coolStart.l),
	}.rgb()
}

// Scale maps a temperature in °C to a colour.
type Scale struct {
	Min float64
	Max float64
}

// NewScale builds a sequential scale over [min, max].
func NewScale(min, max float64) (Scale, error) {
	if !(min < max) {
		return Scale{}, fmt.Errorf("colour scale needs min < max, got [%g, %g]", min, max)
	}
	return Scale{Min: min, Max: max}, nil
}

// Color clamps temp into the domain and samples the ramp.
func (s Scale) Color(temp float64) color.RGBA {
	return InterpolateCool((temp - s.Min) / (s.Max - s.Min))
}

// Hex returns the colour as "#rrggbb".
func (s Scale) Hex(temp float64) string {
	return Hex(s.Color(temp))
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// LegendStop is one gradient stop of the vertical legend, hottest at the top.
type LegendStop struct {
	Offset string `json:"offset"`
	Colour string `json:"colour"`
}

// Legend returns the seven gradient stops drawn beside the line plot.
func Legend() []LegendStop {
	offsets := []string{"0%", "16.7%", "33.3%", "50%", "66.7%", "83.3%", "100%"}
	samples := []float64{1, 0.833, 0.667, 0.5, 0.333, 0.167, 0}
	stops := make([]LegendStop, len(offsets))
	for i := range offsets {
		stops[i] = LegendStop{Offset: offsets[i], Colour: Hex(InterpolateCool(samples[i]))}
	}
	return stops
}
