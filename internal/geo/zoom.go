package geo

// Zoom limits and step factors for the map controls.
const (
	MinZoom       = 1.0
	MaxZoom       = 8.0
	ZoomInFactor  = 1.2
	ZoomOutFactor = 0.8
)

// Transform is a uniform scale k followed by a translation, applied to
// projected coordinates: screen = projected*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the unzoomed transform.
var Identity = Transform{K: 1}

func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// ScaleBy multiplies the scale by factor, clamped to [MinZoom, MaxZoom],
// keeping the point (cx, cy) fixed on screen.
func (t Transform) ScaleBy(factor, cx, cy float64) Transform {
	k := clamp(t.K*factor, MinZoom, MaxZoom)
	// Point under (cx, cy) before the zoom, in projected coordinates.
	px := (cx - t.X) / t.K
	py := (cy - t.Y) / t.K
	return Transform{K: k, X: cx - px*k, Y: cy - py*k}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ZoomAction is one of the map zoom buttons.
type ZoomAction string

const (
	ZoomIn    ZoomAction = "in"
	ZoomOut   ZoomAction = "out"
	ZoomReset ZoomAction = "reset"
)

// Viewport is the canvas a Transform is applied to.
type Viewport struct {
	Width  float64
	Height float64
}

// Zoom applies a zoom button around the viewport centre. The second result is
// false for unknown actions.
func (v Viewport) Zoom(t Transform, action ZoomAction) (Transform, bool) {
	switch action {
	case ZoomIn:
		return t.ScaleBy(ZoomInFactor, v.Width/2, v.Height/2), true
	case ZoomOut:
		return t.ScaleBy(ZoomOutFactor, v.Width/2, v.Height/2), true
	case ZoomReset:
		return Identity, true
	default:
		return t, false
	}
}
