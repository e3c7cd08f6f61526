// Package geo projects postcode boundaries onto the map canvas and tracks the
// pan/zoom transform applied on top of the projection.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Projection is a spherical Mercator projection centred on a lon/lat point,
// matching the map's fixed framing of the Australian continent.
type Projection struct {
	Scale      float64
	Center     orb.Point // lon, lat in degrees
	TranslateX float64
	TranslateY float64
}

// AustraliaProjection frames the mainland in a width x height canvas.
func AustraliaProjection(width, height float64) Projection {
	return Projection{
		Scale:      750,
		Center:     orb.Point{133.7751, -25.2744},
		TranslateX: width / 2,
		TranslateY: height/2 - 40,
	}
}

// Project maps a lon/lat point to canvas coordinates before zoom.
func (p Projection) Project(pt orb.Point) (x, y float64) {
	lambda := (pt.Lon() - p.Center.Lon()) * math.Pi / 180
	x = p.TranslateX + p.Scale*lambda
	y = p.TranslateY - p.Scale*(mercatorY(pt.Lat())-mercatorY(p.Center.Lat()))
	return x, y
}

func mercatorY(latDeg float64) float64 {
	phi := latDeg * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + phi/2))
}
