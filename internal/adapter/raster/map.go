// Package raster draws frames to PNG: the choropleth map with its pins and
// date label, and the colour legend.
package raster

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/basicfont"

	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/render"
)

const (
	background  = "#ffffff"
	noDataFill  = "#e6e6e6"
	borderColor = "#ffffff"
	textColor   = "#333333"
	pinRadius   = 7
)

// MapRenderer rasterises the map layer of a frame.
type MapRenderer struct {
	regions    *geo.RegionSet
	projection geo.Projection
	width      int
	height     int
	cache      *ImageCache
}

// NewMapRenderer draws regions through projection onto a width x height
// canvas. A nil cache disables caching.
func NewMapRenderer(regions *geo.RegionSet, projection geo.Projection, width, height int, cache *ImageCache) *MapRenderer {
	return &MapRenderer{
		regions:    regions,
		projection: projection,
		width:      width,
		height:     height,
		cache:      cache,
	}
}

// PNG returns the encoded map for f.
func (r *MapRenderer) PNG(f render.Frame) ([]byte, error) {
	if r.cache == nil {
		return r.draw(f)
	}
	return r.cache.GetOrRender(mapKey(f), func() ([]byte, error) { return r.draw(f) })
}

// mapKey covers everything the map image depends on: the month drives the
// fills, the selection drives the pins.
func mapKey(f render.Frame) string {
	return fmt.Sprintf("map|%d|%s|%s|%.4f|%.2f|%.2f",
		f.Offset, f.Selection[0], f.Selection[1], f.Zoom.K, f.Zoom.X, f.Zoom.Y)
}

func (r *MapRenderer) draw(f render.Frame) ([]byte, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetHexColor(background)
	dc.Clear()

	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetLineWidth(0.5)
	all := r.regions.All()
	for i, fill := range f.Regions {
		region, ok := regionAt(all, i, fill.Postcode)
		if !ok {
			if region, ok = r.regions.Lookup(fill.Postcode); !ok {
				continue
			}
		}
		r.tracePath(dc, region.Geometry, f.Zoom)
		if fill.Fill != "" {
			dc.SetHexColor(fill.Fill)
		} else {
			dc.SetHexColor(noDataFill)
		}
		dc.FillPreserve()
		dc.SetHexColor(borderColor)
		dc.Stroke()
	}

	for _, p := range f.Pins {
		dc.DrawCircle(p.X, p.Y, pinRadius)
		dc.SetHexColor(p.Fill)
		dc.FillPreserve()
		dc.SetHexColor(borderColor)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor(textColor)
	dc.DrawString(f.Label, 12, 24)
	if f.Season != "" {
		dc.DrawString(f.Season, 12, 40)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode map png: %w", err)
	}
	return buf.Bytes(), nil
}

// regionAt returns the region a fill was derived from. Fills are produced in
// RegionSet order, so the index identifies duplicate keys too.
func regionAt(all []geo.Region, i int, postcode string) (geo.Region, bool) {
	if i < len(all) && all[i].Key == postcode {
		return all[i], true
	}
	return geo.Region{}, false
}

func (r *MapRenderer) tracePath(dc *gg.Context, g orb.Geometry, zoom geo.Transform) {
	switch g := g.(type) {
	case orb.Polygon:
		r.tracePolygon(dc, g, zoom)
	case orb.MultiPolygon:
		for _, p := range g {
			r.tracePolygon(dc, p, zoom)
		}
	}
}

func (r *MapRenderer) tracePolygon(dc *gg.Context, p orb.Polygon, zoom geo.Transform) {
	for _, ring := range p {
		if len(ring) == 0 {
			continue
		}
		dc.NewSubPath()
		for i, pt := range ring {
			x, y := zoom.Apply(r.projection.Project(pt))
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
	}
}
