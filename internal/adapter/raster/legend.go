package raster

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/couchcryptid/au-temperature-map/internal/render"
)

// Legend geometry: a vertical bar, hottest at the top.
const (
	legendWidth  = 80
	legendHeight = 300
	barX         = 10
	barY         = 20
	barWidth     = 20
	barHeight    = 260
)

// LegendPNG draws the colour ramp for scale with its bounds labelled.
func LegendPNG(scale render.Scale) ([]byte, error) {
	dc := gg.NewContext(legendWidth, legendHeight)
	dc.SetHexColor(background)
	dc.Clear()

	for y := 0; y < barHeight; y++ {
		t := 1 - float64(y)/float64(barHeight-1)
		dc.SetColor(render.InterpolateCool(t))
		dc.DrawRectangle(barX, float64(barY+y), barWidth, 1)
		dc.Fill()
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetHexColor(textColor)
	dc.DrawString(tempLabel(scale.Max), barX+barWidth+6, barY+10)
	dc.DrawString(tempLabel(scale.Min), barX+barWidth+6, barY+barHeight)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode legend png: %w", err)
	}
	return buf.Bytes(), nil
}

// tempLabel formats a scale bound for basicfont, which only has ASCII glyphs.
func tempLabel(v float64) string {
	return fmt.Sprintf("%g C", v)
}
