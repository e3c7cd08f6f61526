package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
	"github.com/couchcryptid/au-temperature-map/internal/observability"
	"github.com/couchcryptid/au-temperature-map/internal/render"
)

// --- ImageCache ---

func TestImageCache_HitAvoidsRender(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	c := NewImageCache(4, metrics)
	calls := 0
	renderFn := func() ([]byte, error) {
		calls++
		return []byte("png"), nil
	}

	v1, err := c.GetOrRender("a", renderFn)
	require.NoError(t, err)
	v2, err := c.GetOrRender("a", renderFn)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FrameCache.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FrameCache.WithLabelValues("miss")), 1e-9)
}

func TestImageCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewImageCache(2, observability.NewMetricsForTesting())
	put := func(k string) {
		_, err := c.GetOrRender(k, func() ([]byte, error) { return []byte(k), nil })
		require.NoError(t, err)
	}

	put("a")
	put("b")
	_, ok := c.get("a") // a becomes most recent
	require.True(t, ok)
	put("c")

	assert.Equal(t, 2, c.Len())
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestImageCache_ErrorsNotCached(t *testing.T) {
	c := NewImageCache(2, observability.NewMetricsForTesting())
	boom := errors.New("boom")

	_, err := c.GetOrRender("k", func() ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestImageCache_SingleEntry(t *testing.T) {
	c := NewImageCache(1, observability.NewMetricsForTesting())
	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	c.put("b", []byte("3"))

	assert.Equal(t, 1, c.Len())
	v, ok := c.get("b")
	require.True(t, ok)
	assert.Equal(t, []byte("3"), v)
}

// --- MapRenderer ---

func testRegions() *geo.RegionSet {
	// A large square over central Australia so its interior is easy to sample.
	return geo.NewRegionSet([]geo.Region{
		{Key: "0870", Geometry: orb.Polygon{orb.Ring{{128, -30}, {140, -30}, {140, -20}, {128, -20}, {128, -30}}}},
	})
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func hexAt(img image.Image, x, y float64) string {
	r, g, b, _ := img.At(int(x), int(y)).RGBA()
	return render.Hex(colorRGBA(r, g, b))
}

func TestMapRenderer_FillsRegion(t *testing.T) {
	proj := geo.AustraliaProjection(630, 570)
	mr := NewMapRenderer(testRegions(), proj, 630, 570, nil)
	scale, err := render.NewScale(0, 35)
	require.NoError(t, err)

	f := render.Frame{
		Label:   "Jan 2000",
		Zoom:    geo.Identity,
		Regions: []render.RegionFill{{Postcode: "0870", Temperature: 30, Source: render.SourceRegion, Fill: scale.Hex(30)}},
	}
	b, err := mr.PNG(f)
	require.NoError(t, err)

	img := decode(t, b)
	assert.Equal(t, 630, img.Bounds().Dx())
	x, y := proj.Project(orb.Point{134, -25})
	assert.Equal(t, scale.Hex(30), hexAt(img, x, y))
}

func TestMapRenderer_UnfilledRegionIsGrey(t *testing.T) {
	proj := geo.AustraliaProjection(630, 570)
	mr := NewMapRenderer(testRegions(), proj, 630, 570, nil)

	f := render.Frame{
		Zoom:    geo.Identity,
		Regions: []render.RegionFill{{Postcode: "0870", Source: render.SourceNone}},
	}
	b, err := mr.PNG(f)
	require.NoError(t, err)

	x, y := proj.Project(orb.Point{134, -25})
	assert.Equal(t, noDataFill, hexAt(decode(t, b), x, y))
}

func TestMapRenderer_DrawsEveryDuplicateKey(t *testing.T) {
	proj := geo.AustraliaProjection(630, 570)
	regions := geo.NewRegionSet([]geo.Region{
		{Key: "0870", Geometry: orb.Polygon{orb.Ring{{128, -30}, {133, -30}, {133, -20}, {128, -20}, {128, -30}}}},
		{Key: "0870", Geometry: orb.Polygon{orb.Ring{{135, -30}, {140, -30}, {140, -20}, {135, -20}, {135, -30}}}},
	})
	mr := NewMapRenderer(regions, proj, 630, 570, nil)
	scale, err := render.NewScale(0, 35)
	require.NoError(t, err)

	fill := render.RegionFill{Postcode: "0870", Temperature: 30, Source: render.SourceRegion, Fill: scale.Hex(30)}
	b, err := mr.PNG(render.Frame{Zoom: geo.Identity, Regions: []render.RegionFill{fill, fill}})
	require.NoError(t, err)

	img := decode(t, b)
	for _, pt := range []orb.Point{{130.5, -25}, {137.5, -25}} {
		x, y := proj.Project(pt)
		assert.Equal(t, scale.Hex(30), hexAt(img, x, y), "point %v", pt)
	}
}

func TestMapRenderer_DrawsPins(t *testing.T) {
	mr := NewMapRenderer(testRegions(), geo.AustraliaProjection(630, 570), 630, 570, nil)
	f := render.Frame{
		Zoom: geo.Identity,
		Pins: []render.Pin{{Slot: 1, Postcode: "2000", X: 50, Y: 500, Fill: domain.SlotColours[0]}},
	}
	b, err := mr.PNG(f)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotColours[0], hexAt(decode(t, b), 50, 500))
}

func TestMapRenderer_CachesByViewState(t *testing.T) {
	cache := NewImageCache(8, observability.NewMetricsForTesting())
	mr := NewMapRenderer(testRegions(), geo.AustraliaProjection(200, 200), 200, 200, cache)

	f := render.Frame{Offset: 3, Zoom: geo.Identity, Selection: domain.DefaultSelection()}
	_, err := mr.PNG(f)
	require.NoError(t, err)
	_, err = mr.PNG(f)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	f.Zoom = geo.Transform{K: 1.2}
	_, err = mr.PNG(f)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestLegendPNG(t *testing.T) {
	scale, err := render.NewScale(0, 35)
	require.NoError(t, err)

	b, err := LegendPNG(scale)
	require.NoError(t, err)

	img := decode(t, b)
	assert.Equal(t, legendWidth, img.Bounds().Dx())
	assert.Equal(t, legendHeight, img.Bounds().Dy())
	// Top of the bar is the hot end of the ramp, bottom the cold end.
	assert.Equal(t, render.Hex(render.InterpolateCool(1)), hexAt(img, barX+5, barY))
	assert.Equal(t, render.Hex(render.InterpolateCool(0)), hexAt(img, barX+5, barY+barHeight-1))
}

func TestTempLabel_HasGlyphs(t *testing.T) {
	for _, v := range []float64{35, 0, -2.5} {
		label := tempLabel(v)
		for _, r := range label {
			_, ok := basicfont.Face7x13.GlyphAdvance(r)
			assert.True(t, ok, "no glyph for %q in %q", r, label)
		}
	}
	assert.Equal(t, "35 C", tempLabel(35))
}

func colorRGBA(r, g, b uint32) color.RGBA {
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}
