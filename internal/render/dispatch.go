// Package render derives the synchronized map, line-plot and slider state for
// a cursor position. Rendering is a pure function of the cursor state and the
// immutable dataset: calling Render twice with the same State yields equal
// frames.
package render

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
)

// State is the mutable view state owned by a session.
type State struct {
	Offset    int
	Running   bool
	Selection domain.Selection
	Zoom      geo.Transform
}

// Options configures a Dispatcher.
type Options struct {
	Scale      Scale
	Projection geo.Projection
	Transition time.Duration
}

// Dispatcher turns a State into a Frame. It holds only immutable data and may
// be shared between sessions.
type Dispatcher struct {
	index      *domain.MonthIndex
	regions    *geo.RegionSet
	scale      Scale
	projection geo.Projection
	transition time.Duration
}

// NewDispatcher binds the dataset to the rendering options.
func NewDispatcher(index *domain.MonthIndex, regions *geo.RegionSet, opts Options) *Dispatcher {
	return &Dispatcher{
		index:      index,
		regions:    regions,
		scale:      opts.Scale,
		projection: opts.Projection,
		transition: opts.Transition,
	}
}

// Index exposes the dataset the dispatcher renders from.
func (d *Dispatcher) Index() *domain.MonthIndex { return d.index }

// Regions exposes the boundary collection.
func (d *Dispatcher) Regions() *geo.RegionSet { return d.regions }

// Scale exposes the colour scale.
func (d *Dispatcher) Scale() Scale { return d.scale }

// Projection exposes the map projection.
func (d *Dispatcher) Projection() geo.Projection { return d.projection }

// Render derives the frame for s.
func (d *Dispatcher) Render(s State) Frame {
	ti := d.index.TimeIndex()
	ym := ti.At(s.Offset)
	label := ym.Label()
	season, _ := domain.Season(ym.Month)
	class, _ := domain.SliderClass(ym.Month)

	// A missing month is an empty bucket: no fallback, nothing to colour from.
	bucket, _ := d.index.Bucket(label)
	avg, hasAvg := bucket.Mean()

	f := Frame{
		Offset:          s.Offset,
		YearMonth:       ym,
		Label:           label,
		Season:          season,
		Running:         s.Running,
		Average:         avg,
		HasAverage:      hasAvg,
		BucketSize:      bucket.Len(),
		Regions:         d.regionFills(bucket, avg, hasAvg),
		XDomain:         [2]time.Time{ti.Start().Time(), ym.Time()},
		Slider:          Slider{Value: s.Offset, Max: ti.TotalMonths() - 1, Class: class},
		Zoom:            s.Zoom,
		Selection:       s.Selection,
		TransitionMilli: d.transition.Milliseconds(),
	}
	f.Traces = d.traces(s.Selection, ym)
	f.Pins = d.pins(s.Selection, s.Zoom)
	return f
}

func (d *Dispatcher) regionFills(bucket *domain.MonthBucket, avg float64, hasAvg bool) []RegionFill {
	all := d.regions.All()
	fills := make([]RegionFill, len(all))
	for i, r := range all {
		fill := RegionFill{Postcode: r.Key, Source: SourceNone}
		if v, ok := bucket.Temperature(r.Key); ok {
			fill.Temperature, fill.Source = v, SourceRegion
		} else if hasAvg {
			fill.Temperature, fill.Source = avg, SourceFallback
		}
		if fill.Source != SourceNone {
			fill.Fill = d.scale.Hex(fill.Temperature)
		}
		fills[i] = fill
	}
	return fills
}

func (d *Dispatcher) traces(sel domain.Selection, through domain.YearMonth) []Trace {
	traces := make([]Trace, len(sel))
	for i, pc := range sel {
		series := d.index.Series(pc, through)
		points := make([]TracePoint, len(series))
		for j, r := range series {
			points[j] = TracePoint{Date: r.YearMonth().Time(), AvgTemp: r.AvgTemp}
		}
		traces[i] = Trace{Postcode: pc, Colour: domain.SlotColours[i], Points: points}
	}
	return traces
}

func (d *Dispatcher) pins(sel domain.Selection, zoom geo.Transform) []Pin {
	pins := make([]Pin, 0, len(sel))
	for i, pc := range sel {
		pin, ok := d.locate(pc)
		if !ok {
			continue
		}
		pin.Slot = i + 1
		pin.Fill = domain.SlotColours[i]
		x, y := d.projection.Project(orb.Point{pin.Lon, pin.Lat})
		pin.X, pin.Y = zoom.Apply(x, y)
		pins = append(pins, pin)
	}
	return pins
}

// locate prefers the fixed city table and falls back to the region centroid.
func (d *Dispatcher) locate(postcode string) (Pin, bool) {
	if c, ok := domain.CityByPostcode(postcode); ok {
		return Pin{Postcode: postcode, Name: c.Name, Lon: c.Lon, Lat: c.Lat}, true
	}
	if r, ok := d.regions.Lookup(postcode); ok && r.Geometry != nil {
		return Pin{Postcode: postcode, Name: postcode, Lon: r.Centroid.Lon(), Lat: r.Centroid.Lat()}, true
	}
	return Pin{}, false
}
