package loader

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/au-temperature-map/internal/geo"
)

// ErrNoRegions is returned when no feature carries a usable key.
var ErrNoRegions = errors.New("boundary collection has no keyed polygons")

// ParseRegions decodes a GeoJSON feature collection, keying each polygon
// feature by the named property. Features without the property or without
// area geometry are skipped; the count of skipped features is returned.
func ParseRegions(data []byte, keyProperty string) (*geo.RegionSet, int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode geojson: %w", err)
	}

	regions := make([]geo.Region, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		key, ok := propertyKey(f.Properties, keyProperty)
		if !ok || !isArea(f.Geometry) {
			skipped++
			continue
		}
		regions = append(regions, geo.Region{Key: key, Geometry: f.Geometry})
	}
	if len(regions) == 0 {
		return nil, skipped, fmt.Errorf("%w (property %q)", ErrNoRegions, keyProperty)
	}
	return geo.NewRegionSet(regions), skipped, nil
}

// LoadRegions reads the boundary collection at path.
func LoadRegions(path, keyProperty string) (*geo.RegionSet, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open regions: %w", err)
	}
	rs, skipped, err := ParseRegions(data, keyProperty)
	if err != nil {
		return nil, skipped, fmt.Errorf("load %s: %w", path, err)
	}
	return rs, skipped, nil
}

// propertyKey accepts string or numeric keys; boundary files in the wild
// encode postcodes both ways.
func propertyKey(props geojson.Properties, name string) (string, bool) {
	switch v := props[name].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func isArea(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	default:
		return false
	}
}
