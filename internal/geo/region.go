package geo

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Region is one postcode boundary.
type Region struct {
	Key      string
	Geometry orb.Geometry
	Centroid orb.Point
}

// RegionSet is the immutable boundary collection, in load order.
type RegionSet struct {
	regions []Region
	byKey   map[string]int
}

// NewRegionSet indexes regions by key and computes their area centroids.
// Later duplicates of a key replace earlier ones in lookups; All still returns
// every entry, so each duplicate keeps its own geometry.
func NewRegionSet(regions []Region) *RegionSet {
	rs := &RegionSet{
		regions: make([]Region, len(regions)),
		byKey:   make(map[string]int, len(regions)),
	}
	for i, r := range regions {
		if r.Geometry != nil && r.Centroid == (orb.Point{}) {
			r.Centroid, _ = planar.CentroidArea(r.Geometry)
		}
		rs.regions[i] = r
		rs.byKey[r.Key] = i
	}
	return rs
}

func (rs *RegionSet) Len() int { return len(rs.regions) }

// All returns the regions in load order. Callers must not modify the slice.
func (rs *RegionSet) All() []Region { return rs.regions }

// Lookup finds a region by postcode.
func (rs *RegionSet) Lookup(key string) (Region, bool) {
	i, ok := rs.byKey[key]
	if !ok {
		return Region{}, false
	}
	return rs.regions[i], true
}

// Keys returns the distinct region keys, sorted.
func (rs *RegionSet) Keys() []string {
	keys := make([]string, 0, len(rs.byKey))
	for k := range rs.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
