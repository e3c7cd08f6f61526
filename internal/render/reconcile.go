package render

import "sort"

// Diff lists the keys that changed between two entity sets.
type Diff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Updated []string `json:"updated,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// Reconcile compares the current and desired entity sets, each keyed by id with
// a comparable value. Keys in every list are sorted.
func Reconcile(current, desired map[string]string) Diff {
	var d Diff
	for k, v := range desired {
		old, ok := current[k]
		switch {
		case !ok:
			d.Added = append(d.Added, k)
		case old != v:
			d.Updated = append(d.Updated, k)
		}
	}
	for k := range current {
		if _, ok := desired[k]; !ok {
			d.Removed = append(d.Removed, k)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Updated)
	return d
}

// Delta is the change set between two consecutive frames. Regions are keyed
// by postcode and count as updated when the fill, the value source or the
// tooltip temperature changes. Pins are keyed by slot and postcode.
type Delta struct {
	Regions Diff `json:"regions"`
	Pins    Diff `json:"pins"`
}

// Compare reconciles next against prev. A nil prev treats everything as added.
func Compare(prev *Frame, next *Frame) Delta {
	var prevFills, prevPins map[string]string
	if prev != nil {
		prevFills, prevPins = prev.fills(), prev.pins()
	}
	return Delta{
		Regions: Reconcile(prevFills, next.fills()),
		Pins:    Reconcile(prevPins, next.pins()),
	}
}
