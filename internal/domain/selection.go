package domain

import "fmt"

// City is one of the fixed comparison locations offered in the selectors.
type City struct {
	Postcode string  `json:"postcode"`
	Name     string  `json:"name"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

// Cities are the capital-city postcodes offered in the two selectors.
var Cities = []City{
	{Postcode: "2000", Name: "Sydney", Lon: 151.2093, Lat: -33.8688},
	{Postcode: "3000", Name: "Melbourne", Lon: 144.9631, Lat: -37.8136},
	{Postcode: "4000", Name: "Brisbane", Lon: 153.0251, Lat: -27.4698},
	{Postcode: "6000", Name: "Perth", Lon: 115.8605, Lat: -31.9505},
	{Postcode: "5000", Name: "Adelaide", Lon: 138.6007, Lat: -34.9285},
	{Postcode: "2600", Name: "Canberra", Lon: 149.1300, Lat: -35.2809},
	{Postcode: "7000", Name: "Hobart", Lon: 147.3272, Lat: -42.8821},
	{Postcode: "0800", Name: "Darwin", Lon: 130.8456, Lat: -12.4634},
}

// CityByPostcode finds a city in [Cities].
func CityByPostcode(postcode string) (City, bool) {
	for _, c := range Cities {
		if c.Postcode == postcode {
			return c, true
		}
	}
	return City{}, false
}

// Slot identifies one of the two comparison selectors.
type Slot int

const (
	SlotPrimary Slot = iota
	SlotSecondary
)

// SlotColours are the trace and pin colours for each slot.
var SlotColours = [2]string{"#b74e32", "#b38b00"}

// ParseSlot accepts 1 or 2, matching the selector numbering in the UI.
func ParseSlot(n int) (Slot, error) {
	switch n {
	case 1:
		return SlotPrimary, nil
	case 2:
		return SlotSecondary, nil
	default:
		return 0, fmt.Errorf("invalid slot %d (allowed: 1, 2)", n)
	}
}

// Selection is the pair of postcodes compared in the line plot.
type Selection [2]string

// DefaultSelection compares Sydney and Melbourne.
func DefaultSelection() Selection {
	return Selection{"2000", "3000"}
}

// With returns a copy with slot replaced.
func (s Selection) With(slot Slot, postcode string) Selection {
	s[slot] = postcode
	return s
}
