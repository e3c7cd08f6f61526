// Package domain models monthly postcode-level temperature data for Australia
// and the calendar arithmetic that drives the animated map.
//
// # Data Source
//
// Records come from a pre-aggregated CSV with one row per postcode and month:
//
//	Postcode,Year,Month,Avg_temp
//	2000,2000,1,22.41
//	0800,2000,1,29.87
//
// Every field arrives as text. Postcodes stay strings because Northern
// Territory codes carry a leading zero ("0800" is Darwin). Year and Month are
// coerced to integers and Avg_temp to a float in degrees Celsius.
//
// # Month Offsets
//
// The animation works in month offsets: a zero-based count of months since the
// configured start month. With a start of Jan 2000:
//
//	offset 0   -> Jan 2000
//	offset 11  -> Dec 2000
//	offset 12  -> Jan 2001
//	offset 293 -> Jun 2024
//
// See [OffsetToYearMonth] and [MonthsBetween].
//
// # Month Labels
//
// Buckets are keyed by a canonical "MMM YYYY" label ("Jan 2000") built from a
// fixed 12-entry English abbreviation table. Month numbers outside 1-12 are
// rejected with [ErrInvalidMonth] rather than mapped to a wrong label.
//
// # Seasons
//
// Seasons follow the southern hemisphere meteorological convention:
//
//	Summer: Dec, Jan, Feb
//	Autumn: Mar, Apr, May
//	Winter: Jun, Jul, Aug
//	Spring: Sep, Oct, Nov
package domain
