package domain

import "fmt"

// Season returns the southern hemisphere season for month.
func Season(month int) (string, error) {
	switch month {
	case 12, 1, 2:
		return "summer", nil
	case 3, 4, 5:
		return "autumn", nil
	case 6, 7, 8:
		return "winter", nil
	case 9, 10, 11:
		return "spring", nil
	default:
		return "", fmt.Errorf("season: %w: %d", ErrInvalidMonth, month)
	}
}

// SliderClass is the CSS class that tints the time slider for month,
// e.g. "ui-slider-range-Jan".
func SliderClass(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("slider class: %w: %d", ErrInvalidMonth, month)
	}
	return "ui-slider-range-" + monthAbbrevs[month-1], nil
}
