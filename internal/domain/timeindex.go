package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidMonth is returned when a month number falls outside 1-12.
var ErrInvalidMonth = errors.New("invalid month")

var monthAbbrevs = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewYearMonth validates month and returns the pair.
func NewYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// ParseYearMonth parses "YYYY-MM", e.g. "2024-06".
func ParseYearMonth(s string) (YearMonth, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return YearMonth{}, fmt.Errorf("parse year-month %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: year: %w", s, err)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: month: %w", s, err)
	}
	return NewYearMonth(year, month)
}

// Compare orders months chronologically: -1 if ym is earlier, 0 if equal, +1 if later.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year < other.Year:
		return -1
	case ym.Year > other.Year:
		return 1
	case ym.Month < other.Month:
		return -1
	case ym.Month > other.Month:
		return 1
	default:
		return 0
	}
}

// Label formats the month as "MMM YYYY". Invalid months yield an empty string;
// use [FormatLabel] when the month has not been validated.
func (ym YearMonth) Label() string {
	s, err := FormatLabel(ym.Year, ym.Month)
	if err != nil {
		return ""
	}
	return s
}

// Time returns midnight UTC on the first day of the month.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// FormatLabel returns the canonical bucket label, e.g. FormatLabel(2000, 1) == "Jan 2000".
func FormatLabel(year, month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("format label: %w: %d", ErrInvalidMonth, month)
	}
	return monthAbbrevs[month-1] + " " + strconv.Itoa(year), nil
}

// OffsetToYearMonth maps a zero-based month offset from start onto the calendar.
func OffsetToYearMonth(start YearMonth, offset int) YearMonth {
	total := start.Month + offset - 1
	year := start.Year + floorDiv(total, 12)
	month := total - floorDiv(total, 12)*12 + 1
	return YearMonth{Year: year, Month: month}
}

// MonthsBetween counts the months from (startY, startM) to (endY, endM) inclusive.
func MonthsBetween(startY, startM, endY, endM int) int {
	return (endY-startY)*12 + (endM - startM + 1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// TimeIndex converts between month offsets and calendar months for a fixed range.
type TimeIndex struct {
	start YearMonth
	end   YearMonth
	total int
}

// NewTimeIndex builds an index over [start, end] inclusive.
func NewTimeIndex(start, end YearMonth) (TimeIndex, error) {
	if _, err := NewYearMonth(start.Year, start.Month); err != nil {
		return TimeIndex{}, fmt.Errorf("start: %w", err)
	}
	if _, err := NewYearMonth(end.Year, end.Month); err != nil {
		return TimeIndex{}, fmt.Errorf("end: %w", err)
	}
	if end.Compare(start) < 0 {
		return TimeIndex{}, fmt.Errorf("end %s is before start %s", end, start)
	}
	return TimeIndex{
		start: start,
		end:   end,
		total: MonthsBetween(start.Year, start.Month, end.Year, end.Month),
	}, nil
}

func (ti TimeIndex) Start() YearMonth { return ti.start }
func (ti TimeIndex) End() YearMonth   { return ti.end }

// TotalMonths is the number of valid offsets; offsets run from 0 to TotalMonths()-1.
func (ti TimeIndex) TotalMonths() int { return ti.total }

// At returns the calendar month for offset.
func (ti TimeIndex) At(offset int) YearMonth {
	return OffsetToYearMonth(ti.start, offset)
}

// OffsetOf is the inverse of At. The second result is false when ym lies outside the range.
func (ti TimeIndex) OffsetOf(ym YearMonth) (int, bool) {
	if !ti.Contains(ym) {
		return 0, false
	}
	return MonthsBetween(ti.start.Year, ti.start.Month, ym.Year, ym.Month) - 1, true
}

// Contains reports whether ym lies within [start, end].
func (ti TimeIndex) Contains(ym YearMonth) bool {
	return ym.Compare(ti.start) >= 0 && ym.Compare(ti.end) <= 0
}
