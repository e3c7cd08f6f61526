package domain

// TemperatureRecord is one postcode's mean temperature for one calendar month.
type TemperatureRecord struct {
	Postcode string  `json:"postcode"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	AvgTemp  float64 `json:"avg_temp"`
}

// YearMonth returns the calendar month the record belongs to.
func (r TemperatureRecord) YearMonth() YearMonth {
	return YearMonth{Year: r.Year, Month: r.Month}
}

// FilterRange keeps the records whose (Year, Month) falls within [start, end]
// using lexicographic ordering. Input order is preserved.
func FilterRange(records []TemperatureRecord, start, end YearMonth) []TemperatureRecord {
	out := make([]TemperatureRecord, 0, len(records))
	for _, r := range records {
		ym := r.YearMonth()
		if ym.Compare(start) >= 0 && ym.Compare(end) <= 0 {
			out = append(out, r)
		}
	}
	return out
}
