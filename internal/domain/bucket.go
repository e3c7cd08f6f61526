package domain

import (
	"fmt"
	"sort"
)

// MonthBucket holds every record for one calendar month.
type MonthBucket struct {
	Label     string
	YearMonth YearMonth
	Records   []TemperatureRecord

	byPostcode map[string]float64
}

// Temperature returns the postcode's value for this month. Presence decides the
// second result, so a genuine 0.0 reading is reported as found.
func (b *MonthBucket) Temperature(postcode string) (float64, bool) {
	if b == nil {
		return 0, false
	}
	v, ok := b.byPostcode[postcode]
	return v, ok
}

// Mean is the arithmetic mean of Avg_temp across the bucket. It reports false
// for a nil or empty bucket.
func (b *MonthBucket) Mean() (float64, bool) {
	if b == nil || len(b.Records) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range b.Records {
		sum += r.AvgTemp
	}
	return sum / float64(len(b.Records)), true
}

// Len returns the number of records in the bucket; nil buckets are empty.
func (b *MonthBucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}

// MonthIndex groups in-range records by month label and by postcode. It is
// built once after load and never mutated, so it is safe to share between
// sessions.
type MonthIndex struct {
	timeIndex  TimeIndex
	buckets    map[string]*MonthBucket
	byPostcode map[string][]TemperatureRecord
	records    int
}

// NewMonthIndex filters records to the index range and partitions them into
// month buckets. Months without records get no bucket.
func NewMonthIndex(ti TimeIndex, records []TemperatureRecord) (*MonthIndex, error) {
	filtered := FilterRange(records, ti.Start(), ti.End())

	idx := &MonthIndex{
		timeIndex:  ti,
		buckets:    make(map[string]*MonthBucket),
		byPostcode: make(map[string][]TemperatureRecord),
		records:    len(filtered),
	}

	for _, r := range filtered {
		label, err := FormatLabel(r.Year, r.Month)
		if err != nil {
			return nil, fmt.Errorf("group postcode %s: %w", r.Postcode, err)
		}
		b, ok := idx.buckets[label]
		if !ok {
			b = &MonthBucket{
				Label:      label,
				YearMonth:  r.YearMonth(),
				byPostcode: make(map[string]float64),
			}
			idx.buckets[label] = b
		}
		b.Records = append(b.Records, r)
		b.byPostcode[r.Postcode] = r.AvgTemp

		idx.byPostcode[r.Postcode] = append(idx.byPostcode[r.Postcode], r)
	}

	for _, series := range idx.byPostcode {
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].YearMonth().Compare(series[j].YearMonth()) < 0
		})
	}

	return idx, nil
}

// TimeIndex returns the range the index was built over.
func (idx *MonthIndex) TimeIndex() TimeIndex { return idx.timeIndex }

// Len is the number of in-range records.
func (idx *MonthIndex) Len() int { return idx.records }

// Bucket looks a bucket up by label. Missing months return (nil, false).
func (idx *MonthIndex) Bucket(label string) (*MonthBucket, bool) {
	b, ok := idx.buckets[label]
	return b, ok
}

// BucketAt resolves the bucket for a month offset.
func (idx *MonthIndex) BucketAt(offset int) (*MonthBucket, bool) {
	return idx.Bucket(idx.timeIndex.At(offset).Label())
}

// Labels returns the labels of all non-empty months in chronological order.
func (idx *MonthIndex) Labels() []string {
	buckets := make([]*MonthBucket, 0, len(idx.buckets))
	for _, b := range idx.buckets {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].YearMonth.Compare(buckets[j].YearMonth) < 0
	})
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	return labels
}

// MissingMonths lists the in-range months that have no bucket.
func (idx *MonthIndex) MissingMonths() []YearMonth {
	var missing []YearMonth
	for i := 0; i < idx.timeIndex.TotalMonths(); i++ {
		ym := idx.timeIndex.At(i)
		if _, ok := idx.buckets[ym.Label()]; !ok {
			missing = append(missing, ym)
		}
	}
	return missing
}

// HasPostcode reports whether any in-range record exists for postcode.
func (idx *MonthIndex) HasPostcode(postcode string) bool {
	_, ok := idx.byPostcode[postcode]
	return ok
}

// Postcodes returns every postcode with at least one record, sorted.
func (idx *MonthIndex) Postcodes() []string {
	out := make([]string, 0, len(idx.byPostcode))
	for pc := range idx.byPostcode {
		out = append(out, pc)
	}
	sort.Strings(out)
	return out
}

// Series returns the postcode's records from the range start through the given
// month inclusive, in date order. Unknown postcodes yield an empty slice.
func (idx *MonthIndex) Series(postcode string, through YearMonth) []TemperatureRecord {
	all := idx.byPostcode[postcode]
	n := sort.Search(len(all), func(i int) bool {
		return all[i].YearMonth().Compare(through) > 0
	})
	out := make([]TemperatureRecord, n)
	copy(out, all[:n])
	return out
}
