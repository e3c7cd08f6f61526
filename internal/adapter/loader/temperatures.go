// Package loader reads the temperature table and the postcode boundary
// collection from disk. Both are loaded once at startup.
package loader

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
)

// Temperature table column names.
const (
	ColPostcode = "Postcode"
	ColYear     = "Year"
	ColMonth    = "Month"
	ColAvgTemp  = "Avg_temp"
)

var columnTypes = map[string]series.Type{
	ColPostcode: series.String,
	ColYear:     series.Int,
	ColMonth:    series.Int,
	ColAvgTemp:  series.Float,
}

// ReadTemperatures parses a CSV with Postcode, Year, Month and Avg_temp
// columns. Postcodes stay text so leading zeros survive; the numeric columns
// are coerced and any row that fails coercion is an error.
func ReadTemperatures(r io.Reader) ([]domain.TemperatureRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(columnTypes),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read temperature csv: %w", df.Err)
	}

	cols := make(map[string]series.Series, len(columnTypes))
	for name := range columnTypes {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", name, col.Err)
		}
		cols[name] = col
	}

	years, err := cols[ColYear].Int()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", ColYear, err)
	}
	months, err := cols[ColMonth].Int()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", ColMonth, err)
	}
	temps := cols[ColAvgTemp].Float()
	postcodes := cols[ColPostcode].Records()

	records := make([]domain.TemperatureRecord, df.Nrow())
	for i := range records {
		if math.IsNaN(temps[i]) {
			return nil, fmt.Errorf("row %d: %s is not a number", i+1, ColAvgTemp)
		}
		if months[i] < 1 || months[i] > 12 {
			return nil, fmt.Errorf("row %d: %w: %d", i+1, domain.ErrInvalidMonth, months[i])
		}
		records[i] = domain.TemperatureRecord{
			Postcode: postcodes[i],
			Year:     years[i],
			Month:    months[i],
			AvgTemp:  temps[i],
		}
	}
	return records, nil
}

// LoadTemperatures reads the temperature table at path.
func LoadTemperatures(path string) ([]domain.TemperatureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open temperatures: %w", err)
	}
	defer f.Close()

	records, err := ReadTemperatures(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// WriteTemperatures writes records in the layout ReadTemperatures accepts.
func WriteTemperatures(w io.Writer, records []domain.TemperatureRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{ColPostcode, ColYear, ColMonth, ColAvgTemp})
	for _, r := range records {
		rows = append(rows, []string{
			r.Postcode,
			fmt.Sprint(r.Year),
			fmt.Sprint(r.Month),
			fmt.Sprintf("%.2f", r.AvgTemp),
		})
	}
	df := dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	return df.WriteCSV(w)
}
