package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/session"
)

// Paths locates the two input files.
type Paths struct {
	Regions           string
	Temperatures      string
	RegionKeyProperty string
}

// LoadDataset reads both inputs and indexes the records falling inside
// [start, end]. ctx is only checked between the two reads.
func LoadDataset(ctx context.Context, p Paths, start, end domain.YearMonth, logger *slog.Logger) (session.Dataset, error) {
	regions, skipped, err := LoadRegions(p.Regions, p.RegionKeyProperty)
	if err != nil {
		return session.Dataset{}, err
	}
	if skipped > 0 {
		logger.Warn("boundary features skipped", "count", skipped, "key_property", p.RegionKeyProperty)
	}
	if err := ctx.Err(); err != nil {
		return session.Dataset{}, err
	}

	records, err := LoadTemperatures(p.Temperatures)
	if err != nil {
		return session.Dataset{}, err
	}

	ti, err := domain.NewTimeIndex(start, end)
	if err != nil {
		return session.Dataset{}, fmt.Errorf("time range: %w", err)
	}
	idx, err := domain.NewMonthIndex(ti, records)
	if err != nil {
		return session.Dataset{}, fmt.Errorf("index records: %w", err)
	}
	logger.Info("dataset loaded",
		"regions", regions.Len(),
		"records_read", len(records),
		"records_in_range", idx.Len(),
	)
	return session.Dataset{Index: idx, Regions: regions}, nil
}
