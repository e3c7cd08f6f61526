// Command genmock writes a synthetic boundary collection and temperature table
// in the layout the service loads. Output is deterministic for a given seed,
// so fixtures can be regenerated and diffed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -regions-out data/regions.geojson \
//	  -temps-out data/temperatures.csv \
//	  -per-city 12 -gap 2003-07
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/au-temperature-map/internal/adapter/loader"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
)

// cellSize is the side of each synthetic postcode square, in degrees.
const cellSize = 0.25

// region is one generated postcode with its cell origin.
type region struct {
	postcode string
	lon, lat float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	regionsOut := flag.String("regions-out", "", "output path for the GeoJSON boundary collection")
	tempsOut := flag.String("temps-out", "", "output path for the temperature CSV")
	perCity := flag.Int("per-city", 9, "postcodes generated around each capital")
	startFlag := flag.String("start", "2000-01", "first month (YYYY-MM)")
	endFlag := flag.String("end", "2024-06", "last month (YYYY-MM)")
	gapFlag := flag.String("gap", "", "optional month (YYYY-MM) to leave without records")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *regionsOut == "" || *tempsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -regions-out, -temps-out")
	}
	start, err := domain.ParseYearMonth(*startFlag)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	end, err := domain.ParseYearMonth(*endFlag)
	if err != nil {
		return fmt.Errorf("-end: %w", err)
	}
	ti, err := domain.NewTimeIndex(start, end)
	if err != nil {
		return err
	}
	var gap domain.YearMonth
	if *gapFlag != "" {
		if gap, err = domain.ParseYearMonth(*gapFlag); err != nil {
			return fmt.Errorf("-gap: %w", err)
		}
	}

	if limit := maxPerCity(); *perCity < 1 || *perCity > limit {
		return fmt.Errorf("-per-city must be in [1, %d] so generated postcodes stay distinct", limit)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	regions := generateRegions(*perCity)

	if err := writeRegions(*regionsOut, regions); err != nil {
		return err
	}
	log.Printf("regions: %d -> %s", len(regions), *regionsOut)

	records := generateRecords(rng, regions, ti, gap)
	if err := writeTemperatures(*tempsOut, records); err != nil {
		return err
	}
	log.Printf("records: %d over %d months -> %s", len(records), ti.TotalMonths(), *tempsOut)
	return nil
}

func writeTemperatures(path string, records []domain.TemperatureRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := loader.WriteTemperatures(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temperatures: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// maxPerCity is the largest run of consecutive postcodes that fits after every
// capital's code without reaching the next capital's code or 10000.
func maxPerCity() int {
	codes := make([]int, 0, len(domain.Cities))
	for _, c := range domain.Cities {
		n, err := strconv.Atoi(c.Postcode)
		if err != nil {
			continue
		}
		codes = append(codes, n)
	}
	slices.Sort(codes)
	limit := 10000
	for i, n := range codes {
		next := 10000
		if i+1 < len(codes) {
			next = codes[i+1]
		}
		limit = min(limit, next-n)
	}
	return limit
}

// generateRegions lays a grid of cells south-west of each capital. The first
// cell carries the capital's own postcode so the default selection resolves.
func generateRegions(perCity int) []region {
	side := int(math.Ceil(math.Sqrt(float64(perCity))))
	var out []region
	for _, c := range domain.Cities {
		base, err := strconv.Atoi(c.Postcode)
		if err != nil {
			continue
		}
		for i := range perCity {
			out = append(out, region{
				postcode: fmt.Sprintf("%04d", base+i),
				lon:      c.Lon - float64(i%side)*cellSize,
				lat:      c.Lat - float64(i/side)*cellSize,
			})
		}
	}
	return out
}

func writeRegions(path string, regions []region) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range regions {
		ring := orb.Ring{
			{r.lon, r.lat},
			{r.lon + cellSize, r.lat},
			{r.lon + cellSize, r.lat + cellSize},
			{r.lon, r.lat + cellSize},
			{r.lon, r.lat},
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["POA_CODE"] = r.postcode
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode regions: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// generateRecords models a latitude-dependent mean, a southern-hemisphere
// annual cycle peaking in January, a slow warming trend and noise.
func generateRecords(rng *rand.Rand, regions []region, ti domain.TimeIndex, gap domain.YearMonth) []domain.TemperatureRecord {
	var out []domain.TemperatureRecord
	for off := range ti.TotalMonths() {
		ym := ti.At(off)
		if ym == gap {
			continue
		}
		phase := 2 * math.Pi * float64(ym.Month-1) / 12
		for _, r := range regions {
			mean := 34 + 0.55*r.lat // roughly 28°C in Darwin, 10°C in Hobart
			amp := 3 + 0.2*math.Abs(r.lat+12)
			temp := mean + amp*math.Cos(phase) + 0.002*float64(off) + rng.NormFloat64()*0.8
			out = append(out, domain.TemperatureRecord{
				Postcode: r.postcode,
				Year:     ym.Year,
				Month:    ym.Month,
				AvgTemp:  math.Round(temp*100) / 100,
			})
		}
	}
	return out
}
