// Command validate checks a temperature table and boundary collection for the
// problems the map would otherwise hide: duplicate records, months with no
// data, postcodes that never join to a region, and values outside the colour
// scale.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -regions data/regions.geojson \
//	  -temps data/temperatures.csv \
//	  -start 2000-01 -end 2024-06
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/au-temperature-map/internal/adapter/loader"
	"github.com/couchcryptid/au-temperature-map/internal/domain"
	"github.com/couchcryptid/au-temperature-map/internal/geo"
)

// maxListed caps how many offending keys a phase prints.
const maxListed = 10

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	regionsPath := flag.String("regions", sharedcfg.EnvOrDefault("REGIONS_PATH", "data/regions.geojson"), "GeoJSON boundary collection")
	tempsPath := flag.String("temps", sharedcfg.EnvOrDefault("TEMPERATURES_PATH", "data/temperatures.csv"), "temperature CSV")
	keyProp := flag.String("key-property", sharedcfg.EnvOrDefault("REGION_KEY_PROPERTY", "POA_CODE"), "feature property holding the postcode")
	startFlag := flag.String("start", sharedcfg.EnvOrDefault("START_MONTH", "2000-01"), "first month (YYYY-MM)")
	endFlag := flag.String("end", sharedcfg.EnvOrDefault("END_MONTH", "2024-06"), "last month (YYYY-MM)")
	minTemp := flag.Float64("min-temp", envFloat("MIN_TEMP", 0), "colour scale minimum")
	maxTemp := flag.Float64("max-temp", envFloat("MAX_TEMP", 35), "colour scale maximum")
	strict := flag.Bool("strict", false, "treat warnings as failures")
	flag.Parse()

	start, err := domain.ParseYearMonth(*startFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: -start: %v\n", err)
		os.Exit(1)
	}
	end, err := domain.ParseYearMonth(*endFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: -end: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(*regionsPath, *tempsPath, *keyProp, start, end, *minTemp, *maxTemp, *strict))
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, strconv.FormatFloat(def, 'f', -1, 64)), 64)
	if err != nil {
		return def
	}
	return v
}

func run(regionsPath, tempsPath, keyProp string, start, end domain.YearMonth, minTemp, maxTemp float64, strict bool) int {
	fmt.Println("=== Temperature Dataset Validation ===")
	fmt.Println()

	regions, skipped, err := loader.LoadRegions(regionsPath, keyProp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load regions: %v\n", err)
		return 1
	}
	records, err := loader.LoadTemperatures(tempsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load temperatures: %v\n", err)
		return 1
	}
	ti, err := domain.NewTimeIndex(start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: time range: %v\n", err)
		return 1
	}
	idx, err := domain.NewMonthIndex(ti, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: index: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateUniqueness(records),
		validateCoverage(idx),
		validateJoin(idx, regions, skipped),
		validateScale(idx, minTemp, maxTemp),
		validateSelection(idx, regions),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		ok := p.passed() && (!strict || len(p.warnings) == 0)
		status := "\033[32mPASS\033[0m"
		if !ok {
			status = fmt.Sprintf("\033[31mFAIL (%d errors, %d warnings)\033[0m", len(p.errors), len(p.warnings))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mWARN (%d)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d read, %d in range; %d months; %d regions (%d features skipped)\n",
		len(records), idx.Len(), ti.TotalMonths(), regions.Len(), skipped)

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [E%d] %s\n", i+1, e)
		}
		for i, w := range p.warnings {
			fmt.Printf("  [W%d] %s\n", i+1, w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateUniqueness requires one record per (postcode, year, month).
func validateUniqueness(records []domain.TemperatureRecord) *phase {
	p := &phase{name: "One record per postcode-month"}
	type key struct {
		postcode string
		ym       domain.YearMonth
	}
	seen := make(map[key]int, len(records))
	for i, r := range records {
		k := key{r.Postcode, r.YearMonth()}
		if first, dup := seen[k]; dup {
			p.errorf("row %d duplicates row %d (%s %s)", i+1, first+1, r.Postcode, r.YearMonth().Label())
			continue
		}
		seen[k] = i
	}
	return p
}

// validateCoverage warns about months that will render with no fill at all.
func validateCoverage(idx *domain.MonthIndex) *phase {
	p := &phase{name: "Every month has records"}
	missing := idx.MissingMonths()
	for i, ym := range missing {
		if i == maxListed {
			p.warnf("... and %d more", len(missing)-maxListed)
			break
		}
		p.warnf("no records for %s; regions render unfilled", ym.Label())
	}
	if idx.Len() == 0 {
		p.errorf("no records fall inside %s to %s", idx.TimeIndex().Start().Label(), idx.TimeIndex().End().Label())
	}
	return p
}

// validateJoin reports postcodes that appear on only one side.
func validateJoin(idx *domain.MonthIndex, regions *geo.RegionSet, skipped int) *phase {
	p := &phase{name: "Postcodes join to regions"}
	if skipped > 0 {
		p.warnf("%d boundary features had no key or no area geometry", skipped)
	}

	var tableOnly []string
	for _, pc := range idx.Postcodes() {
		if _, ok := regions.Lookup(pc); !ok {
			tableOnly = append(tableOnly, pc)
		}
	}
	var mapOnly []string
	for _, key := range regions.Keys() {
		if !idx.HasPostcode(key) {
			mapOnly = append(mapOnly, key)
		}
	}

	if len(tableOnly) > 0 {
		p.warnf("%d postcodes have records but no region: %s", len(tableOnly), sample(tableOnly))
	}
	if len(mapOnly) > 0 {
		p.warnf("%d regions have no records and always use the fallback average: %s", len(mapOnly), sample(mapOnly))
	}
	if len(mapOnly) == regions.Len() {
		p.errorf("no region has any records; check the key property")
	}
	return p
}

// validateScale warns about values the colour scale will clamp.
func validateScale(idx *domain.MonthIndex, minTemp, maxTemp float64) *phase {
	p := &phase{name: "Values inside colour scale"}
	if minTemp >= maxTemp {
		p.errorf("scale minimum %.1f is not below maximum %.1f", minTemp, maxTemp)
		return p
	}
	below, above := 0, 0
	for _, label := range idx.Labels() {
		b, _ := idx.Bucket(label)
		for _, r := range b.Records {
			switch {
			case r.AvgTemp < minTemp:
				below++
			case r.AvgTemp > maxTemp:
				above++
			}
		}
	}
	if below > 0 {
		p.warnf("%d records below %.1f°C are drawn at the cold end", below, minTemp)
	}
	if above > 0 {
		p.warnf("%d records above %.1f°C are drawn at the hot end", above, maxTemp)
	}
	return p
}

// validateSelection checks that every selectable city can be plotted and pinned.
func validateSelection(idx *domain.MonthIndex, regions *geo.RegionSet) *phase {
	p := &phase{name: "Selectable cities have data"}
	for _, c := range domain.Cities {
		if !idx.HasPostcode(c.Postcode) {
			p.warnf("%s (%s) has no records; its trace will be empty", c.Name, c.Postcode)
		}
		if _, ok := regions.Lookup(c.Postcode); !ok {
			p.warnf("%s (%s) has no region; tooltips will show the fallback", c.Name, c.Postcode)
		}
	}
	return p
}

func sample(keys []string) string {
	sort.Strings(keys)
	if len(keys) > maxListed {
		return fmt.Sprintf("%v ...", keys[:maxListed])
	}
	return fmt.Sprint(keys)
}
