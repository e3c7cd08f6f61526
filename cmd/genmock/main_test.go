package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxPerCity(t *testing.T) {
	// Canberra 2600 and Melbourne 3000 are the closest pair.
	assert.Equal(t, 400, maxPerCity())
}

func TestGenerateRegions_DistinctPostcodesAtLimit(t *testing.T) {
	regions := generateRegions(maxPerCity())

	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		require.False(t, seen[r.postcode], "duplicate postcode %s", r.postcode)
		seen[r.postcode] = true
	}
	assert.True(t, seen["2999"])
	assert.True(t, seen["3000"], "Melbourne keeps its own code")
}

func TestWriteTemperatures_ReportsCreateError(t *testing.T) {
	err := writeTemperatures(t.TempDir()+"/missing/dir/t.csv", nil)
	assert.Error(t, err)
}
