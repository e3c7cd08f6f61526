package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateCool_Endpoints(t *testing.T) {
	assert.Equal(t, "#6e40aa", Hex(InterpolateCool(0)))
	assert.Equal(t, "#aff05b", Hex(InterpolateCool(1)))
}

func TestScale_ClampsOutsideDomain(t *testing.T) {
	s, err := NewScale(0, 35)
	require.NoError(t, err)

	assert.Equal(t, s.Hex(0), s.Hex(-12))
	assert.Equal(t, s.Hex(35), s.Hex(48))
	assert.NotEqual(t, s.Hex(10), s.Hex(25))
}

func TestNewScale_RejectsEmptyDomain(t *testing.T) {
	_, err := NewScale(35, 35)
	require.Error(t, err)
	_, err = NewScale(35, 0)
	require.Error(t, err)
}

func TestLegend(t *testing.T) {
	stops := Legend()
	require.Len(t, stops, 7)
	assert.Equal(t, LegendStop{Offset: "0%", Colour: "#aff05b"}, stops[0])
	assert.Equal(t, LegendStop{Offset: "100%", Colour: "#6e40aa"}, stops[6])
}
