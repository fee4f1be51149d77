package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/paramcheck/internal/param"
)

func TestBoundaryLevels(t *testing.T) {
	band := param.Band{MinLevelDB: -100, MaxLevelDB: 0}
	values := BoundaryLevels(band)
	require.Len(t, values, 5)

	want := []int{-101, -100, -50, 0, 1}
	for i, v := range values {
		level, ok := v.LevelDB()
		require.True(t, ok, "boundary values are all levels")
		assert.Equal(t, want[i], level)
	}
}

func TestBoundaryLevels_WideBandKeepsTraditionalInterior(t *testing.T) {
	values := BoundaryLevels(param.DefaultBand)

	level, ok := values[2].LevelDB()
	require.True(t, ok)
	assert.Equal(t, -100, level, "-100 dB lies inside the default band")
}

func TestBoundaryLevels_InteriorNeverOnEdge(t *testing.T) {
	bands := []param.Band{
		{MinLevelDB: -100, MaxLevelDB: -100}, // degenerate single point
		{MinLevelDB: -100, MaxLevelDB: -99},  // -100 is the min edge
		{MinLevelDB: -10, MaxLevelDB: 0},     // -100 outside entirely
	}
	for _, band := range bands {
		values := BoundaryLevels(band)
		level, ok := values[2].LevelDB()
		require.True(t, ok)
		assert.GreaterOrEqual(t, level, band.MinLevelDB)
		assert.LessOrEqual(t, level, band.MaxLevelDB)
	}
}

func TestDefaultValues(t *testing.T) {
	band := param.Band{MinLevelDB: -100, MaxLevelDB: 0}
	values := DefaultValues(band)
	require.Len(t, values, 7)

	assert.True(t, values[5].Equal(param.Mute(false)))
	assert.True(t, values[6].Equal(param.Mute(true)))
}
