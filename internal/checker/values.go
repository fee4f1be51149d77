package checker

import "github.com/fxlab/paramcheck/internal/param"

// BoundaryLevels returns the level sweep for a band: one value just
// below the band, the two inclusive edges, one interior value, and one
// value just above. Exercising all five confirms the inequality is
// strict-exclusive outside the band and inclusive at the edges.
//
// The interior value is -100 dB when the band contains it (matching the
// traditional volume sweep), otherwise the band midpoint.
func BoundaryLevels(band param.Band) []param.Value {
	interior := -100
	if !band.Contains(interior) || interior == band.MinLevelDB || interior == band.MaxLevelDB {
		interior = band.MinLevelDB + (band.MaxLevelDB-band.MinLevelDB)/2
	}
	return []param.Value{
		param.Level(band.MinLevelDB - 1),
		param.Level(band.MinLevelDB),
		param.Level(interior),
		param.Level(band.MaxLevelDB),
		param.Level(band.MaxLevelDB + 1),
	}
}

// DefaultValues returns the full default sweep: the boundary levels
// plus both mute variants.
func DefaultValues(band param.Band) []param.Value {
	values := BoundaryLevels(band)
	values = append(values, param.Mute(false), param.Mute(true))
	return values
}
