// Package param defines the parameter vocabulary shared by effects and
// the conformance checker: the tagged Value union, the protocol-wide
// level Band, and the per-instance Capability.
package param

import "fmt"

// Family identifies a settable parameter slot within an effect.
//
// The set is closed: every Value belongs to exactly one family, and the
// checker's range predicate switches exhaustively over it.
type Family int

const (
	// FamilyLevel is the attenuation level in dB.
	FamilyLevel Family = iota

	// FamilyMute is the boolean mute switch.
	FamilyMute
)

// String returns the family name used in reports and stored runs.
func (f Family) String() string {
	switch f {
	case FamilyLevel:
		return "level"
	case FamilyMute:
		return "mute"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily converts a stored family name back to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "level":
		return FamilyLevel, nil
	case "mute":
		return FamilyMute, nil
	default:
		return 0, fmt.Errorf("unknown parameter family %q", s)
	}
}

// Value is a tagged union over the two parameter variants:
// Level (an integer dB value) and Mute (a boolean).
//
// The zero Value is Level(0). Construct values with the Level and Mute
// constructors; read them back through the (value, ok) accessors so a
// family mismatch cannot be confused with a real value.
type Value struct {
	family Family
	level  int
	mute   bool
}

// Level constructs a level value in dB.
func Level(db int) Value {
	return Value{family: FamilyLevel, level: db}
}

// Mute constructs a mute value.
func Mute(on bool) Value {
	return Value{family: FamilyMute, mute: on}
}

// Family returns the variant tag.
func (v Value) Family() Family {
	return v.family
}

// LevelDB returns the dB level and true if this is a level value.
func (v Value) LevelDB() (int, bool) {
	if v.family != FamilyLevel {
		return 0, false
	}
	return v.level, true
}

// Muted returns the mute flag and true if this is a mute value.
func (v Value) Muted() (bool, bool) {
	if v.family != FamilyMute {
		return false, false
	}
	return v.mute, true
}

// Equal reports full structural equality: same family and same payload.
// This is the round-trip comparison used by the checker; "no error on
// get" is never enough.
func (v Value) Equal(o Value) bool {
	if v.family != o.family {
		return false
	}
	switch v.family {
	case FamilyLevel:
		return v.level == o.level
	case FamilyMute:
		return v.mute == o.mute
	}
	return false
}

// String renders the value for reports, e.g. "level(-100dB)" or "mute(true)".
func (v Value) String() string {
	switch v.family {
	case FamilyLevel:
		return fmt.Sprintf("level(%ddB)", v.level)
	case FamilyMute:
		return fmt.Sprintf("mute(%t)", v.mute)
	default:
		return fmt.Sprintf("value(family=%d)", int(v.family))
	}
}

// Band is the protocol-wide legal level range, inclusive at both edges.
// It expresses what the wire format itself can carry; a Capability can
// only narrow it further, never widen it.
type Band struct {
	MinLevelDB int
	MaxLevelDB int
}

// DefaultBand is the protocol constant band for the volume parameter
// family: 0 dB (unity) down to -9600 dB (effectively silent).
var DefaultBand = Band{MinLevelDB: -9600, MaxLevelDB: 0}

// Validate rejects an inverted band.
func (b Band) Validate() error {
	if b.MinLevelDB > b.MaxLevelDB {
		return fmt.Errorf("inverted band: min %d dB > max %d dB", b.MinLevelDB, b.MaxLevelDB)
	}
	return nil
}

// Contains reports whether the level lies inside the band, inclusive.
func (b Band) Contains(levelDB int) bool {
	return levelDB >= b.MinLevelDB && levelDB <= b.MaxLevelDB
}

// String renders the band as "[min, max] dB".
func (b Band) String() string {
	return fmt.Sprintf("[%d, %d] dB", b.MinLevelDB, b.MaxLevelDB)
}

// Capability is the instance-reported bound on acceptable level values.
// It is fetched fresh from the effect before every evaluation step and
// is immutable once reported.
type Capability struct {
	MaxLevelDB int
}

// Validate checks the capability against the protocol band.
//
// A capability whose maximum exceeds the band maximum would widen the
// protocol range, which the protocol does not define. Such a report is a
// protocol violation, not a new acceptance rule.
func (c Capability) Validate(band Band) error {
	if c.MaxLevelDB > band.MaxLevelDB {
		return fmt.Errorf("capability max %d dB exceeds band %s", c.MaxLevelDB, band)
	}
	return nil
}
