// Package effect defines the plugin collaborator driven by the
// conformance checker: the Effect interface, instance descriptors, the
// error vocabulary, and an in-memory reference implementation used by
// the harness and the CLI.
package effect

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fxlab/paramcheck/internal/param"
)

// Effect is the plugin under test. Implementations expose the
// capability/set/get triad the checker needs; lifecycle (open/close) is
// owned by whoever created the instance, not by the checker, which
// receives an already-opened handle.
//
// Every call is a blocking round-trip with a single definitive result.
// SetParameter must distinguish the illegal-argument rejection (via a
// ProtocolError with CodeIllegalArgument) from success and from
// unrelated failures; the checker treats everything else as fatal.
type Effect interface {
	// Descriptor identifies the instance.
	Descriptor() Descriptor

	// Capability reports the instance's current parameter bounds.
	// Fails only via transport-class errors.
	Capability(ctx context.Context) (param.Capability, error)

	// SetParameter applies a value. Returns nil on success, an
	// illegal-argument ProtocolError when the value is out of range,
	// or any other error on transport failure.
	SetParameter(ctx context.Context, v param.Value) error

	// GetParameter returns the last successfully set value for the
	// family. Fails only via transport-class errors.
	GetParameter(ctx context.Context, f param.Family) (param.Value, error)
}

// Descriptor identifies an effect instance under test.
type Descriptor struct {
	// Name is the effect name, e.g. "volume".
	Name string

	// Implementor is the vendor string.
	Implementor string

	// UUID is the implementation identity.
	UUID uuid.UUID
}

// TestName builds the sanitized per-instance test case name, e.g.
//
//	Implementor_Acme_name_volume_UUID_fa81dd00_..._level_0
//
// Every non-alphanumeric rune is mapped to '_' so the name is safe for
// test runners and file systems. Extra suffix parts are appended with
// the same sanitization.
func (d Descriptor) TestName(suffix ...string) string {
	var b strings.Builder
	b.WriteString("Implementor_")
	b.WriteString(d.Implementor)
	b.WriteString("_name_")
	b.WriteString(d.Name)
	b.WriteString("_UUID_")
	b.WriteString(d.UUID.String())
	for _, s := range suffix {
		b.WriteString("_")
		b.WriteString(s)
	}
	return sanitize(b.String())
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		if !isAlnum(r) {
			out[i] = '_'
		}
	}
	return string(out)
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
