package effect

import (
	"fmt"

	"github.com/fxlab/paramcheck/internal/param"
)

// Factory enumerates effect instances and creates opened handles.
// This is the harness's source of plugins-under-test; the checker never
// talks to a factory, it only receives already-opened effects.
type Factory interface {
	// Instances lists the descriptors of every available instance.
	Instances() []Descriptor

	// Create opens the instance with the given descriptor.
	// The caller owns the returned closer.
	Create(d Descriptor) (Effect, func() error, error)
}

// SimInstance pairs a descriptor with the capability its SimEffect
// will report.
type SimInstance struct {
	Descriptor Descriptor
	Capability param.Capability
	Faults     []Fault
}

// SimFactory is a Factory over configured SimEffect instances.
type SimFactory struct {
	band      param.Band
	instances []SimInstance
}

// NewSimFactory creates a factory for the given band and instances.
func NewSimFactory(band param.Band, instances []SimInstance) *SimFactory {
	return &SimFactory{band: band, instances: instances}
}

// Instances implements Factory.
func (f *SimFactory) Instances() []Descriptor {
	out := make([]Descriptor, len(f.instances))
	for i, inst := range f.instances {
		out[i] = inst.Descriptor
	}
	return out
}

// Create implements Factory. The returned effect is already open.
func (f *SimFactory) Create(d Descriptor) (Effect, func() error, error) {
	for _, inst := range f.instances {
		if inst.Descriptor.UUID != d.UUID {
			continue
		}
		sim := NewSim(SimConfig{
			Descriptor: inst.Descriptor,
			Band:       f.band,
			Capability: inst.Capability,
			Faults:     inst.Faults,
		})
		if err := sim.Open(); err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", d.Name, err)
		}
		return sim, sim.Close, nil
	}
	return nil, nil, fmt.Errorf("no instance with UUID %s", d.UUID)
}
