// Package catalog loads the set of effect instances a conformance run
// targets from a declarative CUE file. The catalog plays the role of
// instance enumeration: descriptors plus the capability each simulated
// instance reports.
package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/uuid"

	"github.com/fxlab/paramcheck/internal/effect"
	"github.com/fxlab/paramcheck/internal/param"
)

// Instance is one catalog entry: an effect descriptor plus the
// capability its simulated instance reports and any injected faults.
type Instance struct {
	Descriptor effect.Descriptor
	Capability param.Capability
	Faults     []effect.Fault
}

// Catalog is a compiled instance catalog.
type Catalog struct {
	// Band is the protocol band the catalog declares; zero value means
	// param.DefaultBand.
	Band param.Band

	// Instances are the entries in declaration order.
	Instances []Instance
}

// Load reads and compiles a catalog CUE file.
//
// Expected shape:
//
//	band: {minLevelDb: -9600, maxLevelDb: 0}   // optional
//	instances: {
//		nullfx: {
//			implementor: "Acme"
//			uuid:        "fa81dd00-588b-11ed-9b6a-0242ac120002"
//			capability: maxLevelDb: 0
//			faults: ["corrupt_get"]            // optional
//		}
//	}
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// Compile parses a CUE value into a Catalog. Uses the CUE SDK's Go API
// directly, never a CLI subprocess.
func Compile(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cat := &Catalog{Band: param.DefaultBand}

	bandVal := v.LookupPath(cue.ParsePath("band"))
	if bandVal.Exists() {
		band, err := parseBand(bandVal)
		if err != nil {
			return nil, err
		}
		cat.Band = band
	}
	if err := cat.Band.Validate(); err != nil {
		return nil, &CompileError{Field: "band", Message: err.Error(), Pos: bandVal.Pos()}
	}

	instVal := v.LookupPath(cue.ParsePath("instances"))
	if !instVal.Exists() {
		return nil, &CompileError{
			Field:   "instances",
			Message: "instances is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := instVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		inst, err := parseInstance(iter.Selector().String(), iter.Value(), cat.Band)
		if err != nil {
			return nil, err
		}
		cat.Instances = append(cat.Instances, inst)
	}
	if len(cat.Instances) == 0 {
		return nil, &CompileError{
			Field:   "instances",
			Message: "at least one instance is required",
			Pos:     instVal.Pos(),
		}
	}

	return cat, nil
}

func parseBand(v cue.Value) (param.Band, error) {
	lo, err := intField(v, "minLevelDb", true)
	if err != nil {
		return param.Band{}, err
	}
	hi, err := intField(v, "maxLevelDb", true)
	if err != nil {
		return param.Band{}, err
	}
	return param.Band{MinLevelDB: lo, MaxLevelDB: hi}, nil
}

func parseInstance(name string, v cue.Value, band param.Band) (Instance, error) {
	implVal := v.LookupPath(cue.ParsePath("implementor"))
	if !implVal.Exists() {
		return Instance{}, &CompileError{
			Field:   name + ".implementor",
			Message: "implementor is required",
			Pos:     v.Pos(),
		}
	}
	implementor, err := implVal.String()
	if err != nil {
		return Instance{}, formatCUEError(err)
	}

	uuidVal := v.LookupPath(cue.ParsePath("uuid"))
	if !uuidVal.Exists() {
		return Instance{}, &CompileError{
			Field:   name + ".uuid",
			Message: "uuid is required",
			Pos:     v.Pos(),
		}
	}
	uuidStr, err := uuidVal.String()
	if err != nil {
		return Instance{}, formatCUEError(err)
	}
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		return Instance{}, &CompileError{
			Field:   name + ".uuid",
			Message: fmt.Sprintf("invalid uuid %q: %v", uuidStr, err),
			Pos:     uuidVal.Pos(),
		}
	}

	maxLevel, err := intField(v.LookupPath(cue.ParsePath("capability")), "maxLevelDb", true)
	if err != nil {
		return Instance{}, err
	}
	capability := param.Capability{MaxLevelDB: maxLevel}
	if err := capability.Validate(band); err != nil {
		return Instance{}, &CompileError{
			Field:   name + ".capability",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	var faults []effect.Fault
	faultsVal := v.LookupPath(cue.ParsePath("faults"))
	if faultsVal.Exists() {
		fIter, err := faultsVal.List()
		if err != nil {
			return Instance{}, formatCUEError(err)
		}
		for fIter.Next() {
			s, err := fIter.Value().String()
			if err != nil {
				return Instance{}, formatCUEError(err)
			}
			f, err := effect.ParseFault(s)
			if err != nil {
				return Instance{}, &CompileError{
					Field:   name + ".faults",
					Message: err.Error(),
					Pos:     faultsVal.Pos(),
				}
			}
			faults = append(faults, f)
		}
	}

	return Instance{
		Descriptor: effect.Descriptor{
			Name:        name,
			Implementor: implementor,
			UUID:        id,
		},
		Capability: capability,
		Faults:     faults,
	}, nil
}

// intField extracts an int64 field, erroring when required and absent.
func intField(v cue.Value, field string, required bool) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return 0, &CompileError{
				Field:   field,
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// Factory builds a SimFactory over the catalog's instances.
func (c *Catalog) Factory() *effect.SimFactory {
	instances := make([]effect.SimInstance, len(c.Instances))
	for i, inst := range c.Instances {
		instances[i] = effect.SimInstance{
			Descriptor: inst.Descriptor,
			Capability: inst.Capability,
			Faults:     inst.Faults,
		}
	}
	return effect.NewSimFactory(c.Band, instances)
}
