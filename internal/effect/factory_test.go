package effect

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxlab/paramcheck/internal/param"
)

func TestSimFactory(t *testing.T) {
	band := param.Band{MinLevelDB: -100, MaxLevelDB: 0}
	descA := Descriptor{Name: "volume", Implementor: "a", UUID: uuid.MustParse("fa81dd00-588b-11ed-9b6a-0242ac120002")}
	descB := Descriptor{Name: "volume", Implementor: "b", UUID: uuid.MustParse("b6cd2f00-588b-11ed-9b6a-0242ac120002")}

	factory := NewSimFactory(band, []SimInstance{
		{Descriptor: descA, Capability: param.Capability{MaxLevelDB: 0}},
		{Descriptor: descB, Capability: param.Capability{MaxLevelDB: -10}},
	})

	instances := factory.Instances()
	require.Len(t, instances, 2)
	assert.Equal(t, descA, instances[0])
	assert.Equal(t, descB, instances[1])

	eff, closer, err := factory.Create(descB)
	require.NoError(t, err)
	defer closer()

	// Instance B carries its own, narrower capability.
	capability, err := eff.Capability(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -10, capability.MaxLevelDB)

	// The handle comes back already open.
	assert.NoError(t, eff.SetParameter(context.Background(), param.Mute(true)))
}

func TestSimFactory_UnknownInstance(t *testing.T) {
	factory := NewSimFactory(param.DefaultBand, nil)
	_, _, err := factory.Create(Descriptor{UUID: uuid.MustParse("fa81dd00-588b-11ed-9b6a-0242ac120002")})
	assert.Error(t, err)
}
