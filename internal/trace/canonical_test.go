package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"negative int", -9600, "-9600"},
		{"int64", int64(7), "7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"no html escaping", "a<b>&c", `"a<b>&c"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Forbidden(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err, "null forbidden")

	_, err = MarshalCanonical(3.14)
	assert.Error(t, err, "floats forbidden")

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err, "unsupported types forbidden")
}

func TestMarshalCanonical_KeyOrder(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"verdict": "accepted",
		"kind":    "set",
		"seq":     int64(2),
		"value":   "level(-1dB)",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"set","seq":2,"value":"level(-1dB)","verdict":"accepted"}`, string(got))
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"events": []any{
			map[string]any{"seq": int64(1), "kind": "capability"},
		},
		"name": "run",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"events":[{"kind":"capability","seq":1}],"name":"run"}`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form.
	got, err := MarshalCanonical("caf\u0065\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(got))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	input := map[string]any{"b": int64(2), "a": int64(1), "c": "x"}
	first, err := MarshalCanonical(input)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalCanonical_ErrorPathNames(t *testing.T) {
	_, err := MarshalCanonical([]any{1, nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["x"]`)
}
