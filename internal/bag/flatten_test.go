package bag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenRange(t *testing.T) {
	nested := Bag{"field": Bag{"low": Float(100), "high": Float(200)}}
	flat, err := Flatten(nested)
	require.NoError(t, err)
	assert.Equal(t, Bag{"field.low": Float(100), "field.high": Float(200)}, flat)

	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestFlattenListOfBags(t *testing.T) {
	nested := Bag{"intervals": List{
		Bag{"low": Float(1), "high": Float(2)},
		Bag{"low": Float(3), "high": Float(4)},
	}}
	flat, err := Flatten(nested)
	require.NoError(t, err)
	assert.Equal(t, Bag{
		"intervals.0.low":  Float(1),
		"intervals.0.high": Float(2),
		"intervals.1.low":  Float(3),
		"intervals.1.high": Float(4),
	}, flat)

	back, err := Unflatten(flat)
	require.NoError(t, err)
	indexed, ok := back["intervals"].(Bag)
	require.True(t, ok, "unflatten leaves index keys as a bag")
	list, ok := IndexedList(indexed)
	require.True(t, ok)
	assert.Equal(t, nested["intervals"], list)
}

func TestFlattenKeepsScalarListsAndEmptyContainers(t *testing.T) {
	nested := Bag{
		"formats": Strings("Nexus", "CanSAS"),
		"empty":   Bag{},
		"none":    List{},
	}
	flat, err := Flatten(nested)
	require.NoError(t, err)
	assert.Equal(t, nested, flat)

	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestFlattenRejectsDottedKeys(t *testing.T) {
	_, err := Flatten(Bag{"a.b": Int(1)})
	require.Error(t, err)

	_, err = Flatten(Bag{"a": Bag{"": Int(1)}})
	require.Error(t, err)
}

func TestUnflattenIdempotentOnNested(t *testing.T) {
	nested := Bag{"move": Bag{"detector_names": Bag{"LAB": String("rear-detector")}}}
	back, err := Unflatten(nested)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestUnflattenMergesMixedForms(t *testing.T) {
	mixed := Bag{
		"move":               Bag{"sample_offset": Float(1)},
		"move.monitor_names": Bag{"4": String("monitor4")},
	}
	back, err := Unflatten(mixed)
	require.NoError(t, err)
	assert.Equal(t, Bag{"move": Bag{
		"sample_offset": Float(1),
		"monitor_names": Bag{"4": String("monitor4")},
	}}, back)
}

func TestUnflattenConflicts(t *testing.T) {
	_, err := Unflatten(Bag{"a": Int(1), "a.b": Int(2)})
	require.Error(t, err)

	_, err = Unflatten(Bag{"a..b": Int(1)})
	require.Error(t, err)
}

func TestUnflattenKeepsIndexKeyedBags(t *testing.T) {
	names := Bag{"0": String("monitor0"), "1": String("monitor1")}

	back, err := Unflatten(Bag{"monitor_names": names})
	require.NoError(t, err)
	assert.Equal(t, Bag{"monitor_names": names}, back)

	back, err = Unflatten(Bag{"monitor_names.0": String("monitor0"), "monitor_names.1": String("monitor1")})
	require.NoError(t, err)
	assert.Equal(t, Bag{"monitor_names": names}, back)
}

func TestIndexedList(t *testing.T) {
	tests := []struct {
		name string
		in   Bag
		want List
		ok   bool
	}{
		{"contiguous", Bag{"1": Int(2), "0": Int(1)}, List{Int(1), Int(2)}, true},
		{"gap", Bag{"0": Int(1), "2": Int(2)}, nil, false},
		{"leading zero", Bag{"0": Int(1), "01": Int(2)}, nil, false},
		{"negative", Bag{"-1": Int(1)}, nil, false},
		{"names", Bag{"LAB": Int(1)}, nil, false},
		{"empty", Bag{}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IndexedList(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
