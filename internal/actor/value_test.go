package actor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"string", "hello", String("hello")},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"uint64 in range", uint64(9), Int(9)},
		{"bool", true, Bool(true)},
		{"array", []any{"a", 1}, Array{String("a"), Int(1)}},
		{"object", map[string]any{"k": 1}, Object{"k": Int(1)}},
		{"already a value", String("x"), String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToValueRejections(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"null", nil},
		{"float64", 3.14},
		{"float32", float32(1.5)},
		{"uint64 overflow", uint64(1) << 63},
		{"nested null", map[string]any{"k": nil}},
		{"nested float", []any{1, 2.5}},
		{"unsupported type", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToValue(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestObjectSortedKeysUTF16(t *testing.T) {
	// U+10000 encodes as surrogate pair 0xD800 0xDC00 in UTF-16, which
	// sorts before U+E000 despite having larger UTF-8 bytes.
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
		"alpha":      Int(3),
	}

	keys := obj.SortedKeys()
	require.Len(t, keys, 3)
	assert.Equal(t, []string{"alpha", "\U00010000", "\uE000"}, keys)
}

func TestObjectMarshalJSONSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Int(1),
		"alpha": String("x"),
		"beta":  Bool(false),
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"x","beta":false,"zebra":1}`, string(data))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"equal strings", String("a"), String("a"), true},
		{"different strings", String("a"), String("b"), false},
		{"string vs int", String("1"), Int(1), false},
		{"equal ints", Int(5), Int(5), true},
		{"equal bools", Bool(true), Bool(true), true},
		{"equal arrays", Array{Int(1), Int(2)}, Array{Int(1), Int(2)}, true},
		{"array order matters", Array{Int(1), Int(2)}, Array{Int(2), Int(1)}, false},
		{"array length differs", Array{Int(1)}, Array{Int(1), Int(2)}, false},
		{
			"equal objects",
			Object{"a": Int(1), "b": String("x")},
			Object{"b": String("x"), "a": Int(1)},
			true,
		},
		{
			"object extra key",
			Object{"a": Int(1)},
			Object{"a": Int(1), "b": Int(2)},
			false,
		},
		{
			"nested mismatch",
			Object{"a": Array{Int(1)}},
			Object{"a": Array{Int(2)}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
		})
	}
}
