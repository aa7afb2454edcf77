package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	testCases := []struct {
		name     string
		input    any
		expected int
	}{
		{name: "nil", input: nil, expected: 0},
		{name: "plain int", input: 12, expected: 12},
		{name: "float truncates", input: 7.9, expected: 7},
		{name: "negative clamps", input: -4, expected: 0},
		{name: "NaN", input: math.NaN(), expected: 0},
		{name: "infinity", input: math.Inf(1), expected: 0},
		{name: "numeric string", input: " 15 ", expected: 15},
		{name: "decimal string", input: "3.5", expected: 3},
		{name: "garbage string", input: "abc", expected: 0},
		{name: "empty string", input: "", expected: 0},
		{name: "true", input: true, expected: 1},
		{name: "json number", input: json.Number("22"), expected: 22},
		{name: "unknown type", input: []int{1}, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Coerce(tc.input))
		})
	}
}

func TestCoerceJSON(t *testing.T) {
	assert.Equal(t, 9, CoerceJSON(json.RawMessage(`9`)))
	assert.Equal(t, 9, CoerceJSON(json.RawMessage(`"9"`)))
	assert.Equal(t, 0, CoerceJSON(json.RawMessage(`null`)))
	assert.Equal(t, 0, CoerceJSON(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, 0, CoerceJSON(nil))
}
