package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNames(t *testing.T) {
	assert.Equal(t, []string{"default", "first", "join", "lower", "match", "sub", "upper"}, FilterNames())
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "string", input: "paris", expected: "paris"},
		{name: "int", input: 5, expected: "5"},
		{name: "int64", input: int64(42), expected: "42"},
		{name: "whole float", input: float64(7), expected: "7"},
		{name: "float", input: 2.5, expected: "2.5"},
		{name: "bool", input: true, expected: "true"},
		{name: "nil", input: nil, expected: ""},
		{name: "map", input: map[string]any{"b": 1, "a": "x"}, expected: `{"a":"x","b":1}`},
		{name: "list", input: []any{"a", 1}, expected: `["a",1]`},
		{name: "any keys", input: map[any]any{"k": []any{true}}, expected: `{"k":[true]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.input))
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		input    any
		expected Kind
	}{
		{input: nil, expected: KindNone},
		{input: "x", expected: KindScalar},
		{input: 3, expected: KindScalar},
		{input: []byte("raw"), expected: KindScalar},
		{input: []any{1}, expected: KindList},
		{input: []string{"a"}, expected: KindList},
		{input: map[string]any{}, expected: KindMap},
		{input: map[string]string{}, expected: KindMap},
		{input: (*int)(nil), expected: KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.input))
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bool
	}{
		{name: "nil", input: nil},
		{name: "false", input: false},
		{name: "true", input: true, expected: true},
		{name: "empty string", input: ""},
		{name: "string", input: "active", expected: true},
		{name: "zero", input: 0},
		{name: "zero float", input: 0.0},
		{name: "number", input: int64(3), expected: true},
		{name: "empty list", input: []any{}},
		{name: "list", input: []any{nil}, expected: true},
		{name: "empty map", input: map[string]any{}},
		{name: "map", input: map[string]any{"a": 1}, expected: true},
		{name: "nil pointer", input: (*int)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.input))
		})
	}
}
