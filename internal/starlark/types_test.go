package starlark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{name: "string", input: "hello", want: `"hello"`},
		{name: "int", input: 42, want: "42"},
		{name: "uint64", input: uint64(7), want: "7"},
		{name: "whole json number", input: float64(3), want: "3"},
		{name: "fractional json number", input: 3.5, want: "3.5"},
		{name: "bool", input: false, want: "False"},
		{name: "nil", input: nil, want: "None"},
		{name: "string slice", input: []string{"a", "b"}, want: `["a", "b"]`},
		{name: "nested", input: []any{"x", map[string]any{"k": true}}, want: `["x", {"k": True}]`},
		{name: "map keys sorted", input: map[string]any{"b": 2.0, "a": []any{}}, want: `{"a": [], "b": 2}`},
		{name: "yaml date", input: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), want: `"2025-01-02T00:00:00Z"`},
		{name: "unsupported", input: struct{}{}, wantErr: true},
		{name: "unsupported nested", input: map[string]any{"k": []any{struct{}{}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromStarlark(t *testing.T) {
	dict := starlark.NewDict(2)
	require.NoError(t, dict.SetKey(starlark.String("n"), starlark.MakeInt(3)))
	require.NoError(t, dict.SetKey(starlark.String("tags"), starlark.NewList([]starlark.Value{starlark.String("a")})))

	badKey := starlark.NewDict(1)
	require.NoError(t, badKey.SetKey(starlark.MakeInt(1), starlark.None))

	tests := []struct {
		name    string
		input   starlark.Value
		want    any
		wantErr bool
	}{
		{name: "string", input: starlark.String("hello"), want: "hello"},
		{name: "int", input: starlark.MakeInt(42), want: int64(42)},
		{name: "big int", input: starlark.MakeInt64(1 << 62).Mul(starlark.MakeInt(8)), want: "36893488147419103232"},
		{name: "float", input: starlark.Float(3.14), want: 3.14},
		{name: "bool", input: starlark.Bool(true), want: true},
		{name: "none", input: starlark.None, want: nil},
		{name: "tuple", input: starlark.Tuple{starlark.String("a"), starlark.MakeInt(1)}, want: []any{"a", int64(1)}},
		{name: "dict", input: dict, want: map[string]any{"n": int64(3), "tags": []any{"a"}}},
		{name: "non-string key", input: badKey, wantErr: true},
		{name: "function", input: starlark.NewBuiltin("f", nil), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fromStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
