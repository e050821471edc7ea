package internal

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	starlarkLib "go.starlark.net/starlark"
)

func TestFromStarlark(t *testing.T) {
	t.Parallel()

	set := starlarkLib.NewSet(1)
	require.NoError(t, set.Insert(starlarkLib.String("a")))

	dict := starlarkLib.NewDict(2)
	require.NoError(t, dict.SetKey(starlarkLib.String("k"), starlarkLib.MakeInt(1)))
	require.NoError(t, dict.SetKey(starlarkLib.MakeInt(2), starlarkLib.String("two")))

	tests := []struct {
		name    string
		input   starlarkLib.Value
		want    any
		wantErr bool
	}{
		{name: "nil", input: nil, want: nil},
		{name: "none", input: starlarkLib.None, want: nil},
		{name: "bool", input: starlarkLib.True, want: true},
		{name: "int", input: starlarkLib.MakeInt(42), want: int64(42)},
		{name: "float", input: starlarkLib.Float(1.5), want: 1.5},
		{name: "string", input: starlarkLib.String("hi"), want: "hi"},
		{name: "bytes", input: starlarkLib.Bytes("b"), want: []byte("b")},
		{
			name:  "list",
			input: starlarkLib.NewList([]starlarkLib.Value{starlarkLib.MakeInt(1), starlarkLib.String("x")}),
			want:  []any{int64(1), "x"},
		},
		{name: "tuple", input: starlarkLib.Tuple{starlarkLib.True}, want: []any{true}},
		{name: "set", input: set, want: []any{"a"}},
		{name: "dict", input: dict, want: map[string]any{"k": int64(1), "2": "two"}},
		{name: "function", input: starlarkLib.NewBuiltin("f", nil), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromStarlark(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToStarlark(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("file:///scripts/foo.star")
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{name: "nil", input: nil, want: "None"},
		{name: "bool", input: true, want: "True"},
		{name: "int", input: 7, want: "7"},
		{name: "int32", input: int32(7), want: "7"},
		{name: "int64", input: int64(7), want: "7"},
		{name: "uint64", input: uint64(7), want: "7"},
		{name: "float64", input: 2.5, want: "2.5"},
		{name: "string", input: "hi", want: `"hi"`},
		{name: "url", input: u, want: `"file:///scripts/foo.star"`},
		{name: "string slice", input: []string{"a", "b"}, want: `["a", "b"]`},
		{name: "any slice", input: []any{1, "x", nil}, want: `[1, "x", None]`},
		{name: "map", input: map[string]any{"k": []any{true}}, want: `{"k": [True]}`},
		{name: "starlark value", input: starlarkLib.MakeInt(3), want: "3"},
		{name: "unsupported", input: struct{}{}, wantErr: true},
		{name: "nested unsupported", input: []any{struct{}{}}, wantErr: true},
		{name: "map unsupported", input: map[string]any{"k": make(chan int)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ToStarlark(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRoundTripNested(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"name":  "Foo",
		"count": int64(3),
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"ok": true},
	}
	v, err := ToStarlark(in)
	require.NoError(t, err)
	out, err := FromStarlark(v)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
