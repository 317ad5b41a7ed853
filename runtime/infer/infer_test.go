package infer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carnarez/polars-unpack/core/schema"
	"github.com/carnarez/polars-unpack/runtime/parser"
)

func TestInferFlat(t *testing.T) {
	got, err := Infer([]byte(`{"text": "x", "count": 1, "ratio": 0.5}`))
	require.NoError(t, err)

	want := schema.Struct(
		schema.Field{Name: "text", Type: schema.Scalar(schema.Utf8)},
		schema.Field{Name: "count", Type: schema.Scalar(schema.Int64)},
		schema.Field{Name: "ratio", Type: schema.Scalar(schema.Float64)},
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("type mismatch (-want +got):\n%s", diff)
	}
}

func TestInferNested(t *testing.T) {
	got, err := Infer([]byte(`{"json": {"foo": 1, "bar": [{"baz": "x"}]}}`))
	require.NoError(t, err)

	want := schema.Struct(
		schema.Field{Name: "json", Type: schema.Struct(
			schema.Field{Name: "foo", Type: schema.Scalar(schema.Int64)},
			schema.Field{Name: "bar", Type: schema.List(schema.Struct(
				schema.Field{Name: "baz", Type: schema.Scalar(schema.Utf8)},
			))},
		)},
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("type mismatch (-want +got):\n%s", diff)
	}
}

func TestInferUnification(t *testing.T) {
	tests := []struct {
		name string
		data string
		want schema.Type
	}{
		{
			name: "int widens to float",
			data: "{\"n\": 1}\n{\"n\": 0.5}\n",
			want: schema.Struct(schema.Field{Name: "n", Type: schema.Scalar(schema.Float64)}),
		},
		{
			name: "scalar conflict falls back to utf8",
			data: "{\"n\": 1}\n{\"n\": \"x\"}\n",
			want: schema.Struct(schema.Field{Name: "n", Type: schema.Scalar(schema.Utf8)}),
		},
		{
			name: "union of keys across lines",
			data: "{\"a\": 1}\n{\"b\": \"x\"}\n",
			want: schema.Struct(
				schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)},
				schema.Field{Name: "b", Type: schema.Scalar(schema.Utf8)},
			),
		},
		{
			name: "nulls carry no information",
			data: "null\n{\"a\": 1}\n",
			want: schema.Struct(schema.Field{Name: "a", Type: schema.Scalar(schema.Int64)}),
		},
		{
			name: "bare values wrap in an anonymous field",
			data: "[1, 2]\n",
			want: schema.Struct(schema.Field{Type: schema.List(schema.Scalar(schema.Int64))}),
		},
		{
			name: "empty array defaults its element to utf8",
			data: "{\"a\": []}\n",
			want: schema.Struct(schema.Field{Name: "a", Type: schema.List(schema.Scalar(schema.Utf8))}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Infer([]byte(tt.data))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("type mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"boolean value", `{"flag": true}`},
		{"shape conflict", "{\"a\": 1}\n{\"a\": [1]}\n"},
		{"list element shape conflict", `{"a": [1, [2]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestRender(t *testing.T) {
	root := schema.Struct(
		schema.Field{Name: "text", Type: schema.Scalar(schema.Utf8)},
		schema.Field{Name: "json", Type: schema.Struct(
			schema.Field{Name: "foo", Type: schema.Scalar(schema.Int64)},
			schema.Field{Name: "lines", Type: schema.List(schema.Struct(
				schema.Field{Name: "qty", Type: schema.Scalar(schema.Int64)},
			))},
		)},
	)

	want := `text: Utf8
json: Struct(
    foo: Int64
    lines: List(
        Struct(
            qty: Int64
        )
    )
)`
	assert.Equal(t, want, Render(root))
}

// inferred schemas render back to text the parser accepts, yielding the
// same type tree
func TestRenderRoundTrip(t *testing.T) {
	data := `{"text": "x", "json": {"foo": 1, "bar": [{"baz": "y"}]}}`

	inferred, err := Infer([]byte(data))
	require.NoError(t, err)

	compiled, err := parser.Parse(Render(inferred))
	require.NoError(t, err)

	if diff := cmp.Diff(inferred, compiled.Root); diff != "" {
		t.Errorf("round trip mismatch (-inferred +parsed):\n%s", diff)
	}
}
