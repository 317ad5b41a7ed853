package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carnarez/polars-unpack/core/errors"
	"github.com/carnarez/polars-unpack/core/schema"
)

func mustParse(t *testing.T, source string, opts ...Option) *schema.CompiledSchema {
	t.Helper()
	compiled, err := Parse(source, opts...)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return compiled
}

func TestSimpleDatatypes(t *testing.T) {
	tests := []struct {
		source string
		want   schema.ScalarKind
	}{
		{"Int8", schema.Int8},
		{"Int16", schema.Int16},
		{"Int32", schema.Int32},
		{"Int64", schema.Int64},
		{"Uint8", schema.UInt8},
		{"Uint16", schema.UInt16},
		{"Uint32", schema.UInt32},
		{"Uint64", schema.UInt64},
		{"Float32", schema.Float32},
		{"Float64", schema.Float64},
		{"Utf8", schema.Utf8},
		{"Float", schema.Float64},
		{"Real", schema.Float64},
		{"Int", schema.Int64},
		{"Integer", schema.Int64},
		{"String", schema.Utf8},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			compiled := mustParse(t, tt.source)
			want := schema.Struct(schema.Field{Name: "", Type: schema.Scalar(tt.want)})
			if diff := cmp.Diff(want, compiled.Root); diff != "" {
				t.Errorf("root mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimpleNestedDatatypes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   schema.Type
	}{
		{
			name:   "anonymous list of scalars",
			source: "List(Int8)",
			want:   schema.Struct(schema.Field{Type: schema.List(schema.Scalar(schema.Int8))}),
		},
		{
			name:   "anonymous struct",
			source: "Struct(foo: Int8, bar: Int8)",
			want: schema.Struct(schema.Field{Type: schema.Struct(
				schema.Field{Name: "foo", Type: schema.Scalar(schema.Int8)},
				schema.Field{Name: "bar", Type: schema.Scalar(schema.Int8)},
			)}),
		},
		{
			name:   "list nested in list",
			source: "List(List(Int8))",
			want: schema.Struct(schema.Field{
				Type: schema.List(schema.List(schema.Scalar(schema.Int8))),
			}),
		},
		{
			name:   "list nested in struct",
			source: "Struct(foo: List(Int8))",
			want: schema.Struct(schema.Field{Type: schema.Struct(
				schema.Field{Name: "foo", Type: schema.List(schema.Scalar(schema.Int8))},
			)}),
		},
		{
			name:   "struct nested in list",
			source: "List(Struct(foo: Int8, bar: Int8))",
			want: schema.Struct(schema.Field{
				Type: schema.List(schema.Struct(
					schema.Field{Name: "foo", Type: schema.Scalar(schema.Int8)},
					schema.Field{Name: "bar", Type: schema.Scalar(schema.Int8)},
				)),
			}),
		},
		{
			name:   "struct nested in struct",
			source: "Struct(foo: Struct(bar: Int8))",
			want: schema.Struct(schema.Field{Type: schema.Struct(
				schema.Field{Name: "foo", Type: schema.Struct(
					schema.Field{Name: "bar", Type: schema.Scalar(schema.Int8)},
				)},
			)}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := mustParse(t, tt.source)
			if diff := cmp.Diff(tt.want, compiled.Root); diff != "" {
				t.Errorf("root mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDelimiters(t *testing.T) {
	// any opening character may be closed by any closing character
	sources := []string{
		"Struct(foo: Int8)",
		"Struct[foo: Int8]",
		"Struct{foo: Int8}",
		"Struct<foo: Int8>",
		"Struct(foo: Int8]", // mixed!?
	}
	want := schema.Struct(schema.Field{Type: schema.Struct(
		schema.Field{Name: "foo", Type: schema.Scalar(schema.Int8)},
	)})
	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			compiled := mustParse(t, source)
			if diff := cmp.Diff(want, compiled.Root); diff != "" {
				t.Errorf("root mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindings(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		opts        []Option
		wantBinds   []schema.Binding
		wantColumns []string
		wantDTypes  []schema.ScalarKind
	}{
		{
			name:        "flat attributes",
			source:      "text: Utf8, count: Int64",
			wantBinds:   []schema.Binding{{Path: "text", RenamedTo: "text"}, {Path: "count", RenamedTo: "count"}},
			wantColumns: []string{"text", "count"},
			wantDTypes:  []schema.ScalarKind{schema.Utf8, schema.Int64},
		},
		{
			name:   "nested struct paths",
			source: "text: Utf8, json: Struct(foo: Int64, bar: Int64)",
			wantBinds: []schema.Binding{
				{Path: "text", RenamedTo: "text"},
				{Path: "json.foo", RenamedTo: "foo"},
				{Path: "json.bar", RenamedTo: "bar"},
			},
			wantColumns: []string{"text", "foo", "bar"},
			wantDTypes:  []schema.ScalarKind{schema.Utf8, schema.Int64, schema.Int64},
		},
		{
			name:   "list element segments are elided",
			source: "text: Utf8, json: List(Struct(foo: Int64, bar: Int64))",
			wantBinds: []schema.Binding{
				{Path: "text", RenamedTo: "text"},
				{Path: "json.foo", RenamedTo: "foo"},
				{Path: "json.bar", RenamedTo: "bar"},
			},
			wantColumns: []string{"text", "foo", "bar"},
			wantDTypes:  []schema.ScalarKind{schema.Utf8, schema.Int64, schema.Int64},
		},
		{
			name:        "anonymous list element binds the list path",
			source:      "json: List(Int64)",
			wantBinds:   []schema.Binding{{Path: "json", RenamedTo: "json"}},
			wantColumns: []string{"json"},
			wantDTypes:  []schema.ScalarKind{schema.Int64},
		},
		{
			name:        "renamed attribute",
			source:      "attr=renamed: UInt8",
			wantBinds:   []schema.Binding{{Path: "attr", RenamedTo: "renamed"}},
			wantColumns: []string{"renamed"},
			wantDTypes:  []schema.ScalarKind{schema.UInt8},
		},
		{
			name:   "renamed leaf inside nested struct",
			source: "json: Struct(attr: UInt8, attr2=renamed: UInt8)",
			wantBinds: []schema.Binding{
				{Path: "json.attr", RenamedTo: "attr"},
				{Path: "json.attr2", RenamedTo: "renamed"},
			},
			wantColumns: []string{"attr", "renamed"},
			wantDTypes:  []schema.ScalarKind{schema.UInt8, schema.UInt8},
		},
		{
			name:        "custom separator",
			source:      "a: Struct(b: Int8)",
			opts:        []Option{WithSeparator("/")},
			wantBinds:   []schema.Binding{{Path: "a/b", RenamedTo: "b"}},
			wantColumns: []string{"b"},
			wantDTypes:  []schema.ScalarKind{schema.Int8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := mustParse(t, tt.source, tt.opts...)
			if diff := cmp.Diff(tt.wantBinds, compiled.Bindings); diff != "" {
				t.Errorf("bindings mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantColumns, compiled.Columns); diff != "" {
				t.Errorf("columns mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDTypes, compiled.DTypes); diff != "" {
				t.Errorf("dtypes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComplexNestedSchema(t *testing.T) {
	source := `
headers: Struct<
    timestamp: Int64,
    source: Utf8,
    offset: Int64
>,
payload: Struct<
    transaction: Utf8,
    location: Int8,
    customer: Struct{
        type: Utf8,
        registration: Utf8
    },
    lines: List[
        Struct{
            product: Int16,
            productDescription: Utf8,
            quantity: Int8,
            vatRate: Float32
        }
    ],
    payment: Struct{
        method: Utf8,
        company: Utf8,
        transactionIdentifier: Int64
    }
>
`
	compiled := mustParse(t, source)

	want := schema.Struct(
		schema.Field{Name: "headers", Type: schema.Struct(
			schema.Field{Name: "timestamp", Type: schema.Scalar(schema.Int64)},
			schema.Field{Name: "source", Type: schema.Scalar(schema.Utf8)},
			schema.Field{Name: "offset", Type: schema.Scalar(schema.Int64)},
		)},
		schema.Field{Name: "payload", Type: schema.Struct(
			schema.Field{Name: "transaction", Type: schema.Scalar(schema.Utf8)},
			schema.Field{Name: "location", Type: schema.Scalar(schema.Int8)},
			schema.Field{Name: "customer", Type: schema.Struct(
				schema.Field{Name: "type", Type: schema.Scalar(schema.Utf8)},
				schema.Field{Name: "registration", Type: schema.Scalar(schema.Utf8)},
			)},
			schema.Field{Name: "lines", Type: schema.List(schema.Struct(
				schema.Field{Name: "product", Type: schema.Scalar(schema.Int16)},
				schema.Field{Name: "productDescription", Type: schema.Scalar(schema.Utf8)},
				schema.Field{Name: "quantity", Type: schema.Scalar(schema.Int8)},
				schema.Field{Name: "vatRate", Type: schema.Scalar(schema.Float32)},
			))},
			schema.Field{Name: "payment", Type: schema.Struct(
				schema.Field{Name: "method", Type: schema.Scalar(schema.Utf8)},
				schema.Field{Name: "company", Type: schema.Scalar(schema.Utf8)},
				schema.Field{Name: "transactionIdentifier", Type: schema.Scalar(schema.Int64)},
			)},
		)},
	)
	if diff := cmp.Diff(want, compiled.Root); diff != "" {
		t.Errorf("root mismatch (-want +got):\n%s", diff)
	}

	wantPaths := []string{
		"headers.timestamp",
		"headers.source",
		"headers.offset",
		"payload.transaction",
		"payload.location",
		"payload.customer.type",
		"payload.customer.registration",
		"payload.lines.product",
		"payload.lines.productDescription",
		"payload.lines.quantity",
		"payload.lines.vatRate",
		"payload.payment.method",
		"payload.payment.company",
		"payload.payment.transactionIdentifier",
	}
	if diff := cmp.Diff(wantPaths, compiled.Paths()); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if len(compiled.Columns) != len(compiled.DTypes) {
		t.Errorf("columns/dtypes length mismatch: %d != %d", len(compiled.Columns), len(compiled.DTypes))
	}
}

func countLeaves(t schema.Type) int {
	switch t.Kind {
	case schema.KindScalar:
		return 1
	case schema.KindList:
		return countLeaves(*t.Elem)
	default:
		n := 0
		for _, f := range t.Fields {
			n += countLeaves(f.Type)
		}
		return n
	}
}

// every compiled schema binds exactly the leaves present in its tree;
// the planner relies on the two walks agreeing
func TestBindingsCoverTreeLeaves(t *testing.T) {
	sources := []string{
		"Int8",
		"List(Int8)",
		"List(List(Int8))",
		"text: Utf8, json: Struct(foo: Int64, bar: Int64)",
		"text: Utf8, json: List(Struct(foo: Int64, bar: Int64))",
		"a: Struct(b: Struct(c: List(Struct(d: Float32, e: Utf8))))",
	}
	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			compiled := mustParse(t, source)
			if got, want := len(compiled.Bindings), countLeaves(compiled.Root); got != want {
				t.Errorf("schema binds %d columns but the tree has %d leaves", got, want)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	source := "a: Utf8, b: Struct(c: Int8, d: List(Struct(e: Float32)))"
	first := mustParse(t, source)
	second := mustParse(t, source)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two compiles of the same source differ (-first +second):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantCode string
	}{
		{"unexpected syntax", "!@#$%^&*", errors.ErrSchemaParsing},
		{"unknown lone datatype", "Foo", errors.ErrUnknownDataType},
		{"unknown datatype in struct", "Struct(foo: Bar)", errors.ErrUnknownDataType},
		{"duplicate column", "foo: Int8, foo: Float32", errors.ErrDuplicateColumn},
		{"duplicate column via rename", "foo: Int8, bar=foo: Float32", errors.ErrDuplicateColumn},
		{"renamed struct", "this=that: Struct(foo: Int8)", errors.ErrPathRenaming},
		{"renamed list", "this=that: List(Int8)", errors.ErrPathRenaming},
		{"unterminated nesting", "foo: Struct(bar: Int8", errors.ErrSchemaParsing},
		{"list with two attributes", "a: List(x: Int8, y: Int16)", errors.ErrSchemaParsing},
		{"list with two lone types", "List(Int8, Int16)", errors.ErrDuplicateColumn},
		{"list with two nested structs", "List(Struct(a: Int8), Struct(b: Int8))", errors.ErrSchemaParsing},
		{"stray closing delimiter", ") foo: Int8", errors.ErrSchemaParsing},
		{"stray opening delimiter", "(foo: Int8)", errors.ErrSchemaParsing},
		{"empty list", "List()", errors.ErrSchemaParsing},
		{"struct missing its delimiter", "foo: Struct bar: Int8", errors.ErrSchemaParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %s", tt.source, tt.wantCode)
			}
			if !errors.IsCode(err, tt.wantCode) {
				t.Errorf("Parse(%q) error = %v, want code %s", tt.source, err, tt.wantCode)
			}
		})
	}
}

func TestErrorDiagnostics(t *testing.T) {
	_, err := Parse("headers: Struct(\n    timestamp: Foo\n)")
	if err == nil {
		t.Fatal("Parse succeeded, want UnknownDataTypeError")
	}
	msg := err.Error()
	for _, fragment := range []string{
		"Tripped on line 2",
		"timestamp: Foo",
		"^^^",
	} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error message missing %q:\n%s", fragment, msg)
		}
	}
}
