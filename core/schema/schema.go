package schema

import (
	"fmt"
	"strings"
)

// ScalarKind identifies a primitive (non-nesting) datatype.
type ScalarKind int

const (
	Int8 ScalarKind = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Utf8
)

// Pre-computed kind name lookup, canonical spelling.
var scalarNames = [...]string{
	Int8:    "Int8",
	Int16:   "Int16",
	Int32:   "Int32",
	Int64:   "Int64",
	UInt8:   "UInt8",
	UInt16:  "UInt16",
	UInt32:  "UInt32",
	UInt64:  "UInt64",
	Float32: "Float32",
	Float64: "Float64",
	Utf8:    "Utf8",
}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) && int(k) >= 0 {
		return scalarNames[k]
	}
	return fmt.Sprintf("ScalarKind(%d)", int(k))
}

// TypeKind tags the Type union.
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindList
	KindStruct
)

func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("TypeKind(%d)", int(k))
	}
}

// Type is the closed union of datatypes a schema can declare.
// Exactly one variant is meaningful based on Kind:
// Scalar for KindScalar, Elem for KindList, Fields for KindStruct.
type Type struct {
	Kind   TypeKind
	Scalar ScalarKind
	Elem   *Type
	Fields []Field
}

// Field pairs a source attribute name with its declared type. An empty
// name marks an anonymous field (bare datatype at the schema root).
type Field struct {
	Name string
	Type Type
}

// Scalar builds a leaf Type.
func Scalar(kind ScalarKind) Type {
	return Type{Kind: KindScalar, Scalar: kind}
}

// List builds a homogeneous list Type around an element type.
func List(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// Struct builds a struct Type; field order is preserved as given.
func Struct(fields ...Field) Type {
	return Type{Kind: KindStruct, Fields: fields}
}

// String renders the type in the schema grammar, single line.
func (t Type) String() string {
	switch t.Kind {
	case KindScalar:
		return t.Scalar.String()
	case KindList:
		return fmt.Sprintf("List(%s)", t.Elem)
	case KindStruct:
		var b strings.Builder
		b.WriteString("Struct(")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if f.Name != "" {
				b.WriteString(f.Name)
				b.WriteString(": ")
			}
			b.WriteString(f.Type.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return "?"
	}
}

// Binding maps the full json path of one leaf field to its output column.
type Binding struct {
	Path      string
	RenamedTo string
}

// CompiledSchema is the read-only result of one parse call.
//
// Root is always a struct at the top level; a bare scalar or list schema
// is represented as a single anonymous field. Bindings preserve first
// declaration order, which becomes the output column order. Columns and
// DTypes run parallel to Bindings.
type CompiledSchema struct {
	Root      Type
	Bindings  []Binding
	Columns   []string
	DTypes    []ScalarKind
	Separator string
}

// RenamedTo returns the output column bound to a json path.
func (s *CompiledSchema) RenamedTo(path string) (string, bool) {
	for _, b := range s.Bindings {
		if b.Path == path {
			return b.RenamedTo, true
		}
	}
	return "", false
}

// Paths returns the bound json paths in declaration order.
func (s *CompiledSchema) Paths() []string {
	paths := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		paths[i] = b.Path
	}
	return paths
}
