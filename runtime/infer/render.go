package infer

import (
	"fmt"
	"strings"

	"github.com/carnarez/polars-unpack/core/schema"
)

const indentUnit = "    "

// Render pretty-prints a type tree in the schema grammar, one field per
// line with 4-space indentation. The root struct's own wrapper is
// omitted so the output can be fed straight back to the parser.
func Render(root schema.Type) string {
	var b strings.Builder
	if root.Kind == schema.KindStruct {
		for _, f := range root.Fields {
			renderField(&b, f, "")
		}
	} else {
		renderField(&b, schema.Field{Type: root}, "")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderField(b *strings.Builder, f schema.Field, indent string) {
	label := ""
	if f.Name != "" {
		label = f.Name + ": "
	}
	switch f.Type.Kind {
	case schema.KindScalar:
		fmt.Fprintf(b, "%s%s%s\n", indent, label, f.Type.Scalar)
	case schema.KindList:
		fmt.Fprintf(b, "%s%sList(\n", indent, label)
		renderField(b, schema.Field{Type: *f.Type.Elem}, indent+indentUnit)
		fmt.Fprintf(b, "%s)\n", indent)
	case schema.KindStruct:
		fmt.Fprintf(b, "%s%sStruct(\n", indent, label)
		for _, child := range f.Type.Fields {
			renderField(b, child, indent+indentUnit)
		}
		fmt.Fprintf(b, "%s)\n", indent)
	}
}
