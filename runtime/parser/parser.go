// Package parser folds the lexer's token stream into a compiled schema:
// a typed tree describing the expected shape of the JSON content, the
// ordered json path → output column bindings, and the parallel column
// and dtype lists consumed by the unpacking planner.
//
// Nesting is tracked with explicit stacks rather than recursion: a stack
// of open contexts (attribute name × list/struct), a stack of
// struct-field accumulators, a stack of list-element holders, and a
// stack of json path segments mirroring the open contexts. All state is
// local to one Parse call; repeated or concurrent compiles never share
// anything.
package parser

import (
	"fmt"

	"github.com/carnarez/polars-unpack/core/errors"
	"github.com/carnarez/polars-unpack/core/schema"
	"github.com/carnarez/polars-unpack/runtime/diag"
	"github.com/carnarez/polars-unpack/runtime/lexer"
)

// DefaultSeparator joins json path segments unless overridden.
const DefaultSeparator = "."

// Option configures a Parse call.
type Option func(*config)

type config struct {
	separator string
}

// WithSeparator overrides the json path separator.
func WithSeparator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// Parse compiles plain text schema source. The returned CompiledSchema
// is a read-only value; errors carry a rendered diagnostic pointing at
// the offending source span.
func Parse(source string, opts ...Option) (*schema.CompiledSchema, error) {
	cfg := &config{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(cfg)
	}

	b := &builder{source: source, sep: cfg.separator}

	lex := lexer.New(source)
	for {
		tok := lex.Next()

		var err error
		switch tok.Type {
		case lexer.RENAMED_ATTR:
			err = b.renamedAttr(tok)
		case lexer.ATTR:
			err = b.attr(tok)
		case lexer.LONE_TYPE:
			err = b.loneType(tok)
		case lexer.OPEN:
			err = b.openDelimiter(tok)
		case lexer.CLOSE:
			err = b.closeDelimiter(tok)
		case lexer.ILLEGAL:
			err = errors.NewSchemaParsingError(diag.Render(source, tok.Value))
		case lexer.EOF:
			return b.finish()
		}
		if err != nil {
			return nil, err
		}
	}
}

// context is one open nested datatype; the name is empty for anonymous
// contexts (lone list/struct keywords).
type context struct {
	name  string
	kind  schema.ContainerKind
	value string // matched source span, for unterminated-nesting reports
}

// listItem is one finished element waiting in a list holder.
type listItem struct {
	named bool
	field schema.Field
	typ   schema.Type
}

func (it listItem) elem() schema.Type {
	if it.named {
		// element names are structurally transparent inside a list
		return it.field.Type
	}
	return it.typ
}

// builder carries the per-call compiler state.
type builder struct {
	source string
	sep    string

	root     []schema.Field   // fields attached at the schema root
	parents  []context        // open context stack
	path     []string         // json path segments, "" for anonymous contexts
	structs  [][]schema.Field // one field accumulator per open struct
	lists    []listItem       // element holders for open lists
	bindings []schema.Binding
	columns  []string
	dtypes   []schema.ScalarKind
}

// renamedAttr handles `name = new_name : dtype`.
func (b *builder) renamedAttr(tok lexer.Token) error {
	if !schema.Known(tok.DType) {
		return errors.NewUnknownDataTypeError(tok.DType, diag.Render(b.source, tok.DType))
	}
	if _, nested := schema.LookupContainer(tok.DType); nested {
		// renaming part of the json path is not supported
		return errors.NewPathRenamingError(tok.RenamedTo, diag.Render(b.source, tok.RenamedTo))
	}
	kind, _ := schema.LookupScalar(tok.DType)
	return b.leaf(tok.Name, tok.RenamedTo, kind, tok)
}

// attr handles `name : dtype`, either opening a nested context or
// registering a leaf under its own name.
func (b *builder) attr(tok lexer.Token) error {
	if !schema.Known(tok.DType) {
		return errors.NewUnknownDataTypeError(tok.DType, diag.Render(b.source, tok.DType))
	}
	if kind, nested := schema.LookupContainer(tok.DType); nested {
		b.push(context{name: tok.Name, kind: kind, value: tok.Value}, tok.Name)
		return nil
	}
	kind, _ := schema.LookupScalar(tok.DType)
	return b.leaf(tok.Name, tok.Name, kind, tok)
}

// loneType handles a bare datatype identifier: a nested keyword opens an
// anonymous context, a scalar becomes the element of the innermost open
// holder or an anonymous root field.
func (b *builder) loneType(tok lexer.Token) error {
	if !schema.Known(tok.DType) {
		return errors.NewUnknownDataTypeError(tok.DType, diag.Render(b.source, tok.DType))
	}
	if kind, nested := schema.LookupContainer(tok.DType); nested {
		b.push(context{kind: kind, value: tok.Value}, "")
		return nil
	}
	kind, _ := schema.LookupScalar(tok.DType)
	return b.leaf("", b.lastNamedSegment(), kind, tok)
}

// openDelimiter initializes the field accumulator of a freshly pushed
// struct context; list holders need no separate initialization.
func (b *builder) openDelimiter(tok lexer.Token) error {
	if len(b.parents) == 0 {
		return errors.NewSchemaParsingError(diag.Render(b.source, b.source[tok.Offset:]))
	}
	if b.parents[len(b.parents)-1].kind == schema.ContainerStruct {
		b.structs = append(b.structs, nil)
	}
	return nil
}

// closeDelimiter pops the innermost open context, builds its finished
// type and attaches it one level up. Any closing character may close any
// opening character: the grammar deliberately does not enforce matching
// bracket families.
func (b *builder) closeDelimiter(tok lexer.Token) error {
	if len(b.parents) == 0 {
		return errors.NewSchemaParsingError(diag.Render(b.source, b.source[tok.Offset:]))
	}

	ctx := b.parents[len(b.parents)-1]
	b.parents = b.parents[:len(b.parents)-1]
	if len(b.path) > 0 {
		b.path = b.path[:len(b.path)-1]
	}

	var typ schema.Type
	switch ctx.kind {
	case schema.ContainerList:
		if len(b.lists) == 0 {
			return errors.NewSchemaParsingError(diag.Render(b.source, b.source[tok.Offset:]))
		}
		item := b.lists[len(b.lists)-1]
		b.lists = b.lists[:len(b.lists)-1]
		typ = schema.List(item.elem())
	case schema.ContainerStruct:
		if len(b.structs) == 0 {
			return errors.NewSchemaParsingError(diag.Render(b.source, b.source[tok.Offset:]))
		}
		fields := b.structs[len(b.structs)-1]
		b.structs = b.structs[:len(b.structs)-1]
		typ = schema.Struct(fields...)
	}

	return b.attach(schema.Field{Name: ctx.name, Type: typ}, tok)
}

// leaf registers the binding for a scalar field and attaches it.
func (b *builder) leaf(name, renamedTo string, kind schema.ScalarKind, tok lexer.Token) error {
	for _, c := range b.columns {
		if c == renamedTo {
			return errors.NewDuplicateColumnError(renamedTo, diag.Render(b.source, renamedTo))
		}
	}

	b.columns = append(b.columns, renamedTo)
	b.dtypes = append(b.dtypes, kind)
	b.bindings = append(b.bindings, schema.Binding{Path: b.joinPath(name), RenamedTo: renamedTo})

	return b.attach(schema.Field{Name: name, Type: schema.Scalar(kind)}, tok)
}

// attach adds a finished field to the innermost open accumulator, or to
// the root when no context is open.
func (b *builder) attach(field schema.Field, tok lexer.Token) error {
	if len(b.parents) == 0 {
		b.root = append(b.root, field)
		return nil
	}

	switch b.parents[len(b.parents)-1].kind {
	case schema.ContainerList:
		// a list declares exactly one inner field; every open list
		// context owns at most one holder entry
		open := 0
		for _, ctx := range b.parents {
			if ctx.kind == schema.ContainerList {
				open++
			}
		}
		if len(b.lists) >= open {
			return errors.NewSchemaParsingError(diag.Render(b.source, tok.Value))
		}
		if field.Name == "" {
			b.lists = append(b.lists, listItem{typ: field.Type})
		} else {
			b.lists = append(b.lists, listItem{named: true, field: field})
		}
	case schema.ContainerStruct:
		if len(b.structs) == 0 {
			// struct context whose opening delimiter never appeared
			return errors.NewSchemaParsingError(diag.Render(b.source, tok.Value))
		}
		b.structs[len(b.structs)-1] = append(b.structs[len(b.structs)-1], field)
	}
	return nil
}

// push opens a nested context and mirrors it on the path stack; the
// segment is empty for anonymous contexts and contributes no text to
// the json path.
func (b *builder) push(ctx context, segment string) {
	b.parents = append(b.parents, ctx)
	b.path = append(b.path, segment)
}

// joinPath builds the full json path for a leaf, eliding anonymous
// segments.
func (b *builder) joinPath(name string) string {
	var joined string
	for _, seg := range b.path {
		if seg == "" {
			continue
		}
		if joined != "" {
			joined += b.sep
		}
		joined += seg
	}
	if name != "" {
		if joined != "" {
			joined += b.sep
		}
		joined += name
	}
	return joined
}

// lastNamedSegment returns the default output column for an anonymous
// leaf: its closest named ancestor, or empty at the bare root.
func (b *builder) lastNamedSegment() string {
	for i := len(b.path) - 1; i >= 0; i-- {
		if b.path[i] != "" {
			return b.path[i]
		}
	}
	return ""
}

// finish enforces the root-level invariant and seals the schema.
func (b *builder) finish() (*schema.CompiledSchema, error) {
	if n := len(b.parents); n > 0 {
		ctx := b.parents[len(b.parents)-1]
		err := errors.New(errors.ErrSchemaParsing,
			fmt.Sprintf("source exhausted with %d unterminated nested datatype(s)", n))
		return nil, err.WithDiagnostic(diag.Render(b.source, ctx.value))
	}

	return &schema.CompiledSchema{
		Root:      schema.Struct(b.root...),
		Bindings:  b.bindings,
		Columns:   b.columns,
		DTypes:    b.dtypes,
		Separator: b.sep,
	}, nil
}
