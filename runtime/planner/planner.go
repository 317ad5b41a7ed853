// Package planner turns a compiled schema into the ordered sequence of
// decomposition steps that flattens nested JSON content into a tabular
// result: explode list columns, unnest struct columns, rename to the
// schema-declared output names, materialize schema-declared columns
// missing from the source as typed nulls, and select the final column
// set (dropping source columns the schema does not mention).
package planner

import (
	"fmt"

	"github.com/carnarez/polars-unpack/core/invariant"
	"github.com/carnarez/polars-unpack/core/schema"
)

// Config configures plan construction.
type Config struct {
	Strategy Strategy
}

// Build walks the compiled type tree depth first and emits the plan.
func Build(s *schema.CompiledSchema, cfg Config) (*Plan, error) {
	invariant.Precondition(s != nil, "schema must not be nil")

	b := &builder{schema: s, sep: s.Separator}
	if b.sep == "" {
		b.sep = "."
	}

	switch cfg.Strategy {
	case RenameEager:
		b.eagerFields(s.Root.Fields, "")
	case RenameDeferred:
		b.deferredFields(s.Root.Fields, "")
	default:
		return nil, fmt.Errorf("unknown rename strategy %d", cfg.Strategy)
	}

	// the tree walk and the parser's binding registration visit the same
	// leaves in the same order
	invariant.Invariant(len(b.leaves) == len(s.Bindings),
		"planner walked %d leaves but the schema binds %d columns",
		len(b.leaves), len(s.Bindings))

	// schema-declared columns absent from the source become typed nulls,
	// registered under their pre-rename name so the final rename covers
	// them too
	for i, bind := range s.Bindings {
		key := bind.Path
		if cfg.Strategy == RenameDeferred {
			key = b.leaves[i]
		}
		b.emit(Step{Op: OpWithNullColumn, Column: key, DType: s.DTypes[i]})
	}

	// final leaf rename, then the schema-ordered selection
	mapping := make(map[string]string, len(s.Bindings))
	for i, bind := range s.Bindings {
		if cfg.Strategy == RenameDeferred {
			mapping[b.leaves[i]] = bind.RenamedTo
		} else {
			mapping[bind.Path] = bind.RenamedTo
		}
	}
	b.emit(Step{Op: OpRename, Mapping: mapping})
	b.emit(Step{Op: OpSelect, Columns: append([]string(nil), s.Columns...)})

	return &Plan{Strategy: cfg.Strategy, Steps: b.steps}, nil
}

// builder accumulates steps and the leaf column names encountered, in
// binding declaration order.
type builder struct {
	schema *schema.CompiledSchema
	sep    string
	steps  []Step
	leaves []string // pre-rename leaf column name per binding
}

func (b *builder) emit(step Step) {
	b.steps = append(b.steps, step)
}

func (b *builder) join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + b.sep + name
}

// eagerFields renames every schema field surfacing at this level to its
// full json path, then decomposes nested ones.
func (b *builder) eagerFields(fields []schema.Field, prefix string) {
	for _, f := range fields {
		jp := b.join(prefix, f.Name)
		if f.Name != jp {
			b.emit(Step{Op: OpRename, Mapping: map[string]string{f.Name: jp}})
		}
		switch f.Type.Kind {
		case schema.KindScalar:
			b.leaves = append(b.leaves, jp)
		case schema.KindList:
			b.eagerList(f.Type, jp)
		case schema.KindStruct:
			b.emit(Step{Op: OpUnnest, Column: jp})
			b.eagerFields(f.Type.Fields, jp)
		}
	}
}

// eagerList explodes a list column held at its full json path and
// descends into the element type. Anonymous element nesting adds no
// path segment, so the column name is stable through chained explodes.
func (b *builder) eagerList(t schema.Type, jp string) {
	b.emit(Step{Op: OpExplode, Column: jp})
	elem := *t.Elem
	switch elem.Kind {
	case schema.KindScalar:
		b.leaves = append(b.leaves, jp)
	case schema.KindList:
		b.eagerList(elem, jp)
	case schema.KindStruct:
		b.emit(Step{Op: OpUnnest, Column: jp})
		b.eagerFields(elem.Fields, jp)
	}
}

// deferredFields decomposes under plain attribute names; inherited is
// the current column name for anonymous fields.
func (b *builder) deferredFields(fields []schema.Field, inherited string) {
	for _, f := range fields {
		name := f.Name
		if name == "" {
			name = inherited
		}
		switch f.Type.Kind {
		case schema.KindScalar:
			b.leaves = append(b.leaves, name)
		case schema.KindList:
			b.deferredList(f.Type, name)
		case schema.KindStruct:
			b.emit(Step{Op: OpUnnest, Column: name})
			b.deferredFields(f.Type.Fields, name)
		}
	}
}

func (b *builder) deferredList(t schema.Type, col string) {
	b.emit(Step{Op: OpExplode, Column: col})
	elem := *t.Elem
	switch elem.Kind {
	case schema.KindScalar:
		b.leaves = append(b.leaves, col)
	case schema.KindList:
		b.deferredList(elem, col)
	case schema.KindStruct:
		b.emit(Step{Op: OpUnnest, Column: col})
		b.deferredFields(elem.Fields, col)
	}
}
