package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carnarez/polars-unpack/core/schema"
)

// Op identifies one decomposition operation over the current frame.
type Op int

const (
	OpExplode        Op = iota // one row per element of a list column
	OpUnnest                   // replace a struct column by its fields
	OpRename                   // rename columns, absent keys are skipped
	OpWithNullColumn           // materialize a typed null column if absent
	OpSelect                   // final ordered column selection
)

var opNames = [...]string{
	OpExplode:        "explode",
	OpUnnest:         "unnest",
	OpRename:         "rename",
	OpWithNullColumn: "with_null_column",
	OpSelect:         "select",
}

func (o Op) String() string {
	if int(o) < len(opNames) && int(o) >= 0 {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Step is one instruction handed to the tabular engine. Exactly the
// fields relevant to Op are set: Column for explode/unnest/null steps,
// DType for null steps, Mapping for renames, Columns for the final
// select.
type Step struct {
	Op      Op
	Column  string
	DType   schema.ScalarKind
	Mapping map[string]string
	Columns []string
}

// String renders a step for logs and debugging.
func (s Step) String() string {
	switch s.Op {
	case OpExplode, OpUnnest:
		return fmt.Sprintf("%s(%s)", s.Op, s.Column)
	case OpWithNullColumn:
		return fmt.Sprintf("%s(%s, %s)", s.Op, s.Column, s.DType)
	case OpRename:
		// sorted so the rendering is deterministic
		froms := make([]string, 0, len(s.Mapping))
		for from := range s.Mapping {
			froms = append(froms, from)
		}
		sort.Strings(froms)
		pairs := make([]string, 0, len(froms))
		for _, from := range froms {
			pairs = append(pairs, from+" -> "+s.Mapping[from])
		}
		return fmt.Sprintf("%s(%s)", s.Op, strings.Join(pairs, ", "))
	case OpSelect:
		return fmt.Sprintf("%s(%s)", s.Op, strings.Join(s.Columns, ", "))
	default:
		return s.Op.String()
	}
}

// Plan is the ordered decomposition recipe produced for one compiled
// schema. It owns no parser state and may be executed any number of
// times against different frames.
type Plan struct {
	Strategy Strategy
	Steps    []Step
}

// String renders the plan as a numbered step listing, one canonical
// line per step. Two plans built from the same schema and strategy
// always render identically.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy: %s\n", p.Strategy)
	for i, step := range p.Steps {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, step)
	}
	return b.String()
}

// Strategy selects how intermediate nested columns are named during
// decomposition.
type Strategy int

const (
	// RenameEager renames every nested column to its full json path
	// before decomposing it, so sibling subtrees can never collide.
	RenameEager Strategy = iota

	// RenameDeferred keeps attribute names through decomposition and
	// renames only the final leaf columns. Observably different
	// intermediate names, same final result as long as attribute names
	// do not collide across sibling subtrees at the same level.
	RenameDeferred
)

func (s Strategy) String() string {
	if s == RenameDeferred {
		return "deferred"
	}
	return "eager"
}
