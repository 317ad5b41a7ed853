package frame

import (
	"fmt"

	"github.com/carnarez/polars-unpack/core/invariant"
	"github.com/carnarez/polars-unpack/runtime/planner"
)

// Apply executes a decomposition plan step by step and returns the
// flattened frame. The receiver is not modified.
func (f *Frame) Apply(plan *planner.Plan) (*Frame, error) {
	invariant.Precondition(plan != nil, "plan must not be nil")

	cur := f
	var err error
	for i, step := range plan.Steps {
		switch step.Op {
		case planner.OpExplode:
			cur, err = cur.Explode(step.Column)
		case planner.OpUnnest:
			cur, err = cur.Unnest(step.Column)
		case planner.OpRename:
			cur, err = cur.Rename(step.Mapping)
		case planner.OpWithNullColumn:
			cur, err = cur.WithNullColumn(step.Column, step.DType)
		case planner.OpSelect:
			cur, err = cur.Select(step.Columns)
		default:
			err = fmt.Errorf("unknown op %v", step.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i, step, err)
		}
	}
	return cur, nil
}
