// Package frame is a small columnar engine implementing the surface the
// unpacking plan is executed against: explode, unnest, rename, select
// and typed null materialization over in-memory columns. It is decidedly
// not a dataframe library; it exists so a plan can be run end to end
// against NDJSON content without an external engine.
package frame

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/carnarez/polars-unpack/core/schema"
)

// Value is one cell: nil, bool, int64, float64, string, []Value for
// lists, or *Object for nested JSON objects.
type Value any

// Object is a decoded JSON object with key order preserved.
type Object struct {
	Keys   []string
	Fields map[string]Value
}

// Get returns the value held under a key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Series is one named column.
type Series struct {
	Name   string
	DType  string // display name, "?" when inferred from data
	Values []Value
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	columns []Series
}

// New builds a frame from columns; all series must share one length.
func New(columns ...Series) (*Frame, error) {
	for i := 1; i < len(columns); i++ {
		if len(columns[i].Values) != len(columns[0].Values) {
			return nil, fmt.Errorf("column %q has %d values, want %d",
				columns[i].Name, len(columns[i].Values), len(columns[0].Values))
		}
	}
	return &Frame{columns: columns}, nil
}

// Height returns the number of rows.
func (f *Frame) Height() int {
	if len(f.columns) == 0 {
		return 0
	}
	return len(f.columns[0].Values)
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	return len(f.columns)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return lo.Map(f.columns, func(s Series, _ int) string { return s.Name })
}

// Column returns the series with the given name.
func (f *Frame) Column(name string) (*Series, bool) {
	for i := range f.columns {
		if f.columns[i].Name == name {
			return &f.columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	return lo.Contains(f.Columns(), name)
}

// Explode expands a list column into one row per element; the other
// columns repeat their value. Empty lists and nulls yield a single null
// row, so no input row ever disappears.
func (f *Frame) Explode(name string) (*Frame, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("explode: no column %q", name)
	}

	// per input row, the number of output rows
	counts := make([]int, f.Height())
	for i, v := range col.Values {
		counts[i] = 1
		if items, ok := v.([]Value); ok && len(items) > 0 {
			counts[i] = len(items)
		}
	}

	out := make([]Series, len(f.columns))
	for ci, s := range f.columns {
		values := make([]Value, 0, f.Height())
		for ri, v := range s.Values {
			if s.Name == name {
				items, ok := v.([]Value)
				if !ok || len(items) == 0 {
					values = append(values, nil)
					continue
				}
				values = append(values, items...)
				continue
			}
			for n := 0; n < counts[ri]; n++ {
				values = append(values, v)
			}
		}
		out[ci] = Series{Name: s.Name, DType: s.DType, Values: values}
	}
	return &Frame{columns: out}, nil
}

// Unnest replaces a struct column by one column per field, in first
// appearance order across rows. A field colliding with an existing
// column is an error; the eager rename strategy exists to prevent this.
func (f *Frame) Unnest(name string) (*Frame, error) {
	col, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("unnest: no column %q", name)
	}

	var keys []string
	for _, v := range col.Values {
		if obj, ok := v.(*Object); ok {
			for _, k := range obj.Keys {
				if !lo.Contains(keys, k) {
					keys = append(keys, k)
				}
			}
		}
	}
	for _, k := range keys {
		if k != name && f.HasColumn(k) {
			return nil, fmt.Errorf("unnest: field %q of %q collides with an existing column", k, name)
		}
	}

	out := make([]Series, 0, len(f.columns)-1+len(keys))
	for _, s := range f.columns {
		if s.Name != name {
			out = append(out, s)
			continue
		}
		for _, k := range keys {
			values := make([]Value, f.Height())
			for ri, v := range col.Values {
				if obj, ok := v.(*Object); ok {
					values[ri] = obj.Fields[k]
				}
			}
			out = append(out, Series{Name: k, DType: "?", Values: values})
		}
	}
	return &Frame{columns: out}, nil
}

// Rename renames columns per the mapping; absent source columns are
// skipped, matching the guarded renames the plan relies on.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	out := make([]Series, len(f.columns))
	copy(out, f.columns)
	for i := range out {
		if to, ok := mapping[out[i].Name]; ok {
			out[i].Name = to
		}
	}
	seen := map[string]bool{}
	for _, s := range out {
		if seen[s.Name] {
			return nil, fmt.Errorf("rename: duplicate column %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &Frame{columns: out}, nil
}

// Select keeps exactly the named columns, in the given order.
func (f *Frame) Select(names []string) (*Frame, error) {
	out := make([]Series, 0, len(names))
	for _, name := range names {
		col, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("select: no column %q", name)
		}
		out = append(out, *col)
	}
	return &Frame{columns: out}, nil
}

// WithNullColumn adds a typed all-null column unless one with that name
// already exists.
func (f *Frame) WithNullColumn(name string, dtype schema.ScalarKind) (*Frame, error) {
	if f.HasColumn(name) {
		return f, nil
	}
	out := make([]Series, len(f.columns), len(f.columns)+1)
	copy(out, f.columns)
	out = append(out, Series{
		Name:   name,
		DType:  dtype.String(),
		Values: make([]Value, f.Height()),
	})
	return &Frame{columns: out}, nil
}

// String renders the frame as an aligned plain text table.
func (f *Frame) String() string {
	widths := make([]int, len(f.columns))
	cells := make([][]string, len(f.columns))
	for ci, s := range f.columns {
		header := s.Name
		widths[ci] = len(header)
		cells[ci] = make([]string, len(s.Values))
		for ri, v := range s.Values {
			text := "null"
			if v != nil {
				text = fmt.Sprintf("%v", v)
			}
			cells[ci][ri] = text
			if len(text) > widths[ci] {
				widths[ci] = len(text)
			}
		}
	}

	var b strings.Builder
	for ci, s := range f.columns {
		if ci > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[ci], s.Name)
	}
	b.WriteString("\n")
	for ri := 0; ri < f.Height(); ri++ {
		for ci := range f.columns {
			if ci > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[ci], cells[ci][ri])
		}
		b.WriteString("\n")
	}
	return b.String()
}
