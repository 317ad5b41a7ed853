// Package infer guesses a schema from sample NDJSON content and renders
// any type tree back as schema grammar text. A head start for writing
// schemas by hand, not part of the compiler contract.
package infer

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/carnarez/polars-unpack/core/schema"
)

// Infer scans newline-delimited JSON and returns the merged root type.
// Numbers widen Int64 → Float64 on conflict, scalar conflicts fall back
// to Utf8, and structural conflicts (list vs scalar, struct vs list)
// are errors. Booleans are not representable in the type registry and
// are rejected.
func Infer(data []byte) (schema.Type, error) {
	var merged *schema.Type
	for ln, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		vdata, vtype, _, err := jsonparser.Get(line)
		if err != nil {
			return schema.Type{}, fmt.Errorf("line %d: %w", ln+1, err)
		}
		t, known, err := inferValue(vdata, vtype)
		if err != nil {
			return schema.Type{}, fmt.Errorf("line %d: %w", ln+1, err)
		}
		if !known {
			continue
		}
		if merged == nil {
			merged = &t
			continue
		}
		unified, err := unify(*merged, t)
		if err != nil {
			return schema.Type{}, fmt.Errorf("line %d: %w", ln+1, err)
		}
		merged = &unified
	}

	if merged == nil {
		return schema.Struct(), nil
	}
	if merged.Kind != schema.KindStruct {
		// bare values: a root struct with one anonymous field
		return schema.Struct(schema.Field{Type: *merged}), nil
	}
	return *merged, nil
}

// inferValue types one JSON value; known is false for nulls, which
// carry no type information.
func inferValue(vdata []byte, vtype jsonparser.ValueType) (schema.Type, bool, error) {
	switch vtype {
	case jsonparser.Null, jsonparser.NotExist:
		return schema.Type{}, false, nil
	case jsonparser.Boolean:
		return schema.Type{}, false, fmt.Errorf("boolean values have no supported datatype")
	case jsonparser.Number:
		if _, err := jsonparser.ParseInt(vdata); err == nil {
			return schema.Scalar(schema.Int64), true, nil
		}
		return schema.Scalar(schema.Float64), true, nil
	case jsonparser.String:
		return schema.Scalar(schema.Utf8), true, nil
	case jsonparser.Array:
		var elem *schema.Type
		var inner error
		_, err := jsonparser.ArrayEach(vdata, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if inner != nil {
				return
			}
			t, known, err := inferValue(value, dataType)
			if err != nil {
				inner = err
				return
			}
			if !known {
				return
			}
			if elem == nil {
				elem = &t
				return
			}
			unified, err := unify(*elem, t)
			if err != nil {
				inner = err
				return
			}
			elem = &unified
		})
		if err != nil {
			return schema.Type{}, false, err
		}
		if inner != nil {
			return schema.Type{}, false, inner
		}
		if elem == nil {
			// no evidence about the element type
			elem = &schema.Type{Kind: schema.KindScalar, Scalar: schema.Utf8}
		}
		return schema.List(*elem), true, nil
	case jsonparser.Object:
		var fields []schema.Field
		err := jsonparser.ObjectEach(vdata, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			t, known, err := inferValue(value, dataType)
			if err != nil {
				return err
			}
			if !known {
				t = schema.Scalar(schema.Utf8)
			}
			fields = append(fields, schema.Field{Name: string(key), Type: t})
			return nil
		})
		if err != nil {
			return schema.Type{}, false, err
		}
		return schema.Struct(fields...), true, nil
	default:
		return schema.Type{}, false, fmt.Errorf("unsupported JSON value type %v", vtype)
	}
}

// unify merges two inferred types for the same position.
func unify(a, b schema.Type) (schema.Type, error) {
	if a.Kind != b.Kind {
		return schema.Type{}, fmt.Errorf("conflicting shapes %s and %s", a.Kind, b.Kind)
	}
	switch a.Kind {
	case schema.KindScalar:
		if a.Scalar == b.Scalar {
			return a, nil
		}
		if (a.Scalar == schema.Int64 && b.Scalar == schema.Float64) ||
			(a.Scalar == schema.Float64 && b.Scalar == schema.Int64) {
			return schema.Scalar(schema.Float64), nil
		}
		return schema.Scalar(schema.Utf8), nil
	case schema.KindList:
		elem, err := unify(*a.Elem, *b.Elem)
		if err != nil {
			return schema.Type{}, err
		}
		return schema.List(elem), nil
	case schema.KindStruct:
		fields := append([]schema.Field(nil), a.Fields...)
		for _, bf := range b.Fields {
			found := false
			for i, af := range fields {
				if af.Name != bf.Name {
					continue
				}
				found = true
				unified, err := unify(af.Type, bf.Type)
				if err != nil {
					return schema.Type{}, err
				}
				fields[i].Type = unified
				break
			}
			if !found {
				fields = append(fields, bf)
			}
		}
		return schema.Struct(fields...), nil
	default:
		return schema.Type{}, fmt.Errorf("unknown type kind %v", a.Kind)
	}
}
