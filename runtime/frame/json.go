package frame

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/samber/lo"
)

// FromNDJSON decodes newline-delimited JSON into a frame. Top-level
// objects contribute one column per key (union over all lines, first
// appearance order); a bare top-level value becomes a single anonymous
// column, the shape a bare scalar schema describes.
func FromNDJSON(data []byte) (*Frame, error) {
	var rows []Value
	for ln, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		vdata, vtype, _, err := jsonparser.Get(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln+1, err)
		}
		v, err := decodeValue(vdata, vtype)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln+1, err)
		}
		rows = append(rows, v)
	}

	// column layout: object keys, or one anonymous column
	var keys []string
	objects := true
	for _, r := range rows {
		obj, ok := r.(*Object)
		if !ok {
			objects = false
			break
		}
		for _, k := range obj.Keys {
			if !lo.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}

	if !objects {
		return New(Series{Name: "", DType: "?", Values: rows})
	}

	columns := make([]Series, len(keys))
	for ci, k := range keys {
		values := make([]Value, len(rows))
		for ri, r := range rows {
			values[ri] = r.(*Object).Fields[k]
		}
		columns[ci] = Series{Name: k, DType: "?", Values: values}
	}
	return New(columns...)
}

// decodeValue maps jsonparser value types onto frame values.
func decodeValue(vdata []byte, vtype jsonparser.ValueType) (Value, error) {
	switch vtype {
	case jsonparser.Null, jsonparser.NotExist:
		return nil, nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(vdata)
	case jsonparser.Number:
		if v, err := jsonparser.ParseInt(vdata); err == nil {
			return v, nil
		}
		return jsonparser.ParseFloat(vdata)
	case jsonparser.String:
		return jsonparser.ParseString(vdata)
	case jsonparser.Array:
		items := []Value{}
		var inner error
		_, err := jsonparser.ArrayEach(vdata, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			v, err := decodeValue(value, dataType)
			if err != nil {
				inner = err
				return
			}
			items = append(items, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return items, nil
	case jsonparser.Object:
		obj := &Object{Fields: map[string]Value{}}
		err := jsonparser.ObjectEach(vdata, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			v, err := decodeValue(value, dataType)
			if err != nil {
				return err
			}
			k := string(key)
			if _, dup := obj.Fields[k]; !dup {
				obj.Keys = append(obj.Keys, k)
			}
			obj.Fields[k] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %v", vtype)
	}
}
