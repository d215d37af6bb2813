package main

import (
	"reflect"

	"github.com/Rohithoctacter/orion/internal/ast"
)

// astToJSON converts a parsed program into a plain JSON-friendly value for
// --emit-ast-json: every ast.Node contributes its Kind()/Pos() plus its
// own exported fields, walked generically via reflection rather than one
// hand-written case per node variant, since every node already shares
// the same Kind()/Pos() surface to hang a "kind"/"pos" key off of.
// Enum-like values (operators, types.Type, ast.Kind itself) render as
// their String() form instead of a raw int, the same way repr's --ast
// text dump reads.
func astToJSON(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if _, isNode := v.(ast.Node); !isNode {
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return structFieldsJSON(v, rv.Elem())
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return astToJSON(rv.Elem().Interface())
	case reflect.Struct:
		return structFieldsJSON(v, rv)
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = astToJSON(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// structFieldsJSON renders a struct's exported, non-embedded fields as a
// map, tagging it with "kind"/"pos" when orig is an ast.Node. orig is
// the value the caller actually had (possibly a pointer) so the
// ast.Node type assertion sees any pointer-receiver Kind()/Pos(); rv is
// the dereferenced struct to walk for fields.
func structFieldsJSON(orig interface{}, rv reflect.Value) interface{} {
	out := map[string]interface{}{}
	if node, ok := orig.(ast.Node); ok {
		out["kind"] = node.Kind().String()
		out["pos"] = node.Pos().String()
	}
	t := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		out[f.Name] = astToJSON(rv.Field(i).Interface())
	}
	return out
}
