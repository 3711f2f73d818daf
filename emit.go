package smartjson

import (
	"math"
	"reflect"
	"sort"

	json "github.com/goccy/go-json"
)

// plainTree replaces ordered maps in a converted tree with plain maps so the
// emitters see only map[string]any, []any and scalars.
func plainTree(v any) any {
	switch t := v.(type) {
	case *OrderedMap:
		out := make(map[string]any, t.Len())
		t.Range(func(k string, v any) bool {
			out[k] = plainTree(v)
			return true
		})
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = plainTree(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = plainTree(v)
		}
		return out
	}
	return v
}

// checkEmittable reports the first value the converter left unconverted
// (no category, no handler), with its path.
func checkEmittable(tree any) error {
	if path, typeName, bad := findUnsupported(tree, ""); bad {
		e := newError(CodeUnsupportedType, path,
			"Object of type '%s' at '%s' is not JSON serializable", typeName, rootPath(path))
		e.TypeName = typeName
		return e
	}
	return nil
}

// emit renders a checked plain tree as JSON text with sorted keys.
func emit(tree any, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndentWithOption(tree, "", "  ", json.DisableHTMLEscape())
	} else {
		out, err = json.MarshalWithOption(tree, json.DisableHTMLEscape())
	}
	if err != nil {
		return nil, wrapError(CodeSerialization, err, "Failed to encode JSON")
	}
	return out, nil
}

// findUnsupported returns the path and type of the first value (in sorted
// key order) that has no JSON representation.
func findUnsupported(v any, path string) (string, string, bool) {
	switch t := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return "", "", false
	case float32:
		return nonFinite(float64(t), path, "float32")
	case float64:
		return nonFinite(t, path, "float64")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if p, n, bad := findUnsupported(t[k], joinField(path, k)); bad {
				return p, n, true
			}
		}
		return "", "", false
	case []any:
		for i, item := range t {
			if p, n, bad := findUnsupported(item, joinIndex(path, i)); bad {
				return p, n, true
			}
		}
		return "", "", false
	}
	return path, QualifiedTypeName(reflect.TypeOf(v)), true
}

func nonFinite(f float64, path, name string) (string, string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return path, name, true
	}
	return "", "", false
}
