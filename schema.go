package smartjson

import (
	"reflect"
	"sort"
)

// Type is the expected type of a schema field: either a canonical name used
// for parsed JSON data ("str", "int", "float", "bool", "list", "dict", "any")
// or a native Go type. Native types map to the canonical vocabulary when a
// schema is applied to parsed data (structs and maps become "dict").
type Type struct {
	name   string
	native reflect.Type
}

// Canonical types.
var (
	Str   = Type{name: "str"}
	Int   = Type{name: "int"}
	Float = Type{name: "float"}
	Bool  = Type{name: "bool"}
	List  = Type{name: "list"}
	Dict  = Type{name: "dict"}
	Any   = Type{name: "any"}
)

var canonicalNames = map[string]struct{}{
	"str": {}, "int": {}, "float": {}, "bool": {}, "list": {}, "dict": {}, "any": {},
}

// TypeNamed returns a Type from its canonical name. Unknown names are
// reported by Schema.Check.
func TypeNamed(name string) Type { return Type{name: name} }

// TypeOf returns the Type of the Go type T.
func TypeOf[T any]() Type {
	return Type{native: reflect.TypeOf((*T)(nil)).Elem()}
}

// IsZero reports whether no type was specified.
func (t Type) IsZero() bool { return t.name == "" && t.native == nil }

func (t Type) String() string {
	if t.native != nil {
		return t.native.String()
	}
	return t.name
}

// canonical returns the parsed-data name t maps to and whether it is known.
func (t Type) canonical() (string, bool) {
	if t.native == nil {
		_, ok := canonicalNames[t.name]
		return t.name, ok
	}
	return canonicalKind(t.native), true
}

func canonicalKind(rt reflect.Type) string {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "dict"
	}
	return "any"
}

// Rule is one field's validation rule.
type Rule struct {
	Type     Type
	Required bool
	// Schema validates a mapping-like value (map or struct) field by field.
	Schema Schema
	// ItemType and ItemSchema validate each element of a list field.
	ItemType   Type
	ItemSchema Schema
}

// Schema maps field names to rules. It is a minimum-shape contract: fields
// not named by the schema are permitted.
type Schema map[string]Rule

// fieldNames returns field names in ascending order. Validation visits
// fields in this order and stops at the first violation.
func (s Schema) fieldNames() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Check verifies that s is itself a well-formed schema. Failures are
// programmer errors reported with ErrInvalidSchema, never
// ErrSchemaValidation.
func (s Schema) Check() error { return checkSchema(s, "") }

func checkSchema(s Schema, path string) error {
	for _, f := range s.fieldNames() {
		r := s[f]
		cur := joinField(path, f)
		if f == "" {
			return invalidSchema(path, "Invalid schema definition at '%s': field names must not be empty.", orRoot(path))
		}
		typ, ok := r.Type.canonical()
		if !r.Type.IsZero() && !ok {
			return invalidSchema(cur, "Unknown type '%s' specified in schema for field '%s'.", typ, cur)
		}
		if !r.ItemType.IsZero() {
			if it, ok := r.ItemType.canonical(); !ok {
				return invalidSchema(cur, "Unknown item_type '%s' in list schema for field '%s'.", it, cur)
			}
		}
		hasItems := !r.ItemType.IsZero() || r.ItemSchema != nil
		if hasItems && typ != "list" {
			return invalidSchema(cur, "Item rules for field '%s' require type 'list', got '%s'.", cur, orNone(typ))
		}
		if r.Schema != nil {
			if !r.Type.IsZero() && typ != "dict" && typ != "any" {
				return invalidSchema(cur, "Nested schema for field '%s' requires a mapping type, got '%s'.", cur, typ)
			}
			if err := checkSchema(r.Schema, cur); err != nil {
				return err
			}
		}
		if r.ItemSchema != nil {
			if it, _ := r.ItemType.canonical(); !r.ItemType.IsZero() && it != "dict" && it != "any" {
				return invalidSchema(cur, "Item schema for field '%s' requires a mapping item_type, got '%s'.", cur, it)
			}
			if err := checkSchema(r.ItemSchema, cur+"[]"); err != nil {
				return err
			}
		}
	}
	return nil
}

func orRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

func orNone(name string) string {
	if name == "" {
		return "none"
	}
	return name
}
