package smartjson

import (
	"reflect"
)

// ValidateNative checks a Go value against s before it is converted. The
// value must be mapping-like: a map, a struct (or pointer to one), an
// OrderedMap or a Describer. Type names in messages are Go type names.
func ValidateNative(obj any, s Schema) error {
	if err := s.Check(); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return validate(nativeVocabulary{}, obj, s, "")
}

// ValidateParsed checks decoded JSON data (map[string]any, []any and
// scalars) against s. Type names in messages are the canonical names str,
// int, float, bool, list, dict and null.
func ValidateParsed(data any, s Schema) error {
	if err := s.Check(); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	return validate(parsedVocabulary{}, data, s, "")
}

// vocabulary is what differs between validating Go values and validating
// parsed JSON: how fields are found and how types are named and matched.
type vocabulary interface {
	field(container any, name string) (v any, present bool, err error)
	isMapping(v any) bool
	items(v any) ([]any, bool)
	typeName(v any) string
	matches(v any, t Type) bool
	expected(t Type) string
}

// validate walks s in ascending field-name order and stops at the first
// violation.
func validate(voc vocabulary, data any, s Schema, path string) error {
	if !voc.isMapping(data) {
		return schemaViolation(path, "Invalid data type at '%s'. Expected a mapping, got '%s'.", orRoot(path), voc.typeName(data))
	}
	for _, f := range s.fieldNames() {
		r := s[f]
		cur := joinField(path, f)
		v, present, err := voc.field(data, f)
		if err != nil {
			e := wrapError(CodeSchemaValidation, err, "Cannot read field '%s' for validation", cur)
			e.Path = cur
			return e
		}
		if !present {
			if r.Required {
				return schemaViolation(cur, "Missing required field: '%s'", cur)
			}
			continue
		}
		if !r.Type.IsZero() && !voc.matches(v, r.Type) {
			return schemaViolation(cur, "Invalid type for field '%s'. Expected '%s', got '%s'.", cur, voc.expected(r.Type), voc.typeName(v))
		}
		if r.Schema != nil {
			if !voc.isMapping(v) {
				return schemaViolation(cur, "Invalid type for field '%s'. Expected a mapping for schema validation, got '%s'.", cur, voc.typeName(v))
			}
			if err := validate(voc, v, r.Schema, cur); err != nil {
				return err
			}
		}
		if r.ItemType.IsZero() && r.ItemSchema == nil {
			continue
		}
		items, ok := voc.items(v)
		if !ok {
			return schemaViolation(cur, "Invalid type for field '%s'. Expected 'list', got '%s'.", cur, voc.typeName(v))
		}
		for i, item := range items {
			ip := joinIndex(cur, i)
			if !r.ItemType.IsZero() && !voc.matches(item, r.ItemType) {
				return schemaViolation(ip, "Invalid type for item at '%s'. Expected '%s', got '%s'.", ip, voc.expected(r.ItemType), voc.typeName(item))
			}
			if r.ItemSchema == nil {
				continue
			}
			if !voc.isMapping(item) {
				return schemaViolation(ip, "Invalid item type at '%s'. Expected a mapping for schema validation, got '%s'.", ip, voc.typeName(item))
			}
			if err := validate(voc, item, r.ItemSchema, ip); err != nil {
				return err
			}
		}
	}
	return nil
}

type nativeVocabulary struct{}

func (nativeVocabulary) field(container any, name string) (any, bool, error) {
	if om, ok := container.(*OrderedMap); ok {
		v, ok := om.Get(name)
		return v, ok, nil
	}
	rv := reflect.ValueOf(container)
	if base := indirect(rv); base.Kind() == reflect.Map && !rv.Type().Implements(describerType) {
		return mapField(base, name)
	}
	fv, ok, err := lookupField(rv, name)
	if err != nil || !ok || isNilValue(fv) {
		return nil, false, err
	}
	return fv.Interface(), true, nil
}

// mapField looks name up in a map, comparing stringified keys when the key
// type is not a string kind.
func mapField(m reflect.Value, name string) (any, bool, error) {
	kt := m.Type().Key()
	if kt.Kind() == reflect.String {
		mv := m.MapIndex(reflect.ValueOf(name).Convert(kt))
		if !mv.IsValid() {
			return nil, false, nil
		}
		return mv.Interface(), true, nil
	}
	iter := m.MapRange()
	for iter.Next() {
		ks, err := mapKey(iter.Key())
		if err != nil {
			return nil, false, err
		}
		if ks == name {
			return iter.Value().Interface(), true, nil
		}
	}
	return nil, false, nil
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func (nativeVocabulary) isMapping(v any) bool {
	switch categorize(reflect.ValueOf(v)) {
	case CategoryMapping, CategoryOrderedMapping, CategoryOpaque:
		return true
	}
	return false
}

func (nativeVocabulary) items(v any) ([]any, bool) {
	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func (nativeVocabulary) typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func (voc nativeVocabulary) matches(v any, t Type) bool {
	if v == nil {
		return false
	}
	vt := reflect.TypeOf(v)
	if t.native != nil {
		want := t.native
		switch {
		case vt == want, vt.AssignableTo(want):
			return true
		case vt.Kind() == reflect.Pointer && vt.Elem() == want:
			return true
		case want.Kind() == reflect.Pointer && want.Elem() == vt:
			return true
		}
		return false
	}
	bt := baseType(vt)
	switch t.name {
	case "any":
		return true
	case "str":
		return bt.Kind() == reflect.String
	case "bool":
		return bt.Kind() == reflect.Bool
	case "int":
		switch bt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return true
		}
	case "float":
		return bt.Kind() == reflect.Float32 || bt.Kind() == reflect.Float64
	case "list":
		_, ok := voc.items(v)
		return ok
	case "dict":
		return voc.isMapping(v)
	}
	return false
}

func (nativeVocabulary) expected(t Type) string { return t.String() }

type parsedVocabulary struct{}

func (parsedVocabulary) field(container any, name string) (any, bool, error) {
	switch m := container.(type) {
	case map[string]any:
		v, ok := m[name]
		return v, ok, nil
	case *OrderedMap:
		v, ok := m.Get(name)
		return v, ok, nil
	}
	return nil, false, nil
}

func (parsedVocabulary) isMapping(v any) bool {
	switch v.(type) {
	case map[string]any, *OrderedMap:
		return true
	}
	return false
}

func (parsedVocabulary) items(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func (parsedVocabulary) typeName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "str"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case []any:
		return "list"
	case map[string]any, *OrderedMap:
		return "dict"
	default:
		return reflect.TypeOf(t).String()
	}
}

func (voc parsedVocabulary) matches(v any, t Type) bool {
	want, _ := t.canonical()
	switch want {
	case "any":
		return true
	case "float":
		got := voc.typeName(v)
		return got == "float" || got == "int"
	}
	return voc.typeName(v) == want
}

func (parsedVocabulary) expected(t Type) string {
	name, _ := t.canonical()
	return name
}
