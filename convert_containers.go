package smartjson

import (
	"container/list"
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// sequence converts slices, arrays and sets element-wise. Sets (maps with
// empty-struct values) come out sorted by their stringified element.
func (cv *conversion) sequence(rv reflect.Value, path string, root bool) (any, error) {
	rv = indirect(rv)
	if rv.Kind() == reflect.Map {
		return cv.set(rv, path)
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		conv, err := cv.value(item, joinIndex(path, i))
		if err != nil {
			return nil, err
		}
		if root && cv.codec.opts.LegacyWrapping {
			conv = wrapLegacyItem(item, conv)
		}
		out = append(out, conv)
	}
	return out, nil
}

// wrapLegacyItem wraps a root-list item that was an enumeration or a
// mapping, and did not already convert to a list, in a one-element list.
func wrapLegacyItem(item reflect.Value, conv any) any {
	switch categorize(item) {
	case CategoryEnumeration, CategoryMapping, CategoryOrderedMapping:
		if _, isList := conv.([]any); !isList {
			return []any{conv}
		}
	}
	return conv
}

type keyedValue struct {
	key   string
	typ   string
	orig  reflect.Value
	value reflect.Value
}

func (cv *conversion) set(rv reflect.Value, path string) (any, error) {
	elems, err := sortedEntries(rv, path)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(elems))
	for i, e := range elems {
		conv, err := cv.value(e.value, joinIndex(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

// queue turns a list into an ordered mapping keyed by position ("0", "1",
// ...) and converts that.
func (cv *conversion) queue(l *list.List, path string) (any, error) {
	om := NewOrderedMap()
	i := 0
	for e := l.Front(); e != nil; e = e.Next() {
		om.Set(strconv.Itoa(i), e.Value)
		i++
	}
	return cv.orderedMapping(om, path)
}

func (cv *conversion) mapping(rv reflect.Value, path string) (any, error) {
	rv = indirect(rv)
	entries, err := sortedMapEntries(rv, path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		conv, err := cv.value(e.value, joinField(path, e.key))
		if err != nil {
			return nil, err
		}
		out[e.key] = cv.wrapLegacyValue(e.value, conv)
	}
	return out, nil
}

func (cv *conversion) orderedMapping(m *OrderedMap, path string) (any, error) {
	out := NewOrderedMap()
	var err error
	m.Range(func(k string, v any) bool {
		rv := reflect.ValueOf(v)
		var conv any
		conv, err = cv.value(rv, joinField(path, k))
		if err != nil {
			return false
		}
		out.Set(k, cv.wrapLegacyValue(rv, conv))
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// wrapLegacyValue wraps a converted enumeration held by a mapping in a
// one-element list when legacy wrapping is enabled.
func (cv *conversion) wrapLegacyValue(orig reflect.Value, conv any) any {
	if cv.codec.opts.LegacyWrapping && categorize(orig) == CategoryEnumeration {
		return []any{conv}
	}
	return conv
}

func (cv *conversion) enumeration(rv reflect.Value, path string) (map[string]any, error) {
	if !rv.IsValid() || !rv.Type().Implements(enumerationType) {
		name := "nil"
		if rv.IsValid() {
			name = QualifiedTypeName(rv.Type())
		}
		e := newError(CodeUnsupportedType, path, "Type '%s' is not a directly serializable enum.", name)
		e.TypeName = name
		return nil, e
	}
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil, newError(CodeUnsupportedType, path, "Type '%s' is not a directly serializable enum.", QualifiedTypeName(rv.Type()))
	}
	members := rv.Interface().(Enumeration).Members()
	out := make(map[string]any, len(members))
	for _, m := range members {
		conv, err := cv.value(reflect.ValueOf(m.Value), joinField(path, m.Name))
		if err != nil {
			return nil, err
		}
		out[m.Name] = conv
	}
	return out, nil
}

// object converts an opaque value into its field set. Errors that are not
// already part of the taxonomy are reported against the object's type.
func (cv *conversion) object(rv reflect.Value, path string) (any, error) {
	typeName := QualifiedTypeName(rv.Type())
	fields, err := describeFields(rv)
	if err != nil {
		return nil, cv.attributeError(err, typeName, path)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		conv, err := cv.value(f.value, joinField(path, f.name))
		if err != nil {
			return nil, cv.attributeError(err, typeName, path)
		}
		out[f.name] = conv
	}
	return out, nil
}

func (cv *conversion) attributeError(err error, typeName, path string) error {
	if isTaxonomy(err) {
		return err
	}
	e := wrapError(CodeSerialization, err, "Error converting attributes for '%s'", typeName)
	e.Path, e.TypeName = path, typeName
	return e
}

func sortedMapEntries(rv reflect.Value, path string) ([]keyedValue, error) {
	entries, err := mapEntries(rv, path)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].typ < entries[j].typ
	})
	return entries, nil
}

// sortedEntries lists a set's elements (its map keys) in key order.
func sortedEntries(rv reflect.Value, path string) ([]keyedValue, error) {
	entries, err := sortedMapEntries(rv, path)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].value = entries[i].orig
	}
	return entries, nil
}

func mapEntries(rv reflect.Value, path string) ([]keyedValue, error) {
	out := make([]keyedValue, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		ks, err := mapKey(k)
		if err != nil {
			e := wrapError(CodeSerialization, err, "Cannot use map key of type '%s' at '%s'", k.Type(), rootPath(path))
			e.Path = path
			return nil, e
		}
		typ := ""
		if ki := indirect(k); ki.IsValid() {
			typ = ki.Type().String()
		}
		out = append(out, keyedValue{key: ks, typ: typ, value: iter.Value(), orig: k})
	}
	return out, nil
}

// mapKey stringifies a map key: text marshalers use their text, string
// kinds are used as is, numbers and booleans go through strconv.
func mapKey(k reflect.Value) (string, error) {
	for k.Kind() == reflect.Interface && !k.IsNil() {
		k = k.Elem()
	}
	if k.Kind() == reflect.Interface || (k.Kind() == reflect.Pointer && k.IsNil()) {
		return "", nil
	}
	if k.Type().Implements(textMarshalerT) {
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, k.Type().Bits()), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	}
	return fmt.Sprint(k.Interface()), nil
}
