package smartjson

import (
	"reflect"
	"strings"
)

// Field is one named member of an object's field set.
type Field struct {
	Name  string
	Value any
}

// Describer is implemented by types that enumerate their own field set. When
// present it replaces reflective field discovery entirely.
type Describer interface {
	DescribeFields() ([]Field, error)
}

// Computer is implemented by types that expose derived values (the
// equivalent of getters) in addition to their reflected struct fields.
// Computed fields override stored fields of the same name.
type Computer interface {
	ComputedFields() ([]Field, error)
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's external key.
// Priority: smartjson:"name" > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	for _, tag := range []string{"smartjson", "json"} {
		t, ok := sf.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if t == "-" {
			return "-"
		}
		if i := strings.IndexByte(t, ','); i >= 0 {
			t = t[:i]
		}
		if t != "" {
			return t
		}
	}
	return sf.Name
}

type fieldValue struct {
	name  string
	value reflect.Value
	depth int
}

// describeFields returns the field set of an opaque value. rv is the value as
// the caller holds it (possibly a pointer); interfaces are checked on it before
// dereferencing so pointer-receiver implementations are found.
func describeFields(rv reflect.Value) ([]fieldValue, error) {
	if rv.CanInterface() {
		if d, ok := rv.Interface().(Describer); ok {
			fs, err := d.DescribeFields()
			if err != nil {
				return nil, err
			}
			return fromFields(fs), nil
		}
	}
	sv := rv
	for sv.Kind() == reflect.Pointer || sv.Kind() == reflect.Interface {
		if sv.IsNil() {
			return nil, nil
		}
		sv = sv.Elem()
	}
	var out []fieldValue
	if sv.Kind() == reflect.Struct {
		collectStructFields(sv, 0, &out)
		out = dedupeFields(out)
	}
	if c, ok := computerOf(rv, sv); ok {
		fs, err := c.ComputedFields()
		if err != nil {
			return nil, err
		}
		out = overlayFields(out, fromFields(fs))
	}
	return out, nil
}

// computerOf finds a Computer on rv, or on an addressable copy of the struct
// sv when ComputedFields has a pointer receiver and the struct is held by
// value.
func computerOf(rv, sv reflect.Value) (Computer, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	if c, ok := rv.Interface().(Computer); ok {
		return c, true
	}
	if sv.Kind() != reflect.Struct || !sv.CanInterface() {
		return nil, false
	}
	p := reflect.New(sv.Type())
	p.Elem().Set(sv)
	c, ok := p.Interface().(Computer)
	return c, ok
}

func fromFields(fs []Field) []fieldValue {
	out := make([]fieldValue, 0, len(fs))
	for _, f := range fs {
		out = append(out, fieldValue{name: f.Name, value: reflect.ValueOf(f.Value)})
	}
	return out
}

func collectStructFields(sv reflect.Value, depth int, out *[]fieldValue) {
	typ := sv.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		fv := sv.Field(i)
		if sf.Anonymous {
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if !ev.CanInterface() {
				continue
			}
			// Embedded structs are flattened unless explicitly named by a tag.
			if ev.Kind() == reflect.Struct && ResolveStructKey(sf) == sf.Name {
				collectStructFields(ev, depth+1, out)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		name := ResolveStructKey(sf)
		if name == "-" {
			continue
		}
		*out = append(*out, fieldValue{name: name, value: fv, depth: depth})
	}
}

// dedupeFields keeps, for each name, the shallowest occurrence (Go's
// promotion rule); ties keep the first declared.
func dedupeFields(in []fieldValue) []fieldValue {
	best := make(map[string]int, len(in))
	for i, f := range in {
		if j, ok := best[f.name]; !ok || f.depth < in[j].depth {
			best[f.name] = i
		}
	}
	out := make([]fieldValue, 0, len(best))
	for i, f := range in {
		if best[f.name] == i {
			out = append(out, f)
		}
	}
	return out
}

func overlayFields(base, extra []fieldValue) []fieldValue {
	idx := make(map[string]int, len(base))
	for i, f := range base {
		idx[f.name] = i
	}
	for _, f := range extra {
		if i, ok := idx[f.name]; ok {
			base[i] = f
			continue
		}
		idx[f.name] = len(base)
		base = append(base, f)
	}
	return base
}

// lookupField finds a field by external name in the field set of rv.
func lookupField(rv reflect.Value, name string) (reflect.Value, bool, error) {
	fs, err := describeFields(rv)
	if err != nil {
		return reflect.Value{}, false, err
	}
	for _, f := range fs {
		if f.name == name {
			return f.value, true, nil
		}
	}
	return reflect.Value{}, false, nil
}
