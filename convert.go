package smartjson

import (
	"container/list"
	"encoding"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Category is the kind of value the converter dispatches on.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryPrimitive
	CategoryTemporal
	CategoryComplex
	CategoryBinary
	CategorySequence
	CategoryMapping
	CategoryOrderedMapping
	CategoryQueue
	CategoryEnumeration
	CategoryOpaque
)

func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryTemporal:
		return "temporal"
	case CategoryComplex:
		return "complex"
	case CategoryBinary:
		return "binary"
	case CategorySequence:
		return "sequence"
	case CategoryMapping:
		return "mapping"
	case CategoryOrderedMapping:
		return "ordered_mapping"
	case CategoryQueue:
		return "queue"
	case CategoryEnumeration:
		return "enumeration"
	case CategoryOpaque:
		return "opaque"
	}
	return "unknown"
}

var (
	timeType        = reflect.TypeOf(time.Time{})
	dateType        = reflect.TypeOf(Date{})
	numberType      = reflect.TypeOf(json.Number(""))
	orderedMapType  = reflect.TypeOf((*OrderedMap)(nil))
	listType        = reflect.TypeOf((*list.List)(nil))
	textMarshalerT  = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	enumerationType = reflect.TypeOf((*Enumeration)(nil)).Elem()
	describerType   = reflect.TypeOf((*Describer)(nil)).Elem()
)

// CategoryOf reports how v is converted.
func CategoryOf(v any) Category { return categorize(reflect.ValueOf(v)) }

// categorize checks interface-based categories on rv as held, then by kind,
// dereferencing one pointer or interface level at a time.
func categorize(rv reflect.Value) Category {
	if !rv.IsValid() {
		return CategoryPrimitive
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return CategoryPrimitive
		}
	}
	t := rv.Type()
	switch base := baseType(t); {
	case base == timeType || base == dateType:
		return CategoryTemporal
	case t == orderedMapType:
		return CategoryOrderedMapping
	case t == listType:
		return CategoryQueue
	case t.Implements(textMarshalerT):
		return CategoryPrimitive
	case t.Implements(enumerationType):
		return CategoryEnumeration
	case t.Implements(describerType):
		return CategoryOpaque
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return categorize(rv.Elem())
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return CategoryPrimitive
	case reflect.Complex64, reflect.Complex128:
		return CategoryComplex
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return CategoryBinary
		}
		return CategorySequence
	case reflect.Array:
		return CategorySequence
	case reflect.Map:
		if isSetElem(t.Elem()) {
			return CategorySequence
		}
		return CategoryMapping
	case reflect.Struct:
		return CategoryOpaque
	}
	return CategoryUnknown
}

func isSetElem(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

// conversion is the state of one top-level conversion.
type conversion struct {
	codec *Codec
	guard cycleGuard
	depth int
	limit int
}

func (c *Codec) newConversion() *conversion {
	return &conversion{codec: c, limit: c.opts.maxDepth()}
}

// value converts rv into a JSON-compatible tree. Leaves are converted
// without identity tracking; everything else enters the cycle guard for the
// duration of its own conversion.
func (cv *conversion) value(rv reflect.Value, path string) (any, error) {
	cat := categorize(rv)
	switch cat {
	case CategoryPrimitive, CategoryTemporal, CategoryComplex, CategoryBinary:
		return cv.leaf(rv, cat, path)
	}

	if cv.limit > 0 && cv.depth >= cv.limit {
		return nil, newError(CodeSerialization, path,
			"Maximum nesting depth of %d exceeded at '%s'", cv.limit, rootPath(path))
	}
	cv.depth++
	defer func() { cv.depth-- }()

	for rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if id, ok := identityOf(rv); ok {
		if err := cv.guard.enter(id, path); err != nil {
			return nil, err
		}
		defer cv.guard.leave(id)
	}

	switch cat {
	case CategorySequence:
		return cv.sequence(rv, path, path == "")
	case CategoryQueue:
		return cv.queue(rv.Interface().(*list.List), path)
	case CategoryEnumeration:
		return cv.enumeration(rv, path)
	case CategoryMapping:
		return cv.mapping(rv, path)
	case CategoryOrderedMapping:
		return cv.orderedMapping(rv.Interface().(*OrderedMap), path)
	case CategoryOpaque:
		return cv.object(rv, path)
	}
	return cv.custom(rv, path)
}

func (cv *conversion) leaf(rv reflect.Value, cat Category, path string) (any, error) {
	if !rv.IsValid() {
		return "", nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", nil
		}
	}
	if cat == CategoryPrimitive && rv.Type().Implements(textMarshalerT) {
		b, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	rv = indirect(rv)
	if rv.Kind() == reflect.Pointer {
		return "", nil
	}
	switch cat {
	case CategoryTemporal:
		if rv.Type() == dateType {
			return rv.Interface().(Date).String(), nil
		}
		return formatTime(rv.Interface().(time.Time)), nil
	case CategoryComplex:
		c := rv.Complex()
		return []any{map[string]any{
			"expression": strconv.FormatComplex(c, 'g', -1, rv.Type().Bits()),
			"real":       real(c),
			"imag":       imag(c),
		}}, nil
	case CategoryBinary:
		b := rv.Bytes()
		if !utf8.Valid(b) {
			e := newError(CodeUnsupportedType, path,
				"Binary value of type '%s' at '%s' is not valid UTF-8", rv.Type(), rootPath(path))
			e.TypeName = QualifiedTypeName(rv.Type())
			return nil, e
		}
		return string(b), nil
	}
	return primitive(rv), nil
}

// primitive returns rv as its predeclared type, so named types such as
// `type Status string` lose their name. json.Number is kept as is.
func primitive(rv reflect.Value) any {
	if rv.Type() == numberType {
		return rv.Interface()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int:
		return int(rv.Int())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32:
		// Shortest representation that round-trips through float32.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(rv.Float(), 'g', -1, 32), 64)
		return f
	case reflect.Float64:
		return rv.Float()
	}
	return rv.Interface()
}

// custom routes a value of an unrecognized type to its registered handler.
// Without one the value is returned unchanged and emission reports it.
func (cv *conversion) custom(rv reflect.Value, path string) (any, error) {
	reg := cv.codec.opts.Registry
	for t := rv; ; t = t.Elem() {
		name := QualifiedTypeName(t.Type())
		if h, ok := reg.Lookup(name); ok {
			out, err := h(t.Interface())
			if err != nil {
				e := wrapError(CodeSerialization, err, "Custom handler for '%s' failed", name)
				e.Path, e.TypeName = path, name
				return nil, e
			}
			return cv.value(reflect.ValueOf(out), path)
		}
		if t.Kind() != reflect.Pointer || t.IsNil() {
			break
		}
	}
	return rv.Interface(), nil
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv
		}
		rv = rv.Elem()
	}
	return rv
}
