package smartjson

import (
	"fmt"
	"reflect"
)

// EnumMember is one named constant of an enumeration.
type EnumMember struct {
	Name  string
	Value any
}

// Enumeration is a closed set of named constants. Values implementing it
// are converted to a mapping from member name to member value.
type Enumeration interface {
	EnumName() string
	Members() []EnumMember
}

// Enum is a ready-made Enumeration with members kept in declaration order.
type Enum struct {
	name    string
	members []EnumMember
	index   map[string]int
}

// NewEnum returns an enumeration named name. Member names must be unique and
// non-empty.
func NewEnum(name string, members ...EnumMember) (*Enum, error) {
	if name == "" {
		return nil, fmt.Errorf("enum name must not be empty")
	}
	e := &Enum{name: name, index: make(map[string]int, len(members))}
	for _, m := range members {
		if m.Name == "" {
			return nil, fmt.Errorf("enum %s: member name must not be empty", name)
		}
		if _, dup := e.index[m.Name]; dup {
			return nil, fmt.Errorf("enum %s: duplicate member %q", name, m.Name)
		}
		e.index[m.Name] = len(e.members)
		e.members = append(e.members, m)
	}
	return e, nil
}

// MustEnum is like NewEnum but panics on error.
func MustEnum(name string, members ...EnumMember) *Enum {
	e, err := NewEnum(name, members...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum) EnumName() string { return e.name }

func (e *Enum) Members() []EnumMember {
	out := make([]EnumMember, len(e.members))
	copy(out, e.members)
	return out
}

// Value returns the value of the member called name.
func (e *Enum) Value(name string) (any, bool) {
	i, ok := e.index[name]
	if !ok {
		return nil, false
	}
	return e.members[i].Value, true
}

// Names returns member names in declaration order.
func (e *Enum) Names() []string {
	out := make([]string, len(e.members))
	for i, m := range e.members {
		out[i] = m.Name
	}
	return out
}

// ConvertEnum converts an enumeration using the default codec.
func ConvertEnum(v any) (map[string]any, error) { return Default().ConvertEnum(v) }

// ConvertEnum maps each member name of v to its converted value. v must
// implement Enumeration.
func (c *Codec) ConvertEnum(v any) (map[string]any, error) {
	cv := c.newConversion()
	return cv.enumeration(reflect.ValueOf(v), "")
}
