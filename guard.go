package smartjson

import "reflect"

// identity keys one live reference-carrying value. Two slices sharing a
// backing array but of different lengths are different values, so the
// length is part of the key.
type identity struct {
	addr uintptr
	typ  reflect.Type
	n    int
}

// cycleGuard is the set of identities on the active conversion path, each
// with the path at which it was entered. Entries are removed when the value
// is left, so siblings may share an object.
type cycleGuard struct {
	active map[identity]string
}

// identityOf returns the key for rv and whether rv carries a reference at
// all. Nil references and empty slices never cycle.
func identityOf(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{addr: rv.Pointer(), typ: rv.Type()}, true
	case reflect.Slice:
		if rv.Len() == 0 {
			return identity{}, false
		}
		return identity{addr: rv.Pointer(), typ: rv.Type(), n: rv.Len()}, true
	}
	return identity{}, false
}

// enter records id at path, failing when it is already active.
func (g *cycleGuard) enter(id identity, path string) error {
	if g.active == nil {
		g.active = make(map[identity]string)
	}
	if first, ok := g.active[id]; ok {
		e := newError(CodeCircularDependency, path,
			"Circular dependency detected for object of type '%s' (id: %#x) at '%s' (first entered at '%s')",
			QualifiedTypeName(id.typ), id.addr, rootPath(path), rootPath(first))
		e.TypeName = QualifiedTypeName(id.typ)
		e.ObjectID = id.addr
		return e
	}
	g.active[id] = path
	return nil
}

func (g *cycleGuard) leave(id identity) { delete(g.active, id) }

func rootPath(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}
