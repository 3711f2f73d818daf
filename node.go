package smartjson

import (
	"reflect"
	"sort"
	"time"
)

// Node is an attribute-addressable tree built from parsed JSON. Values are
// string, int64, float64, bool, nil, time.Time, Date, []any and *Node.
// Strings shaped like timestamps this package emits are reinterpreted as
// time.Time (date-times) or Date (bare dates).
//
// A Node implements Describer, so it can be serialized again.
type Node struct {
	fields map[string]any
}

// BuildNode builds a Node from a mapping (map[string]any, any other map
// with stringifiable keys, or *OrderedMap) with the default codec.
func BuildNode(m any) (*Node, error) { return Default().BuildNode(m) }

// BuildNode builds a Node from a mapping. Nesting is bounded by MaxDepth and
// a mapping or sequence that contains itself is rejected.
func (c *Codec) BuildNode(m any) (*Node, error) {
	if !isNodeSource(m) {
		e := newError(CodeDeserialization, "", "Cannot create Node from type '%s'. Expected a mapping structure.", typeNameOf(m))
		e.TypeName = typeNameOf(m)
		return nil, e
	}
	b := &nodeBuilder{limit: c.opts.maxDepth(), active: make(map[identity]int)}
	return b.node(reflect.ValueOf(m))
}

func isNodeSource(v any) bool {
	switch v.(type) {
	case map[string]any, *OrderedMap, *Node:
		return true
	case nil:
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && !isSetElem(rv.Type().Elem())
}

// isNodeSequence reports whether v is a sequence walked item by item. Byte
// slices are values.
func isNodeSequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func typeNameOf(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// nodeBuilder is the state of one BuildNode call. The current path is kept
// as steps and only rendered for errors.
type nodeBuilder struct {
	limit  int
	depth  int
	steps  []pathStep
	active map[identity]int // step count at which the value was entered
}

func (b *nodeBuilder) path() string { return renderPath(b.steps) }

// enter bounds depth and tracks rv on the active path.
func (b *nodeBuilder) enter(rv reflect.Value) (func(), error) {
	if b.limit > 0 && b.depth >= b.limit {
		return nil, newError(CodeDeserialization, b.path(),
			"Maximum nesting depth of %d exceeded at '%s'", b.limit, rootPath(b.path()))
	}
	id, tracked := identityOf(rv)
	if tracked {
		if first, ok := b.active[id]; ok {
			e := newError(CodeDeserialization, b.path(),
				"Circular reference detected for value of type '%s' at '%s' (first entered at '%s')",
				QualifiedTypeName(id.typ), rootPath(b.path()), rootPath(renderPath(b.steps[:first])))
			e.TypeName = QualifiedTypeName(id.typ)
			e.ObjectID = id.addr
			return nil, e
		}
		b.active[id] = len(b.steps)
	}
	b.depth++
	return func() {
		b.depth--
		if tracked {
			delete(b.active, id)
		}
	}, nil
}

func (b *nodeBuilder) node(rv reflect.Value) (*Node, error) {
	leave, err := b.enter(rv)
	if err != nil {
		return nil, err
	}
	defer leave()

	entries, err := nodeEntries(rv.Interface())
	if err != nil {
		e := wrapError(CodeDeserialization, err, "Cannot read mapping at '%s'", rootPath(b.path()))
		e.Path = b.path()
		return nil, e
	}
	n := &Node{fields: make(map[string]any, len(entries))}
	for _, kv := range entries {
		b.steps = append(b.steps, pathStep{name: kv.key})
		v, err := b.value(kv.value)
		if err != nil {
			if !isTaxonomy(err) {
				e := wrapError(CodeDeserialization, err, "Error processing attribute '%s'", kv.key)
				e.Path = b.path()
				err = e
			}
			return nil, err
		}
		b.steps = b.steps[:len(b.steps)-1]
		n.fields[kv.key] = v
	}
	return n, nil
}

type nodeEntry struct {
	key   string
	value any
}

func nodeEntries(m any) ([]nodeEntry, error) {
	var out []nodeEntry
	switch t := m.(type) {
	case map[string]any:
		for k, v := range t {
			out = append(out, nodeEntry{k, v})
		}
	case *OrderedMap:
		t.Range(func(k string, v any) bool {
			out = append(out, nodeEntry{k, v})
			return true
		})
	case *Node:
		for k, v := range t.fields {
			out = append(out, nodeEntry{k, v})
		}
	default:
		iter := reflect.ValueOf(m).MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			out = append(out, nodeEntry{k, iter.Value().Interface()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

func (b *nodeBuilder) value(v any) (any, error) {
	if s, ok := v.(string); ok {
		if ts, ok := parseTimestamp(s); ok {
			return ts, nil
		}
		return s, nil
	}
	if isNodeSource(v) {
		return b.node(reflect.ValueOf(v))
	}
	if rv := reflect.ValueOf(v); isNodeSequence(rv) {
		return b.sequence(rv)
	}
	return v, nil
}

// sequence walks any slice or array. Mapping items become nodes; other
// items, strings included, are kept as they are.
func (b *nodeBuilder) sequence(rv reflect.Value) (any, error) {
	leave, err := b.enter(rv)
	if err != nil {
		return nil, err
	}
	defer leave()

	out := make([]any, rv.Len())
	for i := range out {
		item := rv.Index(i).Interface()
		if !isNodeSource(item) {
			out[i] = item
			continue
		}
		b.steps = append(b.steps, pathStep{index: i, isIndex: true})
		child, err := b.node(reflect.ValueOf(item))
		if err != nil {
			return nil, err
		}
		b.steps = b.steps[:len(b.steps)-1]
		out[i] = child
	}
	return out, nil
}

// Get returns the attribute called name.
func (n *Node) Get(name string) (any, bool) {
	v, ok := n.fields[name]
	return v, ok
}

func (n *Node) Has(name string) bool {
	_, ok := n.fields[name]
	return ok
}

// Keys returns the attribute names in ascending order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) Len() int { return len(n.fields) }

func (n *Node) Str(name string) (string, bool) {
	s, ok := n.fields[name].(string)
	return s, ok
}

// Int returns an integer attribute. Floats with no fractional part qualify.
func (n *Node) Int(name string) (int64, bool) {
	switch v := n.fields[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

func (n *Node) Float(name string) (float64, bool) {
	switch v := n.fields[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (n *Node) Bool(name string) (bool, bool) {
	b, ok := n.fields[name].(bool)
	return b, ok
}

// Time returns a temporal attribute; bare dates are midnight UTC.
func (n *Node) Time(name string) (time.Time, bool) {
	switch v := n.fields[name].(type) {
	case time.Time:
		return v, true
	case Date:
		return v.Time(), true
	}
	return time.Time{}, false
}

func (n *Node) Date(name string) (Date, bool) {
	switch v := n.fields[name].(type) {
	case Date:
		return v, true
	case time.Time:
		return DateOf(v), true
	}
	return Date{}, false
}

func (n *Node) List(name string) ([]any, bool) {
	l, ok := n.fields[name].([]any)
	return l, ok
}

func (n *Node) Node(name string) (*Node, bool) {
	c, ok := n.fields[name].(*Node)
	return c, ok
}

// Lookup resolves a dotted path with bracketed indices, for example
// "items[0].price".
func (n *Node) Lookup(path string) (any, bool) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	var cur any = n
	for _, s := range steps {
		if s.isIndex {
			l, ok := cur.([]any)
			if !ok || s.index >= len(l) {
				return nil, false
			}
			cur = l[s.index]
			continue
		}
		node, ok := cur.(*Node)
		if !ok {
			return nil, false
		}
		if cur, ok = node.fields[s.name]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// ToMap returns the tree as plain maps and slices. Temporal values are kept.
func (n *Node) ToMap() map[string]any {
	out := make(map[string]any, len(n.fields))
	for k, v := range n.fields {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	}
	return v
}

// DescribeFields lists the attributes in ascending name order.
func (n *Node) DescribeFields() ([]Field, error) {
	out := make([]Field, 0, len(n.fields))
	for _, k := range n.Keys() {
		out = append(out, Field{Name: k, Value: n.fields[k]})
	}
	return out, nil
}
