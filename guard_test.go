package smartjson

import (
	"errors"
	"reflect"
	"testing"
)

func TestIdentityOf(t *testing.T) {
	backing := []int{1, 2, 3}
	a, okA := identityOf(reflect.ValueOf(backing[:2]))
	b, okB := identityOf(reflect.ValueOf(backing))
	if !okA || !okB {
		t.Fatalf("non-empty slices carry an identity")
	}
	if a == b {
		t.Fatalf("slices of different length over one array must differ")
	}
	if _, ok := identityOf(reflect.ValueOf(backing[:0])); ok {
		t.Fatalf("empty slice must not carry an identity")
	}
	if _, ok := identityOf(reflect.ValueOf((*int)(nil))); ok {
		t.Fatalf("nil pointer must not carry an identity")
	}
	if _, ok := identityOf(reflect.ValueOf(struct{}{})); ok {
		t.Fatalf("struct values are not references")
	}

	m := map[string]int{}
	m1, _ := identityOf(reflect.ValueOf(m))
	m2, _ := identityOf(reflect.ValueOf(m))
	if m1 != m2 {
		t.Fatalf("same map, different identity")
	}
}

func TestCycleGuard_EnterLeave(t *testing.T) {
	x := new(int)
	id, _ := identityOf(reflect.ValueOf(x))

	var g cycleGuard
	if err := g.enter(id, ""); err != nil {
		t.Fatalf("first enter: %v", err)
	}
	err := g.enter(id, "a.b")
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("second enter: %v", err)
	}
	e, _ := AsError(err)
	if e.Path != "a.b" || e.ObjectID != id.addr || e.TypeName != "*int" {
		t.Fatalf("unexpected details: %+v", e)
	}
	g.leave(id)
	if err := g.enter(id, "c"); err != nil {
		t.Fatalf("enter after leave: %v", err)
	}
}

func TestParsePath(t *testing.T) {
	steps, err := parsePath("items[2].price")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []pathStep{{name: "items"}, {index: 2, isIndex: true}, {name: "price"}}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps = %+v", steps)
	}
	for _, bad := range []string{"", ".a", "a.", "a[", "a[-1]", "a[x]"} {
		if _, err := parsePath(bad); err == nil {
			t.Fatalf("parsePath(%q) should fail", bad)
		}
	}
}

func TestOptionsMaxDepth(t *testing.T) {
	cases := map[int]int{0: DefaultMaxDepth, -1: 0, 5: 5}
	for in, want := range cases {
		if got := (Options{MaxDepth: in}).maxDepth(); got != want {
			t.Fatalf("maxDepth(%d) = %d, want %d", in, got, want)
		}
	}
}
