package component

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/vdom"
)

func TestMergeOptions_Hooks(t *testing.T) {
	rec := &recorder{}
	mixin := &Options{Created: rec.hook("mixin", "created")}
	base := &Options{Created: rec.hook("base", "created")}
	child := &Options{
		Extends: base,
		Mixins:  []*Options{mixin},
		Created: rec.hook("child", "created"),
	}

	merged := MergeOptions(nil, child)
	for _, h := range merged.Created {
		h(nil)
	}

	want := []string{"base created", "mixin created", "child created"}
	if diff := cmp.Diff(want, rec.list()); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeOptions_Data(t *testing.T) {
	parent := &Options{Data: func(*Instance) map[string]any {
		return map[string]any{
			"a":    1,
			"b":    1,
			"nest": map[string]any{"x": 1, "y": 1},
		}
	}}
	child := &Options{Data: func(*Instance) map[string]any {
		return map[string]any{
			"b":    2,
			"nest": map[string]any{"y": 2},
		}
	}}

	got := MergeOptions(parent, child).Data(nil)

	want := map[string]any{
		"a":    1,
		"b":    2,
		"nest": map[string]any{"x": 1, "y": 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeOptions_OverridesAndWatch(t *testing.T) {
	one := func(*Instance, ...any) any { return 1 }
	two := func(*Instance, ...any) any { return 2 }
	noop := func(*Instance, any, any) {}
	parent := &Options{
		Name:    "parent",
		Methods: map[string]Method{"a": one, "b": one},
		Props:   map[string]PropDef{"p": {Default: 1}},
		Watch:   map[string][]WatchDef{"x": {{Handler: noop}}},
	}
	child := &Options{
		Methods: map[string]Method{"b": two},
		Props:   map[string]PropDef{"p": {Default: 2}, "q": {}},
		Watch:   map[string][]WatchDef{"x": {{Handler: noop, Deep: true}}, "y": {{Handler: noop}}},
	}

	m := MergeOptions(parent, child)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"name", m.Name, "parent"},
		{"method a", m.Methods["a"](nil), 1},
		{"method b", m.Methods["b"](nil), 2},
		{"prop p default", m.Props["p"].Default, 2},
		{"props", len(m.Props), 2},
		{"watch x", len(m.Watch["x"]), 2},
		{"watch x child last", m.Watch["x"][1].Deep, true},
		{"watch y", len(m.Watch["y"]), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMergeOptions_RegistriesChain(t *testing.T) {
	a, b := &Options{Name: "a"}, &Options{Name: "b"}
	parent := &Options{Components: map[string]any{"ItemA": a}}
	child := &Options{
		Components: map[string]any{"ItemB": b},
		Directives: map[string]any{"focus": vdom.DirectiveHook(func(vdom.Node, *vdom.Directive, *vdom.VNode, *vdom.VNode) {})},
	}

	m := MergeOptions(MergeOptions(nil, parent), child)

	if got, ok := m.ComponentRegistry().Lookup("item-a"); !ok || got != a {
		t.Errorf("Lookup(item-a) = %v, %v; want inherited definition", got, ok)
	}
	if got, ok := m.ComponentRegistry().Lookup("ItemB"); !ok || got != b {
		t.Errorf("Lookup(ItemB) = %v, %v; want own definition", got, ok)
	}
	d, ok := m.DirectiveRegistry().Lookup("focus")
	if !ok || d.Bind == nil || d.Update == nil {
		t.Errorf("directive focus = %+v, want bind and update from the hook", d)
	}
	if _, ok := MergeOptions(nil, parent).ComponentRegistry().Lookup("ItemB"); ok {
		t.Error("child registration leaked into the parent registry")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	root := NewRegistry[int](nil)
	root.Register("GlobalThing", 1)
	r := NewRegistry(root)
	r.Register("myComp", 2)
	r.Register("Plain", 3)

	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"myComp", 2, true},
		{"my-comp", 2, true},
		{"Plain", 3, true},
		{"plain", 3, true},
		{"global-thing", 1, true},
		{"GlobalThing", 1, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := r.Lookup(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCaseHelpers(t *testing.T) {
	tests := []struct {
		in, camel, hyphen string
	}{
		{"my-comp", "myComp", "my-comp"},
		{"myComp", "myComp", "my-comp"},
		{"TodoItem", "TodoItem", "todo-item"},
		{"x", "x", "x"},
	}
	for _, tt := range tests {
		if got := camelize(tt.in); got != tt.camel {
			t.Errorf("camelize(%q) = %q, want %q", tt.in, got, tt.camel)
		}
		if got := hyphenate(tt.in); got != tt.hyphen {
			t.Errorf("hyphenate(%q) = %q, want %q", tt.in, got, tt.hyphen)
		}
	}
}

func TestCtor_Extend(t *testing.T) {
	rec := &recorder{}
	parentOpts := &Options{Name: "ExtendParent", Created: rec.hook("parent", "created")}
	childOpts := &Options{Created: rec.hook("child", "created")}

	parent := Extend(parentOpts)
	child := parent.Extend(childOpts)

	if Extend(parentOpts) != parent {
		t.Error("Extend is not cached per options")
	}
	if child.Super() != parent || parent.Super() != Base {
		t.Error("Super chain is wrong")
	}
	if child.CID() == parent.CID() || parent.CID() == 0 {
		t.Errorf("CIDs = %d, %d; want distinct non-zero", parent.CID(), child.CID())
	}
	if got := child.Options().Name; got != "ExtendParent" {
		t.Errorf("Name = %q, want inherited name", got)
	}
	for _, h := range child.Options().Created {
		h(nil)
	}
	if diff := cmp.Diff([]string{"parent created", "child created"}, rec.list()); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}
	if got, _ := parent.Options().ComponentRegistry().Lookup("ExtendParent"); got != parent {
		t.Errorf("self lookup = %v, want the constructor", got)
	}
}

func TestCtor_MixinReachesSubConstructors(t *testing.T) {
	rec := &recorder{}
	root := Extend(&Options{Name: "MixinRoot"})
	sub := root.Extend(&Options{})
	_ = sub.Options()

	root.Mixin(&Options{Mounted: rec.hook("mixin", "mounted")})

	if got := len(sub.Options().Mounted); got != 1 {
		t.Errorf("sub mounted hooks = %d, want 1 after mixin", got)
	}
}

type countingPlugin struct{ installs int }

func (p *countingPlugin) Install(c *Ctor, args ...any) {
	p.installs++
	c.Component("plugin-widget", &Options{})
}

func TestCtor_UseIsIdempotent(t *testing.T) {
	c := Extend(&Options{Name: "UseHost"})
	p := &countingPlugin{}

	c.Use(p)
	c.Use(p)

	if p.installs != 1 {
		t.Errorf("installs = %d, want 1", p.installs)
	}
	if c.Component("plugin-widget", nil) == nil {
		t.Error("plugin component not registered")
	}
	if _, ok := Base.Options().ComponentRegistry().Lookup("plugin-widget"); ok {
		t.Error("plugin component leaked into Base")
	}
}

func TestCtor_ReservedNameWarns(t *testing.T) {
	warnings := recordWarnings(t)

	Extend(&Options{Name: "div"})

	if diff := cmp.Diff([]string{"C005"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}
