package component

import (
	stderrors "errors"
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func counterOptions(renders *int) *Options {
	return &Options{
		Name: "Counter",
		Data: func(*Instance) map[string]any { return map[string]any{"count": 0} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			if renders != nil {
				*renders++
			}
			return h("p", fmt.Sprint(vm.Get("count")))
		},
	}
}

func TestInstance_CounterUpdatesSameTextNode(t *testing.T) {
	app := mountApp(t, counterOptions(nil))

	if got, want := app.html(), "<p>0</p>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}
	text := app.root.Children()[0].Children()[0]
	app.doc.ResetStats()

	app.vm.Set("count", 1)
	app.flush(t)

	if got, want := app.html(), "<p>1</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if app.root.Children()[0].Children()[0] != text {
		t.Error("text node was replaced, want it updated in place")
	}
	stats := app.doc.Stats()
	if stats.TextSet != 1 || stats.Mutations() != 1 {
		t.Errorf("stats = %+v, want exactly one text update", stats)
	}
}

func TestInstance_SetUndeclaredKeyRejected(t *testing.T) {
	warnings := recordWarnings(t)
	app := mountApp(t, counterOptions(nil))

	app.vm.Set("undeclared", 1)
	app.flush(t)

	if got, want := warnings.list(), []string{"R001"}; !slices.Equal(got, want) {
		t.Errorf("warnings = %v, want %v", got, want)
	}
	if app.vm.Data().Has("undeclared") {
		t.Error("Data().Has(\"undeclared\") = true, want false")
	}
	if got := app.vm.Get("undeclared"); got != nil {
		t.Errorf("Get(\"undeclared\") = %v, want nil", got)
	}
}

func TestInstance_WritesBatchIntoOneRender(t *testing.T) {
	renders := 0
	app := mountApp(t, counterOptions(&renders))
	renders = 0

	for i := 1; i <= 5; i++ {
		app.vm.Set("count", i)
	}
	app.flush(t)

	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got, want := app.html(), "<p>5</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_EqualWriteDoesNotRender(t *testing.T) {
	renders := 0
	app := mountApp(t, counterOptions(&renders))
	renders = 0

	app.vm.Set("count", 0)
	app.flush(t)

	if renders != 0 {
		t.Errorf("renders = %d, want 0", renders)
	}
}

func TestInstance_LifecycleOrder(t *testing.T) {
	rec := &recorder{}
	child := &Options{
		Name:         "Child",
		BeforeCreate: rec.hook("child", "beforeCreate"),
		Created:      rec.hook("child", "created"),
		BeforeMount:  rec.hook("child", "beforeMount"),
		Mounted:      rec.hook("child", "mounted"),
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("span", "child")
		},
	}
	app := mountApp(t, &Options{
		BeforeCreate: rec.hook("parent", "beforeCreate"),
		Created:      rec.hook("parent", "created"),
		BeforeMount:  rec.hook("parent", "beforeMount"),
		Mounted:      rec.hook("parent", "mounted"),
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h(child))
		},
	})

	want := []string{
		"parent beforeCreate", "parent created", "parent beforeMount",
		"child beforeCreate", "child created", "child beforeMount",
		"child mounted", "parent mounted",
	}
	if diff := cmp.Diff(want, rec.list()); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
	if got, want := app.html(), "<div><span>child</span></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	children := app.vm.Children()
	if len(children) != 1 || children[0].Parent() != app.vm || children[0].Root() != app.vm {
		t.Errorf("child links wrong: %v", children)
	}
}

func TestInstance_UpdateHooks(t *testing.T) {
	rec := &recorder{}
	opts := counterOptions(nil)
	opts.BeforeUpdate = rec.hook("counter", "beforeUpdate")
	opts.Updated = rec.hook("counter", "updated")
	app := mountApp(t, opts)

	app.vm.Set("count", 1)
	app.flush(t)

	want := []string{"counter beforeUpdate", "counter updated"}
	if diff := cmp.Diff(want, rec.list()); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_ParentRendersBeforeChild(t *testing.T) {
	store := reactive.ObjectOf("n", 0)
	reactive.Observe(store, false)

	rec := &recorder{}
	child := &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			rec.add("child")
			return h("span", fmt.Sprint(store.Get("n")))
		},
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			rec.add("parent")
			return h("div", fmt.Sprint(store.Get("n")), h(child))
		},
	})
	rec.reset()

	store.Set("n", 1)
	app.flush(t)

	if diff := cmp.Diff([]string{"parent", "child"}, rec.list()); diff != "" {
		t.Errorf("render order mismatch (-want +got):\n%s", diff)
	}
	if got, want := app.html(), "<div>1<span>1</span></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_PropsFlowToChild(t *testing.T) {
	warnings := recordWarnings(t)
	child := &Options{
		Name: "Label",
		Props: map[string]PropDef{
			"text":  {Required: true},
			"color": {Default: "black"},
		},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("span", fmt.Sprintf("%v/%v", vm.Get("text"), vm.Get("color")))
		},
	}
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"msg": "hi"} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h(child, vdom.Prop("text", vm.Get("msg"))))
		},
	})

	if got, want := app.html(), "<div><span>hi/black</span></div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	app.vm.Set("msg", "bye")
	app.flush(t)
	if got, want := app.html(), "<div><span>bye/black</span></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if len(warnings.list()) != 0 {
		t.Errorf("warnings = %v, want none", warnings.list())
	}

	app.vm.Children()[0].Set("text", "local")
	if !slices.Contains(warnings.list(), "C005") {
		t.Errorf("warnings = %v, want C005 for a prop mutation", warnings.list())
	}
}

func TestInstance_AttributePropsAreExtracted(t *testing.T) {
	child := &Options{
		Props: map[string]PropDef{"userName": {}},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("b", fmt.Sprint(vm.Get("userName")))
		},
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h(child, vdom.AttrOf("user-name", "ann"), vdom.ID("x"))
		},
	})

	if got, want := app.html(), `<b id="x">ann</b>`; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_MissingRequiredPropWarns(t *testing.T) {
	warnings := recordWarnings(t)
	child := &Options{
		Props:  map[string]PropDef{"id": {Required: true}},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("i") },
	}
	mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("div", h(child)) },
	})

	if diff := cmp.Diff([]string{"C005"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_ComputedAndWatch(t *testing.T) {
	var seen [][2]any
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"count": 1} },
		Computed: map[string]ComputedDef{
			"double": {Get: func(vm *Instance) any { return vm.Get("count").(int) * 2 }},
		},
		Watch: map[string][]WatchDef{
			"count": {{Handler: func(_ *Instance, n, o any) { seen = append(seen, [2]any{n, o}) }}},
		},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("p", fmt.Sprint(vm.Get("double")))
		},
	})

	app.vm.Set("count", 4)
	if got := app.vm.Get("double"); got != 8 {
		t.Errorf("double = %v, want 8", got)
	}
	app.flush(t)

	if diff := cmp.Diff([][2]any{{4, 1}}, seen); diff != "" {
		t.Errorf("watch calls mismatch (-want +got):\n%s", diff)
	}
	if got, want := app.html(), "<p>8</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_WatchFunctionImmediate(t *testing.T) {
	app := mountApp(t, counterOptions(nil))

	var calls []any
	unwatch := app.vm.Watch(func(vm *Instance) any { return vm.Get("count").(int) + 10 },
		func(n, _ any) { calls = append(calls, n) },
		WatchOptions{Immediate: true})

	app.vm.Set("count", 1)
	app.flush(t)
	unwatch()
	app.vm.Set("count", 2)
	app.flush(t)

	if diff := cmp.Diff([]any{10, 11}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_WatchInvalidPathWarns(t *testing.T) {
	warnings := recordWarnings(t)
	app := mountApp(t, counterOptions(nil))

	app.vm.Watch("a[0]", func(any, any) {}, WatchOptions{})

	if diff := cmp.Diff([]string{"W003"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_SelfMutatingWatcherReportsOnce(t *testing.T) {
	errs := recordErrors(t)
	app := mountApp(t, counterOptions(nil))

	app.vm.Watch("count", func(n, _ any) {
		app.vm.Set("count", n.(int)+1)
	}, WatchOptions{})
	app.vm.Set("count", 1)
	app.flush(t)

	if diff := cmp.Diff([]string{"S001"}, errs.codes()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_Methods(t *testing.T) {
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"n": 2} },
		Methods: map[string]Method{
			"times": func(vm *Instance, args ...any) any { return vm.Get("n").(int) * args[0].(int) },
		},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("p", fmt.Sprint(vm.Call("times", 3)))
		},
	})

	if got, want := app.html(), "<p>6</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	bound, ok := app.vm.Get("times").(func(args ...any) any)
	if !ok {
		t.Fatalf("Get(times) = %T, want bound method", app.vm.Get("times"))
	}
	if got := bound(5); got != 10 {
		t.Errorf("times(5) = %v, want 10", got)
	}
}

func TestInstance_EventsFromChild(t *testing.T) {
	var got []any
	child := &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("button", "save") },
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h(child,
				vdom.On("save", func(args ...any) { got = append(got, args...) }),
				vdom.NativeOn("click", func(...any) { got = append(got, "click") }),
			))
		},
	})
	c := app.vm.Children()[0]

	c.Emit("save", 42)
	button := app.root.Find(dom.ByTag("button"))
	app.doc.Dispatch(button, "click")

	if diff := cmp.Diff([]any{42, "click"}, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_OnceAndOff(t *testing.T) {
	app := mountApp(t, counterOptions(nil))
	vm := app.vm

	calls := 0
	vm.Once("ping", func(...any) { calls++ })
	off := vm.On("ping", func(...any) { calls += 10 })
	vm.Emit("ping")
	vm.Emit("ping")
	off()
	vm.Emit("ping")

	if calls != 21 {
		t.Errorf("calls = %d, want 21", calls)
	}

	vm.On("a", func(...any) { calls++ })
	vm.Off()
	vm.Emit("a")
	if calls != 21 {
		t.Errorf("calls after Off = %d, want 21", calls)
	}
}

func TestInstance_HookEvents(t *testing.T) {
	rec := &recorder{}
	app := mountApp(t, counterOptions(nil))
	app.vm.On("hook:updated", func(...any) { rec.add("updated") })

	app.vm.Set("count", 3)
	app.flush(t)

	if diff := cmp.Diff([]string{"updated"}, rec.list()); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_Slots(t *testing.T) {
	layout := &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("section", h("header", vm.Slot("title")), vm.Slot("default"))
		},
	}
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"body": "one"} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h(layout,
				h("h1", vdom.Slot("title"), "T"),
				h("p", fmt.Sprint(vm.Get("body"))),
				" ",
			)
		},
	})

	if got, want := app.html(), "<section><header><h1>T</h1></header><p>one</p> </section>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	app.vm.Set("body", "two")
	app.flush(t)
	if got, want := app.html(), "<section><header><h1>T</h1></header><p>two</p> </section>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestResolveSlots_DropsWhitespaceOnly(t *testing.T) {
	vm := &Instance{}
	named := vdom.El("b", vdom.Slot("x"))
	named.Context = vm

	slots := resolveSlots([]*vdom.VNode{vdom.Text("  "), vdom.Empty(), named}, vm)

	if _, ok := slots["default"]; ok {
		t.Error("default slot kept, want it dropped")
	}
	if len(slots["x"]) != 1 {
		t.Errorf("slot x = %v, want one node", slots["x"])
	}
}

func TestInstance_Refs(t *testing.T) {
	child := &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("i") },
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h("span", vdom.Ref("label")), h(child, vdom.Ref("child")))
		},
	})

	if span, ok := app.vm.Ref("label").(*dom.Node); !ok || span.Tag != "span" {
		t.Errorf("ref label = %v, want the span", app.vm.Ref("label"))
	}
	if c, ok := app.vm.Ref("child").(*Instance); !ok || c != app.vm.Children()[0] {
		t.Errorf("ref child = %v, want the child instance", app.vm.Ref("child"))
	}
}

func TestInstance_DestroyOnRemoval(t *testing.T) {
	rec := &recorder{}
	child := &Options{
		BeforeDestroy: rec.hook("child", "beforeDestroy"),
		Destroyed:     rec.hook("child", "destroyed"),
		Render:        func(vm *Instance, h CreateElement) *vdom.VNode { return h("i") },
	}
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"show": true} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			var c any
			if vm.Get("show").(bool) {
				c = child
			}
			return h("div", h(c))
		},
	})
	c := app.vm.Children()[0]

	app.vm.Set("show", false)
	app.flush(t)

	if diff := cmp.Diff([]string{"child beforeDestroy", "child destroyed"}, rec.list()); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}
	if !c.IsDestroyed() || len(app.vm.Children()) != 0 {
		t.Errorf("destroyed = %v, children = %d", c.IsDestroyed(), len(app.vm.Children()))
	}
	if got, want := app.html(), "<div><!----></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_DestroyStopsRendering(t *testing.T) {
	renders := 0
	app := mountApp(t, counterOptions(&renders))
	renders = 0

	app.vm.Destroy()
	app.vm.Set("count", 1)
	app.flush(t)

	if renders != 0 {
		t.Errorf("renders = %d, want 0 after Destroy", renders)
	}
}

func TestInstance_ErrorCaptured(t *testing.T) {
	tests := []struct {
		name       string
		propagate  bool
		wantGlobal int
	}{
		{name: "captured", propagate: false, wantGlobal: 0},
		{name: "propagated", propagate: true, wantGlobal: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := recordErrors(t)
			var captured []string
			broken := &Options{
				Name:   "Broken",
				Render: func(vm *Instance, h CreateElement) *vdom.VNode { panic("boom") },
			}
			mountApp(t, &Options{
				ErrorCaptured: []ErrorCapturedFunc{func(vm *Instance, err error, origin *Instance, info string) bool {
					captured = append(captured, origin.Name()+" "+info)
					return tt.propagate
				}},
				Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("div", h(broken)) },
			})

			if diff := cmp.Diff([]string{"Broken render"}, captured); diff != "" {
				t.Errorf("captured mismatch (-want +got):\n%s", diff)
			}
			if got := len(errs.list()); got != tt.wantGlobal {
				t.Errorf("global errors = %d, want %d", got, tt.wantGlobal)
			}
		})
	}
}

func TestInstance_PanickingHookIsReported(t *testing.T) {
	errs := recordErrors(t)
	opts := counterOptions(nil)
	opts.Mounted = []HookFunc{func(*Instance) { panic(stderrors.New("bad hook")) }}

	app := mountApp(t, opts)

	list := errs.list()
	if len(list) != 1 || list[0].info != "mounted hook" {
		t.Fatalf("errors = %v, want one from the mounted hook", list)
	}
	var e *errors.Error
	if !stderrors.As(list[0].err, &e) || e.Code != "C002" {
		t.Errorf("error = %v, want C002", list[0].err)
	}
	if !app.vm.IsMounted() {
		t.Error("instance not mounted after a failing hook")
	}
}

func TestInstance_RenderPanicKeepsPreviousTree(t *testing.T) {
	errs := recordErrors(t)
	app := mountApp(t, &Options{
		Data: func(*Instance) map[string]any { return map[string]any{"fail": false} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			if vm.Get("fail").(bool) {
				panic("render failed")
			}
			return h("p", "ok")
		},
	})

	app.vm.Set("fail", true)
	app.flush(t)

	if got, want := app.html(), "<p>ok</p>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"C001"}, errs.codes()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_FunctionalComponent(t *testing.T) {
	badge := &Options{
		Props: map[string]PropDef{"label": {Default: "none"}},
		Functional: func(ctx *FunctionalContext, h CreateElement) *vdom.VNode {
			return h("em", fmt.Sprint(ctx.Props["label"]), ctx.Slots()["default"])
		},
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h(badge, vdom.Prop("label", "new"), "!"), h(badge))
		},
	})

	if got, want := app.html(), "<div><em>new!</em><em>none</em></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if n := len(app.vm.Children()); n != 0 {
		t.Errorf("children = %d, want 0 for functional components", n)
	}
}

func TestInstance_ResolvesDirectives(t *testing.T) {
	rec := &recorder{}
	app := mountApp(t, &Options{
		Directives: map[string]any{
			"focus": &vdom.DirectiveDef{
				Inserted: func(el vdom.Node, b *vdom.Directive, _, _ *vdom.VNode) {
					rec.add("inserted " + el.(*dom.Node).Tag)
				},
			},
		},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("input", &vdom.Directive{Name: "focus"})
		},
	})
	_ = app

	if diff := cmp.Diff([]string{"inserted input"}, rec.list()); diff != "" {
		t.Errorf("directive calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_UnknownDirectiveWarns(t *testing.T) {
	warnings := recordWarnings(t)
	mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", &vdom.Directive{Name: "missing"})
		},
	})

	if diff := cmp.Diff([]string{"C005"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestInstance_RegisteredComponentByName(t *testing.T) {
	app := mountApp(t, &Options{
		Components: map[string]any{
			"TodoItem": &Options{Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("li", "todo") }},
		},
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("ul", h("todo-item"), h("todoItem"))
		},
	})

	if got, want := app.html(), "<ul><li>todo</li><li>todo</li></ul>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if got := app.vm.Children()[0].Name(); got != "todo-item" {
		t.Errorf("Name() = %q, want %q", got, "todo-item")
	}
}

func TestInstance_Hydrate(t *testing.T) {
	doc := dom.New()
	container := doc.NewElement("main")
	el := doc.Append(container, doc.NewElement("div"))
	doc.SetAttribute(el, vdom.SSRAttr, "true")
	p := doc.Append(el, doc.NewElement("p"))
	doc.Append(p, doc.NewText("0"))
	doc.ResetStats()

	s := reactive.NewScheduler()
	vm := NewApp(&Options{
		Data: func(*Instance) map[string]any { return map[string]any{"count": 0} },
		Render: func(vm *Instance, h CreateElement) *vdom.VNode {
			return h("div", h("p", fmt.Sprint(vm.Get("count"))))
		},
	}, InstanceOptions{Ops: doc, Scheduler: s})
	vm.Hydrate(el)

	if vm.El() != vdom.Node(el) {
		t.Error("El() is not the server-rendered root")
	}
	if got := doc.Stats().Created; got != 0 {
		t.Errorf("created = %d, want 0", got)
	}

	vm.Set("count", 7)
	s.Drain(10)
	if got, want := container.InnerHTML(), "<div><p>7</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestInstance_TraceAndString(t *testing.T) {
	child := &Options{
		Name:   "my-child",
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("i") },
	}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("div", h(child)) },
	})

	if got, want := app.vm.Children()[0].Trace(), "<Root> > <MyChild>"; got != want {
		t.Errorf("Trace() = %q, want %q", got, want)
	}
}

func TestInstance_MountWithoutTargetWarns(t *testing.T) {
	warnings := recordWarnings(t)
	vm := NewApp(counterOptions(nil), InstanceOptions{Scheduler: reactive.NewScheduler()})
	vm.Mount(nil)

	if diff := cmp.Diff([]string{"C005"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if vm.IsMounted() {
		t.Error("IsMounted() = true, want false")
	}
}
