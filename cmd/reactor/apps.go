package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// apps are the built-in example apps served and rendered by the CLI.
var apps = map[string]func() *component.Options{
	"counter": counterApp,
	"todos":   todosApp,
}

func appNames() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupApp(name string) (*component.Options, error) {
	fn, ok := apps[name]
	if !ok {
		return nil, fmt.Errorf("unknown app %q (available: %s)", name, strings.Join(appNames(), ", "))
	}
	return fn(), nil
}

func counterApp() *component.Options {
	return &component.Options{
		Name: "Counter",
		Data: func(*component.Instance) map[string]any { return map[string]any{"count": 0} },
		Methods: map[string]component.Method{
			"increment": func(vm *component.Instance, _ ...any) any {
				vm.Set("count", vm.Get("count").(int)+1)
				return nil
			},
		},
		Render: func(vm *component.Instance, h component.CreateElement) *vdom.VNode {
			return h("div", vdom.Class("counter"),
				h("p", fmt.Sprintf("Count: %d", vm.Get("count"))),
				h("button", vdom.OnClick(func(...any) { vm.Call("increment") }), "+1"),
			)
		},
	}
}

type todo struct {
	ID    int
	Title string
}

var todoItem = &component.Options{
	Name: "todo-item",
	Props: map[string]component.PropDef{
		"title": {Required: true},
	},
	Render: func(vm *component.Instance, h component.CreateElement) *vdom.VNode {
		return h("li",
			h("span", fmt.Sprint(vm.Get("title"))),
			h("button", vdom.OnClick(func(...any) { vm.Emit("remove") }), "x"),
		)
	},
}

func todosApp() *component.Options {
	return &component.Options{
		Name:       "Todos",
		Components: map[string]any{"todo-item": todoItem},
		Data: func(*component.Instance) map[string]any {
			return map[string]any{
				"draft":  "",
				"nextID": 3,
				"todos": reactive.NewList(
					todo{ID: 1, Title: "Write the render function"},
					todo{ID: 2, Title: "Watch it update"},
				),
			}
		},
		Computed: map[string]component.ComputedDef{
			"remaining": {Get: func(vm *component.Instance) any {
				return vm.Get("todos").(*reactive.List).Len()
			}},
		},
		Methods: map[string]component.Method{
			"add": func(vm *component.Instance, _ ...any) any {
				title := strings.TrimSpace(fmt.Sprint(vm.Get("draft")))
				if title == "" {
					return nil
				}
				id := vm.Get("nextID").(int)
				vm.Get("todos").(*reactive.List).Push(todo{ID: id, Title: title})
				vm.Set("nextID", id+1)
				vm.Set("draft", "")
				return nil
			},
			"remove": func(vm *component.Instance, args ...any) any {
				list := vm.Get("todos").(*reactive.List)
				for i, item := range list.Items() {
					if item.(todo).ID == args[0].(int) {
						list.Splice(i, 1)
						break
					}
				}
				return nil
			},
		},
		Render: func(vm *component.Instance, h component.CreateElement) *vdom.VNode {
			var items []*vdom.VNode
			for _, item := range vm.Get("todos").(*reactive.List).Items() {
				t := item.(todo)
				items = append(items, h("todo-item",
					vdom.Key(t.ID),
					vdom.Prop("title", t.Title),
					vdom.On("remove", func(...any) { vm.Call("remove", t.ID) }),
				))
			}
			return h("div", vdom.Class("todos"),
				h("input",
					vdom.Value(fmt.Sprint(vm.Get("draft"))),
					vdom.Placeholder("What needs doing?"),
					vdom.OnInput(func(args ...any) {
						if len(args) > 0 {
							vm.Set("draft", fmt.Sprint(args[0]))
						}
					}),
				),
				h("button", vdom.OnClick(func(...any) { vm.Call("add") }), "Add"),
				h("ul", items),
				h("p", fmt.Sprintf("%d remaining", vm.Get("remaining"))),
			)
		},
	}
}
