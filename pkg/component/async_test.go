package component

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func staticComponent(tag, text string) *Options {
	return &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h(tag, text) },
	}
}

func asyncHost(comp *AsyncComponent) *Options {
	return &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("div", h(comp)) },
	}
}

func TestAsyncComponent_ResolveLater(t *testing.T) {
	var resolve func(any)
	comp := &AsyncComponent{Load: func(res func(any), _ func(error)) { resolve = res }}
	app := mountApp(t, asyncHost(comp))

	if got, want := app.html(), "<div><!----></div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}
	if comp.Resolved() {
		t.Fatal("Resolved() = true before resolve")
	}

	resolve(staticComponent("p", "loaded"))
	app.flush(t)

	if got, want := app.html(), "<div><p>loaded</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if !comp.Resolved() {
		t.Error("Resolved() = false after resolve")
	}
}

func TestAsyncComponent_ResolveSynchronously(t *testing.T) {
	loads := 0
	comp := &AsyncComponent{Load: func(res func(any), _ func(error)) {
		loads++
		res(staticComponent("p", "now"))
	}}
	app := mountApp(t, &Options{
		Render: func(vm *Instance, h CreateElement) *vdom.VNode { return h("div", h(comp), h(comp)) },
	})

	if got, want := app.html(), "<div><p>now</p><p>now</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}
}

func TestAsyncComponent_LoadingWithoutDelay(t *testing.T) {
	var resolve func(any)
	comp := &AsyncComponent{
		Load:    func(res func(any), _ func(error)) { resolve = res },
		Loading: staticComponent("span", "loading"),
	}
	app := mountApp(t, asyncHost(comp))

	if got, want := app.html(), "<div><span>loading</span></div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	resolve(staticComponent("p", "loaded"))
	app.flush(t)
	if got, want := app.html(), "<div><p>loaded</p></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestAsyncComponent_RejectRendersError(t *testing.T) {
	warnings := recordWarnings(t)
	var reject func(error)
	comp := &AsyncComponent{
		Load:  func(_ func(any), rej func(error)) { reject = rej },
		Error: staticComponent("b", "failed"),
	}
	app := mountApp(t, asyncHost(comp))

	reject(stderrors.New("network down"))
	reject(stderrors.New("ignored"))
	app.flush(t)

	if got, want := app.html(), "<div><b>failed</b></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"C004"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if !comp.Failed() {
		t.Error("Failed() = false after reject")
	}
}

func TestAsyncComponent_PanickingLoadRejects(t *testing.T) {
	warnings := recordWarnings(t)
	comp := &AsyncComponent{Load: func(func(any), func(error)) { panic("no loader") }}
	app := mountApp(t, asyncHost(comp))
	app.flush(t)

	if got, want := app.html(), "<div><!----></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"C004"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestAsyncComponent_TimeoutThroughPost(t *testing.T) {
	warnings := recordWarnings(t)
	posted := make(chan func(), 4)
	comp := &AsyncComponent{
		Load:    func(func(any), func(error)) {},
		Error:   staticComponent("b", "timed out"),
		Timeout: 10 * time.Millisecond,
	}

	doc := dom.New()
	root := doc.NewElement("main")
	s := reactive.NewScheduler()
	NewApp(asyncHost(comp), InstanceOptions{
		Ops:       doc,
		Scheduler: s,
		Post:      func(fn func()) { posted <- fn },
	}).MountInto(root)

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timeout was never posted")
	}
	s.Drain(10)

	if got, want := root.InnerHTML(), "<div><b>timed out</b></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"C004"}, warnings.list()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestAsyncComponent_DestroyedOwnerIsForgotten(t *testing.T) {
	var resolve func(any)
	comp := &AsyncComponent{Load: func(res func(any), _ func(error)) { resolve = res }}
	app := mountApp(t, asyncHost(comp))

	app.vm.Destroy()
	resolve(staticComponent("p", "late"))

	if n := app.sched.Pending(); n != 0 {
		t.Errorf("pending watchers = %d, want 0 for a destroyed owner", n)
	}
}
