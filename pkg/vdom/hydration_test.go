package vdom_test

import (
	"testing"

	"github.com/vango-dev/reactor/pkg/dom"
	. "github.com/vango-dev/reactor/pkg/vdom"
)

// serverRendered builds <div data-server-rendered><span>a</span></div>
// inside a container, as a server would have sent it.
func serverRendered(doc *dom.Document) (container, root *dom.Node) {
	container = doc.NewElement("main")
	root = doc.Append(container, doc.NewElement("div"))
	doc.SetAttribute(root, SSRAttr, "true")
	span := doc.Append(root, doc.NewElement("span"))
	doc.Append(span, doc.NewText("a"))
	doc.ResetStats()
	return container, root
}

func TestHydrate_AdoptsExistingNodes(t *testing.T) {
	doc := dom.New()
	container, root := serverRendered(doc)
	clicks := 0

	elm := NewPatcher(doc).Patch(root, Div(OnClick(func(...any) { clicks++ }), Span("a")))

	if elm != Node(root) {
		t.Fatal("hydration did not return the existing root")
	}
	if s := doc.Stats(); s.Created != 0 || s.Inserted != 0 {
		t.Errorf("stats = %+v, want no created or inserted nodes", s)
	}
	if _, ok := root.Attr(SSRAttr); ok {
		t.Error("server-rendered marker not removed")
	}
	doc.Dispatch(root, "click")
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if got := container.InnerHTML(); got != "<div><span>a</span></div>" {
		t.Errorf("html = %q", got)
	}
}

func TestHydrate_TextDifferenceIsPatched(t *testing.T) {
	doc := dom.New()
	container, root := serverRendered(doc)
	rec := recordWarnings(t)

	NewPatcher(doc).Patch(root, Div(Span("b")))

	if got := container.InnerHTML(); got != "<div><span>b</span></div>" {
		t.Errorf("html = %q", got)
	}
	if codes := rec.list(); len(codes) != 0 {
		t.Errorf("warnings = %v, want none", codes)
	}
}

func TestHydrate_MismatchFallsBackToCreate(t *testing.T) {
	doc := dom.New()
	container, root := serverRendered(doc)
	rec := recordWarnings(t)

	elm := NewPatcher(doc).Patch(root, Div(P("x")))

	if elm == Node(root) {
		t.Error("mismatched root was kept")
	}
	if got := container.InnerHTML(); got != "<div><p>x</p></div>" {
		t.Errorf("html = %q", got)
	}
	codes := rec.list()
	if len(codes) == 0 || codes[len(codes)-1] != "V002" {
		t.Errorf("warnings = %v, want V002", codes)
	}
}

func TestHydrate_ExtraServerNodesMismatch(t *testing.T) {
	doc := dom.New()
	container, root := serverRendered(doc)
	doc.Append(root, doc.NewElement("em"))
	rec := recordWarnings(t)

	NewPatcher(doc).Patch(root, Div(Span("a")))

	if got := container.InnerHTML(); got != "<div><span>a</span></div>" {
		t.Errorf("html = %q", got)
	}
	if len(rec.list()) == 0 {
		t.Error("extra server nodes were not reported")
	}
}

func TestHydrate_PlainNodeIsReplaced(t *testing.T) {
	doc := dom.New()
	container := doc.NewElement("main")
	root := doc.Append(container, doc.NewElement("section"))

	NewPatcher(doc).Patch(root, Div("fresh"))

	if got := container.InnerHTML(); got != "<div>fresh</div>" {
		t.Errorf("html = %q", got)
	}
}
