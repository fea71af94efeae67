package vdom

import "strings"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// knownElements lists the HTML and SVG tags the patcher accepts without
// an unknown-element warning.
var knownElements = func() map[string]bool {
	tags := strings.Fields(`
		html body base head link meta style title address article aside footer
		header h1 h2 h3 h4 h5 h6 hgroup nav section div dd dl dt figcaption
		figure picture hr img li main ol p pre ul a b abbr bdi bdo br cite code
		data dfn em i kbd mark q rp rt rtc ruby s samp small span strong sub sup
		time u var wbr area audio map track video embed object param source
		canvas script noscript del ins caption col colgroup table thead tbody td
		th tr tfoot button datalist fieldset form input label legend meter
		optgroup option output progress select textarea details dialog menu
		menuitem summary content element shadow template blockquote iframe slot
		svg animate circle clippath cursor defs desc ellipse filter font-face
		foreignobject g glyph image line marker mask missing-glyph path pattern
		polygon polyline rect switch symbol text textpath tspan use view math`)
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}()

// IsReservedTag reports whether tag is a known HTML or SVG element name.
// Component names must not shadow them.
func IsReservedTag(tag string) bool {
	return knownElements[strings.ToLower(tag)]
}

// isUnknownElement reports whether tag is neither a known element nor a
// custom element name (which must contain a hyphen).
func isUnknownElement(tag string) bool {
	t := strings.ToLower(tag)
	return !knownElements[t] && !strings.Contains(t, "-")
}

// El creates an element vnode. Arguments can be: nil, Attr, []Attr,
// EventHandler, *VNode, []*VNode, string (text child), *Directive,
// *Hooks, or the values returned by Key, Ref, ClassMap and Style.
func El(tag string, args ...any) *VNode {
	return createElement(tag, args)
}

func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind: KindElement,
		Tag:  tag,
	}
	data := func() *Data {
		if node.Data == nil {
			node.Data = &Data{}
		}
		return node.Data
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			applyAttr(data(), v)

		case []Attr:
			for _, a := range v {
				applyAttr(data(), a)
			}

		case EventHandler:
			d := data()
			if d.On == nil {
				d.On = make(map[string][]Handler)
			}
			d.On[v.Event] = append(d.On[v.Event], v.Handler)

		case keyArg:
			node.Key = v.key

		case refArg:
			d := data()
			d.Ref = v.name
			d.RefInFor = v.inFor

		case classArg:
			data().Class = v.value

		case styleArg:
			d := data()
			if d.Style == nil {
				d.Style = make(map[string]string)
			}
			d.Style[v.prop] = v.value

		case nativeOnArg:
			d := data()
			if d.NativeOn == nil {
				d.NativeOn = make(map[string][]Handler)
			}
			d.NativeOn[v.Event] = append(d.NativeOn[v.Event], v.Handler)

		case propsArg:
			d := data()
			if d.Props == nil {
				d.Props = make(map[string]any, len(v))
			}
			for k, val := range v {
				d.Props[k] = val
			}

		case slotArg:
			data().Slot = string(v)

		case *Directive:
			if v != nil {
				d := data()
				d.Directives = append(d.Directives, v)
			}

		case *Hooks:
			if v != nil {
				data().Hook = v
			}

		case *VNode:
			// Child node
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			// Multiple children
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

func applyAttr(d *Data, a Attr) {
	if a.Key == "" {
		return
	}
	switch a.Key {
	case "class":
		if s, ok := a.Value.(string); ok {
			if d.StaticClass != "" {
				d.StaticClass += " " + s
			} else {
				d.StaticClass = s
			}
			return
		}
	case "style":
		if s, ok := a.Value.(string); ok {
			d.StaticStyle = ParseStyle(s)
			return
		}
	}
	if d.Attrs == nil {
		d.Attrs = make(map[string]any)
	}
	d.Attrs[a.Key] = a.Value
}

// ParseStyle parses an inline style declaration list.
func ParseStyle(s string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		out[prop] = strings.TrimSpace(value)
	}
	return out
}

// Document structure

func Html(args ...any) *VNode  { return createElement("html", args) }
func Head(args ...any) *VNode  { return createElement("head", args) }
func Body(args ...any) *VNode  { return createElement("body", args) }
func Title(args ...any) *VNode { return createElement("title", args) }

// Sectioning

func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func Main(args ...any) *VNode    { return createElement("main", args) }
func Nav(args ...any) *VNode     { return createElement("nav", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Article(args ...any) *VNode { return createElement("article", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }
func H3(args ...any) *VNode      { return createElement("h3", args) }

// Grouping

func Div(args ...any) *VNode  { return createElement("div", args) }
func P(args ...any) *VNode    { return createElement("p", args) }
func Span(args ...any) *VNode { return createElement("span", args) }
func Pre(args ...any) *VNode  { return createElement("pre", args) }
func Ul(args ...any) *VNode   { return createElement("ul", args) }
func Ol(args ...any) *VNode   { return createElement("ol", args) }
func Li(args ...any) *VNode   { return createElement("li", args) }
func Hr(args ...any) *VNode   { return createElement("hr", args) }
func Br(args ...any) *VNode   { return createElement("br", args) }

// Inline

func A(args ...any) *VNode      { return createElement("a", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Em(args ...any) *VNode     { return createElement("em", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Img(args ...any) *VNode    { return createElement("img", args) }

// Forms

func Form(args ...any) *VNode     { return createElement("form", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Select(args ...any) *VNode   { return createElement("select", args) }
func Option(args ...any) *VNode   { return createElement("option", args) }
func Button(args ...any) *VNode   { return createElement("button", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }

// Tables

func Table(args ...any) *VNode { return createElement("table", args) }
func Thead(args ...any) *VNode { return createElement("thead", args) }
func Tbody(args ...any) *VNode { return createElement("tbody", args) }
func Tr(args ...any) *VNode    { return createElement("tr", args) }
func Th(args ...any) *VNode    { return createElement("th", args) }
func Td(args ...any) *VNode    { return createElement("td", args) }
