package vdom

import "strings"

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler. Event may carry the '&', '~'
// and '!' modifier prefixes (passive, once, capture).
type EventHandler struct {
	Event   string
	Handler Handler
}

type keyArg struct{ key any }

type refArg struct {
	name  string
	inFor bool
}

type classArg struct{ value any }

type styleArg struct{ prop, value string }

type propsArg map[string]any

type nativeOnArg EventHandler

type slotArg string

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Key sets the reconciliation key. Keys must be comparable, normally a
// string or an int.
func Key(k any) any { return keyArg{k} }

// Ref registers the element (or component instance) under name in the
// rendering component's refs.
func Ref(name string) any { return refArg{name: name} }

// RefInFor is Ref for nodes rendered in a loop; the ref collects a list.
func RefInFor(name string) any { return refArg{name: name, inFor: true} }

// ClassMap sets the dynamic class binding: a string, []string,
// map[string]bool or []any of those.
func ClassMap(value any) any { return classArg{value} }

// Style sets one dynamic inline style property.
func Style(prop, value string) any { return styleArg{prop, value} }

// On attaches a listener.
func On(event string, h Handler) EventHandler { return EventHandler{Event: event, Handler: h} }

// OnClick attaches a click listener.
func OnClick(h Handler) EventHandler { return On("click", h) }

// OnInput attaches an input listener.
func OnInput(h Handler) EventHandler { return On("input", h) }

// NativeOn attaches a native listener to the root element of a
// component. Elements ignore it.
func NativeOn(event string, h Handler) any { return nativeOnArg{Event: event, Handler: h} }

// Props passes component props. Later values win.
func Props(props map[string]any) any { return propsArg(props) }

// Prop passes a single component prop.
func Prop(key string, value any) any { return propsArg{key: value} }

// Slot assigns the node to a named slot of the component it is passed
// to.
func Slot(name string) any { return slotArg(name) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the static class attribute, joining multiple classes with
// spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the static style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// DataAttr creates a data-* attribute.
// Example: DataAttr("id", "123") → data-id="123"
func DataAttr(key, value string) Attr { return attr("data-"+key, value) }

// Links and forms

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets or clears the disabled attribute.
func Disabled(on bool) Attr { return attr("disabled", on) }

// Checked sets or clears the checked attribute.
func Checked(on bool) Attr { return attr("checked", on) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Conditional helpers

// ClassIf returns a class attribute if condition is true, otherwise an
// empty Attr.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return Class(class)
	}
	return Attr{}
}

// AttrIf returns the attribute if condition is true, otherwise an empty
// Attr.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}
