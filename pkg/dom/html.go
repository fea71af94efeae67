package dom

import (
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// OuterHTML serializes n and its subtree. Attributes are written in
// sorted order; inline styles are folded into the style attribute.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b)
	}
	return b.String()
}

// WriteHTML streams the serialization of n to w.
func (n *Node) WriteHTML(w io.Writer) error {
	_, err := io.WriteString(w, n.OuterHTML())
	return err
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch n.Type {
	case vdom.TextNode:
		b.WriteString(escapeHTML(n.Data))
		return
	case vdom.CommentNode:
		b.WriteString("<!--")
		b.WriteString(escapeComment(n.Data))
		b.WriteString("-->")
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	attrs := n.Attrs()
	if len(n.style) > 0 {
		attrs["style"] = styleString(n.style)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		if v := attrs[k]; v != "" || !vdom.IsBooleanAttr(k) {
			b.WriteString(`="`)
			b.WriteString(escapeAttr(v))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')

	if vdom.IsVoidElement(n.Tag) {
		return
	}
	for _, c := range n.children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func styleString(style map[string]string) string {
	props := make([]string, 0, len(style))
	for p := range style {
		props = append(props, p)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p+":"+style[p])
	}
	return strings.Join(parts, ";")
}
