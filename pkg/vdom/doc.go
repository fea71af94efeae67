// Package vdom provides the virtual tree and the patcher that reconciles
// it with a rendering target.
//
// A render produces a tree of VNodes. Patcher.Patch compares it with the
// previous tree and applies the difference through NodeOps: nodes that
// match (SameVNode) are updated in place, keyed children are reordered
// with as few moves as possible, and everything else is created or
// removed. Modules keep attributes, classes, styles, listeners,
// directives and refs in sync; component placeholders drive child
// components through their Hooks.
//
// Building trees:
//
//	vdom.Div(vdom.Class("card"),
//	    vdom.H1("Title"),
//	    vdom.Button(vdom.OnClick(inc), "Count"),
//	)
package vdom
