package component

import (
	"reflect"
	"sync"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Ctor is a component constructor: resolved options plus the chain of
// constructors they were derived from.
type Ctor struct {
	cid   int
	super *Ctor

	options       *Options
	extendOptions *Options
	superOptions  *Options

	extended map[*Options]*Ctor
	plugins  []Plugin
}

// Plugin installs global functionality on a constructor.
type Plugin interface {
	Install(c *Ctor, args ...any)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(c *Ctor, args ...any)

// Install calls f.
func (f PluginFunc) Install(c *Ctor, args ...any) { f(c, args...) }

var (
	cidMu   sync.Mutex
	nextCID = 1
)

func newCID() int {
	cidMu.Lock()
	defer cidMu.Unlock()
	id := nextCID
	nextCID++
	return id
}

// Base is the root constructor. Global registrations (Component,
// Directive, Mixin, Use) apply to it.
var Base = &Ctor{options: &Options{}}

func init() {
	Base.options.ComponentRegistry().Register("KeepAlive", KeepAlive)
}

// CID returns the constructor id. Base is 0.
func (c *Ctor) CID() int {
	return c.cid
}

// Super returns the constructor c was extended from.
func (c *Ctor) Super() *Ctor {
	return c.super
}

// Options returns the resolved options of c.
func (c *Ctor) Options() *Options {
	return c.resolveOptions()
}

// Extend creates a sub-constructor whose options are c's merged with
// opts. Extending the same opts twice returns the same constructor.
func (c *Ctor) Extend(opts *Options) *Ctor {
	if opts == nil {
		opts = &Options{}
	}
	if sub, ok := c.extended[opts]; ok {
		return sub
	}
	superOpts := c.resolveOptions()
	name := pick(opts.Name, superOpts.Name)
	if name != "" {
		validateComponentName(name)
	}
	sub := &Ctor{
		cid:           newCID(),
		super:         c,
		extendOptions: opts,
		superOptions:  superOpts,
		options:       MergeOptions(superOpts, opts),
	}
	if name != "" {
		sub.options.ComponentRegistry().Register(name, sub)
	}
	if c.extended == nil {
		c.extended = make(map[*Options]*Ctor)
	}
	c.extended[opts] = sub
	return sub
}

// Mixin merges opts into c's options. Sub-constructors pick the change up
// the next time their options are resolved.
func (c *Ctor) Mixin(opts *Options) *Ctor {
	c.options = MergeOptions(c.resolveOptions(), opts)
	if c.extendOptions != nil {
		c.extendOptions = MergeOptions(c.extendOptions, opts)
	}
	return c
}

// Use installs plugin once; installing the same plugin again is a no-op.
func (c *Ctor) Use(plugin Plugin, args ...any) *Ctor {
	for _, p := range c.plugins {
		if samePlugin(p, plugin) {
			return c
		}
	}
	plugin.Install(c, args...)
	c.plugins = append(c.plugins, plugin)
	return c
}

// Component registers def under name on c and returns the registered
// constructor. def may be *Options (extended from c), *Ctor or
// *AsyncComponent. A nil def looks name up instead.
func (c *Ctor) Component(name string, def any) any {
	opts := c.resolveOptions()
	if def == nil {
		v, _ := opts.ComponentRegistry().Lookup(name)
		return v
	}
	validateComponentName(name)
	if o, ok := def.(*Options); ok {
		if o.Name == "" {
			named := *o
			named.Name = name
			o = &named
		}
		def = c.Extend(o)
	}
	opts.ComponentRegistry().Register(name, def)
	c.remember(func(o *Options) {
		if o.Components == nil {
			o.Components = make(map[string]any)
		}
		o.Components[name] = def
	})
	return def
}

// Directive registers a directive under name on c. A vdom.DirectiveHook
// is used for both bind and update.
func (c *Ctor) Directive(name string, def any) *vdom.DirectiveDef {
	opts := c.resolveOptions()
	if def == nil {
		d, _ := opts.DirectiveRegistry().Lookup(name)
		return d
	}
	d := normalizeDirective(def)
	if d == nil {
		errors.Warn("C005", "directive", name)
		return nil
	}
	opts.DirectiveRegistry().Register(name, d)
	c.remember(func(o *Options) {
		if o.Directives == nil {
			o.Directives = make(map[string]any)
		}
		o.Directives[name] = d
	})
	return d
}

// remember records a registration on the extend options so it survives
// re-resolution after a mixin on a super constructor.
func (c *Ctor) remember(apply func(o *Options)) {
	if c.extendOptions == nil {
		return
	}
	copied := *c.extendOptions
	apply(&copied)
	c.extendOptions = &copied
}

// resolveOptions re-merges c's options when a super constructor's options
// changed since c was created.
func (c *Ctor) resolveOptions() *Options {
	if c.super == nil {
		return c.options
	}
	superOpts := c.super.resolveOptions()
	if superOpts != c.superOptions {
		c.superOptions = superOpts
		c.options = MergeOptions(superOpts, c.extendOptions)
		if c.options.Name != "" {
			c.options.ComponentRegistry().Register(c.options.Name, c)
		}
	}
	return c.options
}

// Extend extends Base.
func Extend(opts *Options) *Ctor {
	return Base.Extend(opts)
}

// Component registers a global component on Base.
func Component(name string, def any) any {
	return Base.Component(name, def)
}

// Directive registers a global directive on Base.
func Directive(name string, def any) *vdom.DirectiveDef {
	return Base.Directive(name, def)
}

// Mixin applies a global mixin to Base.
func Mixin(opts *Options) *Ctor {
	return Base.Mixin(opts)
}

// Use installs a plugin on Base.
func Use(plugin Plugin, args ...any) *Ctor {
	return Base.Use(plugin, args...)
}

func samePlugin(a, b Plugin) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}

func validateComponentName(name string) {
	if name == "slot" || name == "component" || vdom.IsReservedTag(name) {
		errors.WarnError(errors.New("C005").WithDetail("Do not use built-in or reserved HTML elements as component id: "+name), "name", name)
	}
}
