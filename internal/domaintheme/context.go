// Package domaintheme owns the currently selected domain of one scope and
// mirrors its accent into a StyleSink.
//
// A Context is created once per scope (an SSH session, an HTTP request) and
// is not safe for concurrent use. There is no package-level
// selection: two scopes never observe each other's Select calls.
package domaintheme

import (
	"builder-platform/internal/theme"
)

// Snapshot is the live selection and its derived record.
type Snapshot struct {
	Domain theme.Domain `json:"domain"`
	Theme  theme.Record `json:"theme"`
}

// Observer is notified after the selected domain changed.
type Observer func(prev, next Snapshot)

type options struct {
	domain    theme.Domain
	observers []Observer
}

// Option configures New and Initialize.
type Option func(*options)

// WithDomain seeds the selection. Without it the scope starts on
// theme.DefaultDomain.
func WithDomain(d theme.Domain) Option {
	return func(o *options) { o.domain = d }
}

// WithObserver registers fn to run after every selection change.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// Context holds the selection state of one scope.
type Context struct {
	domain    theme.Domain
	sink      StyleSink
	observers []Observer
}

// New creates the selection state and writes the initial accent to sink.
// A nil sink is treated as Discard.
func New(sink StyleSink, opts ...Option) *Context {
	o := options{domain: theme.DefaultDomain}
	for _, opt := range opts {
		opt(&o)
	}
	if sink == nil {
		sink = Discard
	}

	c := &Context{domain: o.domain, sink: sink, observers: o.observers}
	c.propagate()
	return c
}

// Current returns the selected domain and the record derived from it.
func (c *Context) Current() Snapshot {
	return Snapshot{Domain: c.domain, Theme: theme.Lookup(c.domain)}
}

func (c *Context) Domain() theme.Domain { return c.domain }

func (c *Context) Theme() theme.Record { return theme.Lookup(c.domain) }

// Select makes d the active domain and rewrites the accent slot. Selecting
// the active domain again leaves the state untouched but still resyncs the
// slot; observers only run on an actual change.
func (c *Context) Select(d theme.Domain) Snapshot {
	theme.Lookup(d) // undeclared domains panic before the state changes
	prev := c.Current()
	c.domain = d
	c.propagate()

	next := c.Current()
	if prev.Domain != next.Domain {
		for _, fn := range c.observers {
			fn(prev, next)
		}
	}
	return next
}

func (c *Context) propagate() {
	c.sink.SetProperty(AccentProperty, theme.Lookup(c.domain).Accent)
}
