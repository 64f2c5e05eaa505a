package domaintheme

import (
	"context"
	"errors"
)

var (
	// ErrUsedOutsideScope is returned by Access when no enclosing Initialize
	// attached a Context. It signals a wiring bug and must not be defaulted.
	ErrUsedOutsideScope = errors.New("domain theme used outside an initialized scope")
	// ErrAlreadyInitialized is returned when a scope already owns a Context.
	ErrAlreadyInitialized = errors.New("domain theme scope already initialized")
)

type scopeKey struct{}

// Initialize creates the Context of a new scope and attaches it to ctx.
func Initialize(ctx context.Context, sink StyleSink, opts ...Option) (context.Context, *Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(scopeKey{}).(*Context); ok {
		return ctx, nil, ErrAlreadyInitialized
	}

	c := New(sink, opts...)
	return context.WithValue(ctx, scopeKey{}, c), c, nil
}

// Access returns the Context of the enclosing scope.
func Access(ctx context.Context) (*Context, error) {
	if ctx == nil {
		return nil, ErrUsedOutsideScope
	}
	c, ok := ctx.Value(scopeKey{}).(*Context)
	if !ok || c == nil {
		return nil, ErrUsedOutsideScope
	}
	return c, nil
}

// MustAccess is Access for call sites where a missing scope is a programming
// error. It panics with ErrUsedOutsideScope.
func MustAccess(ctx context.Context) *Context {
	c, err := Access(ctx)
	if err != nil {
		panic(err)
	}
	return c
}
