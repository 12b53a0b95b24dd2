package alloc

import "context"

type localKey struct{}

// WithLocal returns a copy of ctx carrying l, so a worker can pass its tier
// down a call chain instead of relying on goroutine-local state.
func WithLocal(ctx context.Context, l *Local) context.Context {
	return context.WithValue(ctx, localKey{}, l)
}

// LocalFrom returns the Local stored in ctx by WithLocal.
func LocalFrom(ctx context.Context) (*Local, bool) {
	l, ok := ctx.Value(localKey{}).(*Local)
	return l, ok && l != nil
}
