package selector

// Func is a projection from a store snapshot S to a selection T.
//
// A *Func carries selector identity: bindings keep their memoized
// selection only while they are handed the same *Func. Create selectors
// once (package level, or memoized in the component) when their result
// should survive rebuilds without recomputation.
type Func[S, T any] struct {
	fn   func(S) T
	name string
}

// NewFunc wraps fn as a selector with a fresh identity.
func NewFunc[S, T any](fn func(S) T) *Func[S, T] {
	return &Func[S, T]{fn: fn}
}

// NewNamedFunc is NewFunc with a diagnostic label.
func NewNamedFunc[S, T any](name string, fn func(S) T) *Func[S, T] {
	return &Func[S, T]{fn: fn, name: name}
}

// Name returns the diagnostic label, or "unknown".
func (f *Func[S, T]) Name() string {
	if f == nil || f.name == "" {
		return "unknown"
	}
	return f.name
}

// Select applies the projection.
func (f *Func[S, T]) Select(state S) T {
	return f.fn(state)
}

func (f *Func[S, T]) valid() bool {
	return f != nil && f.fn != nil
}
