package selector

import (
	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/errors"
	"github.com/go-drift/storesync/pkg/store"
)

// Hook binds components to the store context resolved by its accessor.
type Hook[S any] struct {
	accessor Accessor[S]
}

// NewHook returns a Hook resolving its context with accessor. A nil
// accessor resolves the nearest provider.
func NewHook[S any](accessor Accessor[S]) Hook[S] {
	if accessor == nil {
		accessor = FromProvider[S]()
	}
	return Hook[S]{accessor: accessor}
}

// WithTypes returns an equivalent hook. The state type is already fixed by
// S, so this only exists to pin S at a call site.
func (h Hook[S]) WithTypes() Hook[S] {
	return h
}

func (h Hook[S]) resolve(ctx core.BuildContext) *StoreContext[S] {
	accessor := h.accessor
	if accessor == nil {
		accessor = FromProvider[S]()
	}
	return accessor(ctx)
}

// Option configures one Select call.
type Option func(*options)

type options struct {
	name        string
	checks      PartialDevModeChecks
	isEqual     any
	equalitySet bool
	binding     **Binding
}

// WithEquality sets the function deciding whether a new selection counts
// as a change. Equal selections keep the previously returned value.
func WithEquality[T any](eq func(a, b T) bool) Option {
	return func(o *options) {
		o.equalitySet = true
		o.isEqual = EqualityFn[T](eq)
	}
}

// WithName overrides the selector's diagnostic label.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDevModeChecks overrides the provider's development checks for one
// binding.
func WithDevModeChecks(checks PartialDevModeChecks) Option {
	return func(o *options) { o.checks = checks }
}

// WithBinding stores the element's binding handle in *dst on every build,
// so callers can observe its subscription state.
func WithBinding(dst **Binding) Option {
	return func(o *options) { o.binding = dst }
}

// bindingRecord is the per-binding state keyed by selector identity and
// name. Replacing it resets the once-only checks and ends its trace.
type bindingRecord[T any] struct {
	name     string
	trace    Trace
	firstRun bool
	// isEqual is the committed equality function, used by the stability
	// check.
	isEqual EqualityFn[T]
}

// fail reports err in debug mode and returns it.
func fail(err *errors.SelectError) error {
	if core.DebugMode {
		errors.Report(err)
	}
	return err
}

// Select returns sel applied to the store resolved by h and rebuilds the
// calling element whenever the selection changes.
//
// Errors are returned before any hook runs; a build that receives one must
// return without calling further hooks. Panics from sel or the equality
// function are not recovered.
func Select[S, T any](ctx core.BuildContext, h Hook[S], sel *Func[S, T], opts ...Option) (T, error) {
	const op = "selector.Select"
	var zero T

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var isEqual EqualityFn[T]
	if o.equalitySet {
		eq, ok := o.isEqual.(EqualityFn[T])
		if !ok {
			return zero, fail(errors.InvalidArgument(op, "equality function compares %T, selector returns %T", o.isEqual, zero))
		}
		isEqual = eq
	}
	if core.DebugMode {
		if !sel.valid() {
			return zero, fail(errors.InvalidArgument(op, "selector must be a non-nil function"))
		}
		if o.equalitySet && isEqual == nil {
			return zero, fail(errors.InvalidArgument(op, "equality function must be non-nil"))
		}
	}

	if ctx == nil {
		return zero, fail(errors.MissingContext(op))
	}
	sc := h.resolve(ctx)
	if sc == nil || sc.Store == nil {
		return zero, fail(errors.MissingContext(op))
	}

	name := o.name
	if name == "" {
		name = sel.Name()
	}

	rec := core.UseMemo(ctx, []any{sel, name, sc}, func() *bindingRecord[T] {
		return &bindingRecord[T]{
			name:     name,
			trace:    newTrace(sc.TraceFactory, name),
			firstRun: true,
			isEqual:  isEqual,
		}
	})
	core.UseLayoutEffect(ctx, []any{rec}, func() func() {
		return rec.trace.SelectorUnmount
	})
	core.UseLayoutEffect(ctx, nil, func() func() {
		rec.isEqual = isEqual
		return nil
	})

	checks := sc.DevModeChecks().Merge(o.checks)
	checked := core.UseMemo(ctx, []any{sel, rec, checks}, func() *Func[S, T] {
		return checkedFunc(sel, rec, checks)
	})

	var source core.Source = sc.Store
	if sc.Subscription != nil {
		source = sc.Subscription
	}
	es := ExternalStore[S]{
		Source:         source,
		Key:            sc.Store,
		Snapshot:       sc.Store.GetState,
		ServerSnapshot: sc.GetServerState,
	}
	value, b := useSyncExternalStoreWithSelector(ctx, es, checked, SyncOptions[T]{
		IsEqual: isEqual,
		Trace:   rec.trace,
	})
	if o.binding != nil {
		*o.binding = b
	}
	return value, nil
}

// UseStore returns the store resolved by h without subscribing to it.
func UseStore[S any](ctx core.BuildContext, h Hook[S]) (store.Handle[S], error) {
	const op = "selector.UseStore"
	if ctx == nil {
		return nil, fail(errors.MissingContext(op))
	}
	sc := h.resolve(ctx)
	if sc == nil || sc.Store == nil {
		return nil, fail(errors.MissingContext(op))
	}
	return sc.Store, nil
}
