package selector

import "github.com/go-drift/storesync/pkg/core"

// ExternalStore describes the store a binding reads from.
type ExternalStore[S any] struct {
	// Source delivers change notifications. Changing its identity
	// resubscribes.
	Source core.Source
	// Key identifies the store for snapshot sharing within a render pass.
	// It must be comparable; the store handle itself is the usual choice.
	Key any
	// Snapshot reads the current state.
	Snapshot func() S
	// ServerSnapshot, when set, is read instead of Snapshot while the
	// binding hydrates, before its subscription is open.
	ServerSnapshot func() S
}

// SyncOptions tunes UseSyncExternalStoreWithSelector.
type SyncOptions[T any] struct {
	// IsEqual, when set, makes equal selections keep the previous value.
	IsEqual EqualityFn[T]
	// Trace receives instrumentation events. Nil means NopTrace.
	Trace Trace
}

// SubscriptionState is the lifecycle of a binding's store subscription.
type SubscriptionState int

const (
	// Unsubscribed is the state before the first commit and after teardown.
	Unsubscribed SubscriptionState = iota
	// Subscribing lasts while the store's Subscribe call runs.
	Subscribing
	// Subscribed means store changes reach the binding.
	Subscribed
)

func (s SubscriptionState) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}

// tracedSource wraps the store's Source with instrumentation and tracks the
// subscription state. Its identity follows the wrapped Source.
type tracedSource struct {
	inner core.Source
	// trace is the committed binding's trace; it changes only in a layout
	// effect.
	trace Trace
	state SubscriptionState
}

func (s *tracedSource) Subscribe(onChange func()) func() {
	s.state = Subscribing
	s.trace.Subscribe()
	unsubscribe := s.inner.Subscribe(func() {
		s.trace.StoreChange()
		onChange()
	})
	s.state = Subscribed
	return func() {
		unsubscribe()
		s.state = Unsubscribed
		s.trace.SubscribeCleanup()
	}
}

// Binding is a handle on one element's store binding, for observing its
// subscription from tooling and tests.
type Binding struct {
	source *tracedSource
}

// State returns where the binding's subscription currently stands.
func (b *Binding) State() SubscriptionState {
	if b == nil || b.source == nil {
		return Unsubscribed
	}
	return b.source.state
}

// UseSyncExternalStoreWithSelector returns sel applied to the current
// snapshot of store and rebuilds the element only when that selection
// changes.
//
// Every read in a render pass sees the snapshot captured for store.Key in
// that pass, and the selection is memoized per snapshot: an identical
// snapshot never reruns sel, and with opts.IsEqual an equal selection
// keeps the previous value. The last committed selection is recorded
// after each commit; discarded attempts leave it untouched.
func UseSyncExternalStoreWithSelector[S, T any](ctx core.BuildContext, store ExternalStore[S], sel *Func[S, T], opts SyncOptions[T]) T {
	value, _ := useSyncExternalStoreWithSelector(ctx, store, sel, opts)
	return value
}

func useSyncExternalStoreWithSelector[S, T any](ctx core.BuildContext, store ExternalStore[S], sel *Func[S, T], opts SyncOptions[T]) (T, *Binding) {
	if opts.Trace == nil {
		opts.Trace = NopTrace{}
	}
	trace := opts.Trace

	rendered := core.UseRef(ctx, func() *renderedRecord[T] {
		return &renderedRecord[T]{}
	}).Value

	memo := core.UseMemo(ctx, []any{sel, store.Key, store.ServerSnapshot != nil}, func() *memoizedSelector[S, T] {
		return &memoizedSelector[S, T]{rendered: rendered, project: sel.fn}
	})

	source := core.UseMemo(ctx, []any{store.Source}, func() *tracedSource {
		return &tracedSource{inner: store.Source, trace: trace}
	})
	core.UseLayoutEffect(ctx, nil, func() func() {
		source.trace = trace
		return nil
	})

	// The closures carry this build's options; the runtime keeps the
	// committed ones for store notifications.
	owner := ctx.Owner()
	getSelection := func() T {
		trace.GetSnapshot()
		return memo.compute(core.Capture(owner, store.Key, store.Snapshot), opts)
	}
	var getServerSelection func() T
	if store.ServerSnapshot != nil {
		serverSnapshot := store.ServerSnapshot
		getServerSelection = func() T {
			trace.GetSnapshot()
			return memo.compute(serverSnapshot(), opts)
		}
	}

	value := core.UseSyncExternalStore(ctx, source, getSelection, getServerSelection)

	core.UseEffect(ctx, nil, func() func() {
		rendered.hasValue = true
		rendered.value = value
		return nil
	})

	return value, &Binding{source: source}
}
