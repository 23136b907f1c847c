package selector

import (
	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/store"
	"github.com/go-drift/storesync/pkg/subscription"
)

// StoreContext is what a provider hands to the bindings below it.
type StoreContext[S any] struct {
	Store        store.Handle[S]
	Subscription *subscription.Subscription
	// GetServerState, when set, supplies the snapshot used while hydrating.
	GetServerState func() S

	StabilityCheck        CheckMode
	IdentityFunctionCheck CheckMode

	// TraceFactory creates the Trace of each binding. Nil disables tracing.
	TraceFactory TraceFactory
}

// ProviderOption configures a StoreContext.
type ProviderOption[S any] func(*StoreContext[S])

// WithServerState sets the snapshot source used while hydrating.
func WithServerState[S any](get func() S) ProviderOption[S] {
	return func(sc *StoreContext[S]) { sc.GetServerState = get }
}

// WithStabilityCheck sets the default stability check mode.
func WithStabilityCheck[S any](m CheckMode) ProviderOption[S] {
	return func(sc *StoreContext[S]) { sc.StabilityCheck = m }
}

// WithIdentityFunctionCheck sets the default identity function check mode.
func WithIdentityFunctionCheck[S any](m CheckMode) ProviderOption[S] {
	return func(sc *StoreContext[S]) { sc.IdentityFunctionCheck = m }
}

// WithTraceFactory enables instrumentation.
func WithTraceFactory[S any](f TraceFactory) ProviderOption[S] {
	return func(sc *StoreContext[S]) { sc.TraceFactory = f }
}

// NewStoreContext creates a context for s with its own root subscription.
// Both development checks default to CheckOnce.
func NewStoreContext[S any](s store.Handle[S], opts ...ProviderOption[S]) *StoreContext[S] {
	sub := subscription.New(s, nil)
	sub.OnStateChange = sub.NotifyNestedSubs
	sc := &StoreContext[S]{
		Store:        s,
		Subscription: sub,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// DevModeChecks returns the context-level check configuration.
func (sc *StoreContext[S]) DevModeChecks() DevModeChecks {
	return DevModeChecks{
		StabilityCheck:        sc.StabilityCheck,
		IdentityFunctionCheck: sc.IdentityFunctionCheck,
	}
}

type contextKey[S any] struct{}

// Provide makes sc available to every element below e and activates its
// subscription until e is disposed.
func Provide[S any](e *core.Element, sc *StoreContext[S]) {
	e.Provide(contextKey[S]{}, sc)
	sc.Subscription.TrySubscribeSelf()
	e.OnDispose(sc.Subscription.TryUnsubscribeSelf)
}

// Accessor resolves the store context for a binding. It returns nil when no
// context is available.
type Accessor[S any] func(ctx core.BuildContext) *StoreContext[S]

// FromProvider resolves the nearest context installed with Provide.
func FromProvider[S any]() Accessor[S] {
	return func(ctx core.BuildContext) *StoreContext[S] {
		v, ok := ctx.Lookup(contextKey[S]{})
		if !ok {
			return nil
		}
		sc, _ := v.(*StoreContext[S])
		return sc
	}
}

// Static always resolves sc.
func Static[S any](sc *StoreContext[S]) Accessor[S] {
	return func(core.BuildContext) *StoreContext[S] { return sc }
}
