// Package selector binds components to slices of an external store.
//
// A binding reads the store through a projection, a *Func, and rebuilds
// its element only when the projected value (the selection) changes:
//
//	var count = selector.NewNamedFunc("count", func(s State) int { return s.Count })
//
//	func (c Counter) Build(ctx core.BuildContext) {
//	    n, err := selector.Select(ctx, c.hook, count)
//	    if err != nil {
//	        return
//	    }
//	    fmt.Println("count:", n)
//	}
//
// The hook resolves a StoreContext, either from the nearest element that
// called Provide or from an explicit Accessor such as Static.
//
// # Memoization
//
// Each binding memoizes the last snapshot it projected. An identical
// snapshot returns the previous selection without calling the projection.
// With WithEquality, a new selection that compares equal to the previous
// one is dropped in favour of the previous value, so downstream identity
// checks keep passing. When the binding receives a new *Func, the first
// selection is compared with the last committed one instead.
//
// Selector identity is the *Func pointer. Create selectors once, not
// inside Build, unless recomputing on every build is intended.
//
// # Consistency
//
// All bindings rendered in one pass observe one snapshot per store, even
// if the store changes while the pass is running. A binding whose committed
// selection is already stale is scheduled to render again.
//
// # Development checks
//
// While core.DebugMode is set, selectors are checked for stability (the
// same snapshot yields an equal selection) and for returning the whole
// state. Problems are reported through errors.Warn and never change the
// selection. CheckMode controls whether each check runs once per binding,
// always, or never.
//
// # Instrumentation
//
// A TraceFactory on the StoreContext receives lifecycle events for every
// binding. Traces observe; they cannot influence selections.
package selector
