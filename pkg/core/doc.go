// Package core provides the element tree and render loop that bindings run
// inside of.
//
// A Component is built by an Element. Builds happen in render passes driven
// by a BuildOwner: every dirty element is rendered (a render attempt), then
// the whole pass is either committed or discarded. A discarded attempt
// leaves no trace in committed hook state; only committed attempts run
// effects.
//
//	owner := core.NewBuildOwner()
//	root := owner.Mount(nil, core.ComponentFunc(func(ctx core.BuildContext) {
//	    n := core.UseSyncExternalStore(ctx, counter, counter.Get, nil)
//	    fmt.Println("count:", n)
//	}))
//	owner.FlushBuild()
//	defer root.Unmount()
//
// # Hooks
//
// Hooks keep per-element state across builds and must be called in the same
// order on every build:
//
//   - UseRef: a mutable box shared by every build of the element
//   - UseMemo: a cached value recomputed when its deps change identity
//   - UseLayoutEffect / UseEffect: commit-phase side effects with cleanup
//   - UseSyncExternalStore: a tearing-safe read of an external Source
//
// # Snapshots in a pass
//
// Capture shares one read of a store across every attempt of the active
// render pass, so all elements rendered together observe the same snapshot
// even if the store changes mid-pass. Commit-phase checks in
// UseSyncExternalStore then schedule another pass for anything that became
// stale.
//
// # Threading
//
// Builds, commits, Unmount and the store mutations that mounted elements
// observe must all run on one goroutine. ScheduleBuild itself is safe to
// call from any goroutine.
package core
