// Package testing provides a harness for testing components that read
// stores through the selector package.
//
// # Quick Start
//
// Create a tester, provide a store on its root, pump a component, and make
// assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := storesynctest.NewTesterWithT(t)
//	    st := store.New(&State{})
//	    selector.Provide(tester.Root(), selector.NewStoreContext[*State](st))
//
//	    c := &Counter{Hook: selector.NewHook[*State](nil)}
//	    tester.PumpComponent(c)
//
//	    st.Update(increment)
//	    tester.Pump()
//
//	    if tester.Find(storesynctest.ByType[*Counter]()).First().Builds() != 2 {
//	        t.Error("expected a second commit")
//	    }
//	}
//
// # Interrupted Renders
//
// Attempt renders elements in a pass the test commits or discards itself,
// which reproduces a store mutation landing between render and commit:
//
//	pass := tester.Attempt(element)
//	st.Update(increment)
//	pass.Commit()
//
// # Snapshot Testing
//
// Capture and compare element tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	STORESYNC_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import storesynctest "github.com/go-drift/storesync/pkg/testing"
package testing
