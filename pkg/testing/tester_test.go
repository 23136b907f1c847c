package testing

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/storesync/pkg/errors"
	"github.com/go-drift/storesync/pkg/selector"
	"github.com/go-drift/storesync/pkg/store"
	"github.com/go-drift/storesync/pkg/testing/internal/testbed"
)

// withStore provides a fresh store on the tester's root.
func withStore(tester *Tester, initial int) (*store.Store[*testbed.State], selector.Hook[*testbed.State]) {
	st := testbed.NewStore(initial)
	selector.Provide(tester.Root(), selector.NewStoreContext[*testbed.State](st))
	return st, selector.NewHook[*testbed.State](nil)
}

func TestPumpComponent_Builds(t *testing.T) {
	tester := NewTesterWithT(t)
	_, hook := withStore(tester, 3)

	c := &testbed.Counter{Hook: hook}
	e, err := tester.PumpComponent(c)
	if err != nil {
		t.Fatal(err)
	}
	if e.Builds() != 1 {
		t.Errorf("expected 1 commit, got %d", e.Builds())
	}
	if c.Last() != 3 {
		t.Errorf("expected count 3, got %d", c.Last())
	}
}

func TestFrames_OnePerChange(t *testing.T) {
	tester := NewTesterWithT(t)
	st, hook := withStore(tester, 0)
	c := &testbed.Counter{Hook: hook}
	tester.PumpComponent(c)

	tester.ResetFrames()
	st.Update(testbed.Bump)
	if tester.Frames() != 1 {
		t.Errorf("expected 1 frame request, got %d", tester.Frames())
	}
	tester.Pump()

	if c.Last() != 1 {
		t.Errorf("expected count 1, got %d", c.Last())
	}
}

func TestAttempt_Discard(t *testing.T) {
	tester := NewTesterWithT(t)
	st, hook := withStore(tester, 0)
	c := &testbed.Counter{Hook: hook}
	e, _ := tester.PumpComponent(c)

	st.Update(testbed.Bump)
	tester.Attempt(e).Discard()

	if e.Builds() != 1 {
		t.Errorf("discarded attempt should not commit, builds = %d", e.Builds())
	}
	if !e.IsDirty() {
		t.Error("discarded element should stay dirty")
	}

	tester.Pump()
	if len(c.Rendered) != 3 || c.Last() != 1 || e.Builds() != 2 {
		t.Errorf("rendered %v with %d commits, want [0 1 1] and 2", c.Rendered, e.Builds())
	}
}

func TestPump_ReturnsBuildError(t *testing.T) {
	tester := NewTesterWithT(t)

	e, err := tester.PumpComponent(testbed.Panicking{Value: "boom"})
	var buildErr *errors.BuildError
	if !stderrors.As(err, &buildErr) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if buildErr.Recovered != "boom" {
		t.Errorf("expected recovered value boom, got %v", buildErr.Recovered)
	}
	if len(tester.BuildErrors()) != 1 || e.Err() == nil {
		t.Error("build error should be captured and recorded on the element")
	}
}

func TestPumpAndSettle_RunsDispatches(t *testing.T) {
	tester := NewTesterWithT(t)
	st, hook := withStore(tester, 0)
	c := &testbed.Counter{Hook: hook}
	tester.PumpComponent(c)

	tester.Dispatch(func() { st.Update(testbed.Bump) })
	tester.Dispatch(func() { st.Update(testbed.Bump) })
	if err := tester.PumpAndSettle(0); err != nil {
		t.Fatal(err)
	}

	if c.Last() != 2 {
		t.Errorf("expected count 2, got %d", c.Last())
	}
}

func TestPumpAndSettle_Timeout(t *testing.T) {
	tester := NewTesterWithT(t)
	var again func()
	again = func() { tester.Dispatch(again) }
	tester.Dispatch(again)

	if err := tester.PumpAndSettle(5); !stderrors.Is(err, ErrSettleTimeout) {
		t.Errorf("expected ErrSettleTimeout, got %v", err)
	}
}

func TestDiagnostics_Captured(t *testing.T) {
	tester := NewTesterWithT(t)
	st, hook := withStore(tester, 0)
	tester.PumpComponent(&testbed.Whole{Hook: hook})
	st.Update(testbed.Bump)
	tester.Pump()

	if n := tester.DiagnosticCount(errors.DiagnosticIdentitySelector); n != 1 {
		t.Errorf("expected 1 identity warning, got %d", n)
	}
	if d := tester.Diagnostics()[0]; d.Selector != "whole" {
		t.Errorf("expected selector whole, got %q", d.Selector)
	}
}

func TestCleanup_RestoresHandler(t *testing.T) {
	orig := &errors.Collector{}
	prev := errors.SetHandler(orig)
	defer errors.SetHandler(prev)

	tester := NewTester()
	tester.Cleanup()
	tester.Cleanup()

	if got := errors.SetHandler(prev); got != errors.ErrorHandler(orig) {
		t.Errorf("Cleanup should restore the previous handler, got %T", got)
	}
}

func TestMissingProvider(t *testing.T) {
	tester := NewTesterWithT(t)
	c := &testbed.Counter{Hook: selector.NewHook[*testbed.State](nil)}
	tester.PumpComponent(c)

	if !stderrors.Is(c.Err, errors.ErrMissingContext) {
		t.Errorf("expected missing context, got %v", c.Err)
	}
}
