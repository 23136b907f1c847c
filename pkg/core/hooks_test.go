package core

import (
	"testing"

	"github.com/go-drift/storesync/pkg/errors"
)

func TestUseRefSurvivesRebuilds(t *testing.T) {
	owner := NewBuildOwner()
	var refs []*Ref[int]
	inits := 0

	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		ref := UseRef(ctx, func() int {
			inits++
			return 7
		})
		refs = append(refs, ref)
	}))
	owner.FlushBuild()
	e.MarkNeedsBuild()
	owner.FlushBuild()

	if len(refs) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(refs))
	}
	if refs[0] != refs[1] {
		t.Error("UseRef should return the same Ref across builds")
	}
	if inits != 1 || refs[0].Value != 7 {
		t.Errorf("init calls = %d, value = %d; want 1, 7", inits, refs[0].Value)
	}
}

func TestUseMemoRecomputesOnDepsChange(t *testing.T) {
	owner := NewBuildOwner()
	dep := 1
	computes := 0
	var got int

	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		got = UseMemo(ctx, []any{dep}, func() int {
			computes++
			return dep * 10
		})
	}))
	owner.FlushBuild()
	e.MarkNeedsBuild()
	owner.FlushBuild()

	if computes != 1 || got != 10 {
		t.Fatalf("computes = %d, got = %d; want 1, 10", computes, got)
	}

	dep = 2
	e.MarkNeedsBuild()
	owner.FlushBuild()
	if computes != 2 || got != 20 {
		t.Errorf("computes = %d, got = %d; want 2, 20", computes, got)
	}
}

func TestUseMemoDiscardedAttemptKeepsCommittedValue(t *testing.T) {
	owner := NewBuildOwner()
	dep := 1
	computes := 0
	var got int

	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		got = UseMemo(ctx, []any{dep}, func() int {
			computes++
			return dep
		})
	}))
	owner.FlushBuild()

	dep = 2
	pass := owner.BeginPass()
	pass.Render(e)
	pass.Discard()
	if got != 2 {
		t.Fatalf("discarded attempt rendered %d, want 2", got)
	}

	dep = 1
	e.MarkNeedsBuild()
	owner.FlushBuild()
	if computes != 2 {
		t.Errorf("computes = %d, want 2 (the discarded memo must not be reused)", computes)
	}
	if got != 1 {
		t.Errorf("got = %d, want 1", got)
	}
}

func TestEffectOrderAndCleanup(t *testing.T) {
	owner := NewBuildOwner()
	var log []string
	dep := "a"

	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		d := dep
		UseEffect(ctx, []any{d}, func() func() {
			log = append(log, "passive "+d)
			return func() { log = append(log, "cleanup passive "+d) }
		})
		UseLayoutEffect(ctx, []any{d}, func() func() {
			log = append(log, "layout "+d)
			return func() { log = append(log, "cleanup layout "+d) }
		})
	}))
	owner.FlushBuild()

	e.MarkNeedsBuild()
	owner.FlushBuild() // same deps: no effects

	dep = "b"
	e.MarkNeedsBuild()
	owner.FlushBuild()

	e.Unmount()

	want := []string{
		"layout a", "passive a",
		"cleanup layout a", "layout b",
		"cleanup passive a", "passive b",
		"cleanup passive b", "cleanup layout b",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestDiscardedAttemptRunsNoEffects(t *testing.T) {
	owner := NewBuildOwner()
	runs := 0
	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		UseEffect(ctx, nil, func() func() {
			runs++
			return nil
		})
	}))

	pass := owner.BeginPass()
	pass.Render(e)
	pass.Discard()

	if runs != 0 || e.Builds() != 0 {
		t.Fatalf("runs = %d, builds = %d after discard; want 0, 0", runs, e.Builds())
	}
	if !owner.NeedsWork() {
		t.Fatal("discarded element should stay scheduled")
	}

	owner.FlushBuild()
	if runs != 1 || e.Builds() != 1 {
		t.Errorf("runs = %d, builds = %d after flush; want 1, 1", runs, e.Builds())
	}
}

func TestHookOrderViolationIsReported(t *testing.T) {
	c := &errors.Collector{}
	prev := errors.SetHandler(c)
	defer errors.SetHandler(prev)

	owner := NewBuildOwner()
	extra := false
	e := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) {
		UseRef[int](ctx, nil)
		if extra {
			UseRef[int](ctx, nil)
		}
	}))
	owner.FlushBuild()

	extra = true
	e.MarkNeedsBuild()
	owner.FlushBuild()

	if e.Err() == nil || len(c.BuildErrors) != 1 {
		t.Error("expected a build error when hook count changes")
	}
	if e.Builds() != 1 {
		t.Errorf("Builds() = %d, want 1", e.Builds())
	}
}
