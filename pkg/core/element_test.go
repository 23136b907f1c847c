package core

import (
	"testing"

	"github.com/go-drift/storesync/pkg/errors"
)

func TestMountSchedulesAndBuildsInDepthOrder(t *testing.T) {
	owner := NewBuildOwner()
	frames := 0
	owner.OnNeedsFrame = func() { frames++ }

	var order []string
	root := owner.Mount(nil, ComponentFunc(func(ctx BuildContext) { order = append(order, "root") }))
	child := owner.Mount(root, ComponentFunc(func(ctx BuildContext) { order = append(order, "child") }))

	if frames != 2 {
		t.Errorf("OnNeedsFrame called %d times, want 2", frames)
	}

	child.MarkNeedsBuild() // already dirty: no-op
	owner.FlushBuild()

	if len(order) != 2 || order[0] != "root" || order[1] != "child" {
		t.Errorf("build order = %v, want [root child]", order)
	}
	if child.Depth() != 1 || child.Parent() != root {
		t.Errorf("child depth = %d, parent = %p", child.Depth(), child.Parent())
	}
	if owner.NeedsWork() {
		t.Error("owner should be idle after FlushBuild")
	}
}

func TestProvideAndLookup(t *testing.T) {
	owner := NewBuildOwner()
	type key struct{}

	root := owner.Mount(nil, ComponentFunc(func(BuildContext) {}))
	root.Provide(key{}, "outer")
	mid := owner.Mount(root, ComponentFunc(func(BuildContext) {}))

	var got any
	var found bool
	owner.Mount(mid, ComponentFunc(func(ctx BuildContext) {
		got, found = ctx.Lookup(key{})
	}))
	owner.FlushBuild()

	if !found || got != "outer" {
		t.Errorf("Lookup = %v, %v; want outer, true", got, found)
	}

	mid.Provide(key{}, "inner")
	if v, _ := mid.Lookup(key{}); v != "inner" {
		t.Errorf("nearest provider should win, got %v", v)
	}
}

func TestUnmountCascadesAndDisposes(t *testing.T) {
	owner := NewBuildOwner()
	var log []string

	root := owner.Mount(nil, ComponentFunc(func(BuildContext) {}))
	child := owner.Mount(root, ComponentFunc(func(ctx BuildContext) {
		UseEffect(ctx, nil, func() func() {
			return func() { log = append(log, "child effect") }
		})
	}))
	root.OnDispose(func() { log = append(log, "root disposer") })
	child.OnDispose(func() { log = append(log, "child disposer") })
	owner.FlushBuild()

	root.Unmount()
	root.Unmount()

	want := []string{"child effect", "child disposer", "root disposer"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if child.IsMounted() || !child.IsDisposed() {
		t.Error("child should be unmounted and disposed")
	}

	child.MarkNeedsBuild()
	if owner.NeedsWork() {
		t.Error("unmounted element must not be scheduled")
	}
}

func TestOnDisposeAfterDisposeRunsImmediately(t *testing.T) {
	var s StateBase
	s.RunDisposers()
	ran := false
	s.OnDispose(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after dispose should run immediately")
	}
}

func TestBuildPanicIsReported(t *testing.T) {
	c := &errors.Collector{}
	prev := errors.SetHandler(c)
	defer errors.SetHandler(prev)

	owner := NewBuildOwner()
	e := owner.Mount(nil, ComponentFunc(func(BuildContext) { panic("boom") }))
	owner.FlushBuild()

	if len(c.BuildErrors) != 1 {
		t.Fatalf("expected 1 build error, got %d", len(c.BuildErrors))
	}
	if c.BuildErrors[0].Recovered != "boom" {
		t.Errorf("Recovered = %v, want boom (unchanged panic value)", c.BuildErrors[0].Recovered)
	}
	if e.Err() == nil || e.Builds() != 0 {
		t.Errorf("Err() = %v, Builds() = %d", e.Err(), e.Builds())
	}
}

func TestBeginPassTwicePanics(t *testing.T) {
	owner := NewBuildOwner()
	pass := owner.BeginPass()
	defer pass.Discard()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for overlapping passes")
		}
	}()
	owner.BeginPass()
}
