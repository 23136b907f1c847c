package core

import (
	"fmt"

	"github.com/go-drift/storesync/internal/identity"
)

// BuildContext is the handle a component receives for one render attempt.
// Hooks take it as their first argument and must be called in the same
// order on every build.
type BuildContext interface {
	// Element returns the element being built.
	Element() *Element
	// Owner returns the element's build owner.
	Owner() *BuildOwner
	// Lookup returns the nearest value provided under key.
	Lookup(key any) (any, bool)
	// Mounting reports whether this attempt renders the element for the
	// first time (nothing has been committed yet).
	Mounting() bool

	work() *attempt
}

// attempt is the work-in-progress state of one build of one element.
type attempt struct {
	element  *Element
	pass     *Pass
	slots    []any
	index    int
	mounting bool

	layoutEffects  []*effectHook
	passiveEffects []*effectHook
}

func newAttempt(e *Element, p *Pass) *attempt {
	return &attempt{
		element:  e,
		pass:     p,
		slots:    append([]any(nil), e.hooks...),
		mounting: e.builds == 0,
	}
}

func (a *attempt) Element() *Element          { return a.element }
func (a *attempt) Owner() *BuildOwner         { return a.element.owner }
func (a *attempt) Lookup(key any) (any, bool) { return a.element.Lookup(key) }
func (a *attempt) Mounting() bool             { return a.mounting }
func (a *attempt) work() *attempt             { return a }

// next returns the committed slot at the current hook index (nil while
// mounting) and advances the index.
func (a *attempt) next() (slot any, index int) {
	index = a.index
	a.index++
	if a.mounting {
		a.slots = append(a.slots, nil)
		return nil, index
	}
	if index >= len(a.slots) {
		panic(fmt.Sprintf("core: %s rendered more hooks than during the previous build", a.element.componentName()))
	}
	return a.slots[index], index
}

func (a *attempt) finish() {
	if !a.mounting && a.index != len(a.slots) {
		panic(fmt.Sprintf("core: %s rendered fewer hooks than during the previous build", a.element.componentName()))
	}
}

func (a *attempt) runEffects(effects []*effectHook) {
	for _, eff := range effects {
		if !a.element.mounted {
			return
		}
		if eff.cleanup != nil {
			cleanup := eff.cleanup
			eff.cleanup = nil
			cleanup()
		}
		eff.cleanup = eff.create()
	}
}

func slotAs[T any](a *attempt, slot any, index int) T {
	v, ok := slot.(T)
	if !ok {
		var want T
		panic(fmt.Sprintf("core: %s hook %d changed type: have %T, want %T", a.element.componentName(), index, slot, want))
	}
	return v
}

// Ref is a mutable box that survives rebuilds.
type Ref[T any] struct {
	Value T
}

// UseRef returns the element's Ref for this hook position, creating it with
// init on mount. The same Ref is returned on every later build. A Ref
// created by a discarded mount attempt is dropped with it.
func UseRef[T any](ctx BuildContext, init func() T) *Ref[T] {
	a := ctx.work()
	slot, index := a.next()
	if slot == nil {
		ref := &Ref[T]{}
		if init != nil {
			ref.Value = init()
		}
		a.slots[index] = ref
		return ref
	}
	return slotAs[*Ref[T]](a, slot, index)
}

type memoHook[T any] struct {
	deps  []any
	value T
}

// UseMemo returns compute() and caches it until one of deps changes
// identity. A nil deps slice recomputes on every build. The cache update is
// part of the attempt and is dropped if the attempt is discarded.
func UseMemo[T any](ctx BuildContext, deps []any, compute func() T) T {
	a := ctx.work()
	slot, index := a.next()
	if slot != nil {
		prev := slotAs[*memoHook[T]](a, slot, index)
		if deps != nil && depsEqual(prev.deps, deps) {
			return prev.value
		}
	}
	h := &memoHook[T]{deps: deps, value: compute()}
	a.slots[index] = h
	return h.value
}

type effectHook struct {
	deps    []any
	create  func() func()
	cleanup func()
}

// UseEffect schedules create to run after the attempt commits, once all
// layout effects of the pass have run. It runs on mount and whenever deps
// change (every commit when deps is nil). The function create returns, if
// any, runs before the next invocation and on unmount.
func UseEffect(ctx BuildContext, deps []any, create func() func()) {
	useEffect(ctx, deps, create, false)
}

// UseLayoutEffect is UseEffect, but runs in the first commit phase, before
// any passive effect of the pass.
func UseLayoutEffect(ctx BuildContext, deps []any, create func() func()) {
	useEffect(ctx, deps, create, true)
}

func useEffect(ctx BuildContext, deps []any, create func() func(), layout bool) {
	a := ctx.work()
	slot, index := a.next()
	h := &effectHook{deps: deps, create: create}
	run := true
	if slot != nil {
		prev := slotAs[*effectHook](a, slot, index)
		h.cleanup = prev.cleanup
		if deps != nil && depsEqual(prev.deps, deps) {
			run = false
		}
	}
	a.slots[index] = h
	if !run {
		return
	}
	if layout {
		a.layoutEffects = append(a.layoutEffects, h)
	} else {
		a.passiveEffects = append(a.passiveEffects, h)
	}
}

func depsEqual(prev, next []any) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !identity.Is(prev[i], next[i]) {
			return false
		}
	}
	return true
}
