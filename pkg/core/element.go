package core

import (
	"reflect"
	"slices"
)

// Component describes a consumer. Build runs once per render attempt and
// may call hooks (UseRef, UseMemo, UseEffect, UseSyncExternalStore, ...)
// in a fixed order.
type Component interface {
	Build(ctx BuildContext)
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx BuildContext)

// Build calls f(ctx).
func (f ComponentFunc) Build(ctx BuildContext) { f(ctx) }

// Element is a mounted Component. It owns the component's committed hook
// state and its position in the element tree.
type Element struct {
	StateBase

	component Component
	parent    *Element
	children  []*Element
	depth     int
	owner     *BuildOwner
	dirty     bool
	mounted   bool

	hooks    []any
	provided map[any]any
	builds   int
	err      error
}

// Component returns the element's component.
func (e *Element) Component() Component {
	return e.component
}

// Parent returns the parent element, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Depth returns the distance from the root (roots have depth 0).
func (e *Element) Depth() int {
	return e.depth
}

// Owner returns the build owner scheduling this element.
func (e *Element) Owner() *BuildOwner {
	return e.owner
}

// Builds returns how many render attempts of this element have committed.
func (e *Element) Builds() int {
	return e.builds
}

// Err returns the error from the most recent failed build, if any.
func (e *Element) Err() error {
	return e.err
}

// IsMounted reports whether the element is still part of the tree.
func (e *Element) IsMounted() bool {
	return e.mounted
}

// IsDirty reports whether the element is waiting for a rebuild.
func (e *Element) IsDirty() bool {
	return e.dirty
}

// VisitChildren calls visitor for each child in mount order until it
// returns false.
func (e *Element) VisitChildren(visitor func(*Element) bool) {
	for _, child := range slices.Clone(e.children) {
		if !visitor(child) {
			return
		}
	}
}

// MarkNeedsBuild schedules the element for rebuild. It is a no-op when the
// element is already dirty or has been unmounted.
func (e *Element) MarkNeedsBuild() {
	if e.dirty || !e.mounted {
		return
	}
	e.dirty = true
	if e.owner != nil {
		e.owner.ScheduleBuild(e)
	}
}

// Provide makes value available to this element and its descendants
// under key. Keys must be comparable.
func (e *Element) Provide(key, value any) {
	if e.provided == nil {
		e.provided = make(map[any]any)
	}
	e.provided[key] = value
}

// Lookup returns the value provided under key by this element or its
// nearest ancestor.
func (e *Element) Lookup(key any) (any, bool) {
	for current := e; current != nil; current = current.parent {
		if v, ok := current.provided[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Unmount removes the element and its subtree. Effect cleanups run
// children first, then in hook order, followed by disposers registered with
// OnDispose. Unmount is idempotent.
func (e *Element) Unmount() {
	if !e.mounted {
		return
	}
	for _, child := range slices.Clone(e.children) {
		child.Unmount()
	}
	e.mounted = false
	e.dirty = false

	for _, h := range e.hooks {
		if eff, ok := h.(*effectHook); ok && eff.cleanup != nil {
			cleanup := eff.cleanup
			eff.cleanup = nil
			cleanup()
		}
	}
	e.hooks = nil
	e.RunDisposers()

	if e.parent != nil {
		e.parent.children = slices.DeleteFunc(e.parent.children, func(c *Element) bool { return c == e })
	}
	e.provided = nil
}

func (e *Element) componentName() string {
	if e.component == nil {
		return "<nil>"
	}
	return reflect.TypeOf(e.component).String()
}
