package core

import "github.com/go-drift/storesync/internal/identity"

// Source is a mutable value owned outside the element tree that announces
// changes. Sources are compared by identity: passing a different Source to
// UseSyncExternalStore resubscribes.
type Source interface {
	Subscribe(onChange func()) (unsubscribe func())
}

type storeInstance[V any] struct {
	value       V
	getSnapshot func() V
}

// changed reports whether the latest snapshot differs from the committed
// value. A panicking getSnapshot counts as a change so the panic resurfaces
// in the next build instead of inside a store notification.
func (inst *storeInstance[V]) changed() (changed bool) {
	defer func() {
		if recover() != nil {
			changed = true
		}
	}()
	next := inst.getSnapshot()
	return !identity.Is(inst.value, next)
}

// UseSyncExternalStore reads a snapshot of an external source and rebuilds
// the element whenever the snapshot changes.
//
// The snapshot is read once per render attempt. While the owner is
// hydrating and the element has never committed, getServerSnapshot is used
// instead (when non-nil). After every commit the snapshot is read again; if
// it no longer matches what was rendered, the element is scheduled to
// render again, so a committed build never shows a value older than the
// source. The subscription is opened after the first commit, reopened when
// source changes identity and closed on unmount.
//
// getSnapshot must return identical values for an unchanged source.
func UseSyncExternalStore[V any](ctx BuildContext, source Source, getSnapshot func() V, getServerSnapshot func() V) V {
	element := ctx.Element()

	var value V
	if getServerSnapshot != nil && ctx.Mounting() && ctx.Owner().Hydrating() {
		value = getServerSnapshot()
	} else {
		value = getSnapshot()
	}

	inst := UseRef(ctx, func() *storeInstance[V] {
		return &storeInstance[V]{value: value, getSnapshot: getSnapshot}
	}).Value

	UseLayoutEffect(ctx, nil, func() func() {
		inst.value = value
		inst.getSnapshot = getSnapshot
		if inst.changed() {
			element.MarkNeedsBuild()
		}
		return nil
	})

	UseEffect(ctx, []any{source}, func() func() {
		if inst.changed() {
			element.MarkNeedsBuild()
		}
		return source.Subscribe(func() {
			if inst.changed() {
				element.MarkNeedsBuild()
			}
		})
	})

	return value
}
