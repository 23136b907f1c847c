package selector

import "github.com/go-drift/storesync/internal/identity"

// memoRecord is the memoization state of one binding: the last snapshot
// the projection ran on and the selection it produced.
type memoRecord[S, T any] struct {
	hasMemo       bool
	lastSnapshot  S
	lastSelection T
}

// renderedRecord holds the selection of the last committed build. It is
// written only after commit.
type renderedRecord[T any] struct {
	hasValue bool
	value    T
}

// memoizedSelector turns snapshots into selections, running the
// projection only when the snapshot changed identity.
type memoizedSelector[S, T any] struct {
	memo     memoRecord[S, T]
	rendered *renderedRecord[T]
	project  func(S) T
}

func (m *memoizedSelector[S, T]) call(snapshot S, trace Trace) T {
	trace.SelectorCallStart()
	selection := m.project(snapshot)
	trace.SelectorCallEnd()
	return selection
}

func selectionsEqual[T any](a, b T, opts SyncOptions[T]) bool {
	eq := opts.IsEqual(a, b)
	opts.Trace.EqualityFn(eq)
	return eq
}

// compute returns the selection for snapshot. opts.IsEqual and opts.Trace
// come from the build that reads the snapshot; opts.Trace must be non-nil.
//
// On the first call the fresh selection is compared with the last
// committed selection, so a new selector producing an equal result keeps
// the rendered value. Later calls compare with the last memoized
// selection instead.
func (m *memoizedSelector[S, T]) compute(snapshot S, opts SyncOptions[T]) T {
	if !m.memo.hasMemo {
		m.memo.hasMemo = true
		m.memo.lastSnapshot = snapshot
		next := m.call(snapshot, opts.Trace)
		if opts.IsEqual != nil && m.rendered.hasValue {
			if current := m.rendered.value; selectionsEqual(current, next, opts) {
				m.memo.lastSelection = current
				return current
			}
		}
		m.memo.lastSelection = next
		return next
	}

	same := identity.Is(m.memo.lastSnapshot, snapshot)
	opts.Trace.SnapshotCompare(same)
	if same {
		return m.memo.lastSelection
	}

	next := m.call(snapshot, opts.Trace)
	if opts.IsEqual != nil && selectionsEqual(m.memo.lastSelection, next, opts) {
		// The snapshot still moves forward so the next identical snapshot
		// short-circuits.
		m.memo.lastSnapshot = snapshot
		return m.memo.lastSelection
	}
	m.memo.lastSnapshot = snapshot
	m.memo.lastSelection = next
	return next
}
