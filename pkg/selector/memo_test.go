package selector

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type snapshot struct {
	items []int
}

// eventTrace records instrumentation events by name.
type eventTrace struct {
	events *[]string
}

func newEventTrace() (*eventTrace, *[]string) {
	var events []string
	return &eventTrace{events: &events}, &events
}

func (t *eventTrace) add(name string) { *t.events = append(*t.events, name) }

func (t *eventTrace) SelectorUnmount()   { t.add("selectorUnmount") }
func (t *eventTrace) SelectorCallStart() { t.add("selectorCallStart") }
func (t *eventTrace) SelectorCallEnd()   { t.add("selectorCallEnd") }
func (t *eventTrace) EqualityFn(equal bool) {
	if equal {
		t.add("equalityFn:true")
	} else {
		t.add("equalityFn:false")
	}
}
func (t *eventTrace) SnapshotCompare(same bool) {
	if same {
		t.add("snapshotCompare:true")
	} else {
		t.add("snapshotCompare:false")
	}
}
func (t *eventTrace) Subscribe()        { t.add("subscribe") }
func (t *eventTrace) SubscribeCleanup() { t.add("subscribeCleanup") }
func (t *eventTrace) StoreChange()      { t.add("storeChange") }
func (t *eventTrace) GetSnapshot()      { t.add("getSnapshot") }

func copyItems(s *snapshot) []int {
	return append([]int(nil), s.items...)
}

// memoUnderTest runs compute with fixed options, the way one build does.
type memoUnderTest struct {
	*memoizedSelector[*snapshot, []int]
	opts SyncOptions[[]int]
}

func (m *memoUnderTest) compute(s *snapshot) []int {
	return m.memoizedSelector.compute(s, m.opts)
}

func newMemo(project func(*snapshot) []int, eq EqualityFn[[]int]) (*memoUnderTest, *int) {
	calls := 0
	return &memoUnderTest{
		memoizedSelector: &memoizedSelector[*snapshot, []int]{
			rendered: &renderedRecord[[]int]{},
			project: func(s *snapshot) []int {
				calls++
				return project(s)
			},
		},
		opts: SyncOptions[[]int]{IsEqual: eq, Trace: NopTrace{}},
	}, &calls
}

func TestComputeSkipsIdenticalSnapshot(t *testing.T) {
	m, calls := newMemo(copyItems, nil)
	s := &snapshot{items: []int{1}}

	first := m.compute(s)
	second := m.compute(s)

	if *calls != 1 {
		t.Errorf("projection calls = %d, want 1", *calls)
	}
	if &first[0] != &second[0] {
		t.Error("identical snapshot should return the memoized selection")
	}
}

func TestComputeEqualSelectionKeepsPrevious(t *testing.T) {
	m, calls := newMemo(copyItems, slices.Equal[[]int])

	first := m.compute(&snapshot{items: []int{1, 2}})
	second := m.compute(&snapshot{items: []int{1, 2}})
	third := m.compute(&snapshot{items: []int{3}})

	if *calls != 3 {
		t.Errorf("projection calls = %d, want 3", *calls)
	}
	if &first[0] != &second[0] {
		t.Error("equal selection should keep the previous value")
	}
	if diff := cmp.Diff([]int{3}, third); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeAdvancesSnapshotOnEqualSelection(t *testing.T) {
	m, calls := newMemo(copyItems, slices.Equal[[]int])

	m.compute(&snapshot{items: []int{1}})
	s2 := &snapshot{items: []int{1}}
	m.compute(s2)
	m.compute(s2)

	if *calls != 2 {
		t.Errorf("projection calls = %d, want 2", *calls)
	}
}

func TestComputeFirstCallComparesRendered(t *testing.T) {
	m, _ := newMemo(copyItems, slices.Equal[[]int])
	committed := []int{7}
	m.rendered.hasValue = true
	m.rendered.value = committed

	got := m.compute(&snapshot{items: []int{7}})
	if &got[0] != &committed[0] {
		t.Error("first selection equal to the rendered value should reuse it")
	}

	// Later calls compare with the memoized selection, not the rendered one.
	m.rendered.value = []int{8}
	again := m.compute(&snapshot{items: []int{7}})
	if &again[0] != &committed[0] {
		t.Error("later selection should be compared with the memoized value")
	}
}

func TestComputeWithoutEqualityIgnoresRendered(t *testing.T) {
	m, _ := newMemo(copyItems, nil)
	committed := []int{7}
	m.rendered.hasValue = true
	m.rendered.value = committed

	got := m.compute(&snapshot{items: []int{7}})
	if &got[0] == &committed[0] {
		t.Error("without an equality function the fresh selection is returned")
	}
}

func TestComputeTrace(t *testing.T) {
	m, _ := newMemo(copyItems, slices.Equal[[]int])
	trace, events := newEventTrace()
	m.opts.Trace = trace

	s := &snapshot{items: []int{1}}
	m.compute(s)
	m.compute(s)
	m.compute(&snapshot{items: []int{1}})

	want := []string{
		"selectorCallStart", "selectorCallEnd",
		"snapshotCompare:true",
		"snapshotCompare:false", "selectorCallStart", "selectorCallEnd", "equalityFn:true",
	}
	if diff := cmp.Diff(want, *events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeEqualityPanicPropagates(t *testing.T) {
	m, _ := newMemo(copyItems, func(a, b []int) bool { panic("equality") })
	m.compute(&snapshot{items: []int{1}})

	defer func() {
		if r := recover(); r != "equality" {
			t.Errorf("recovered %v, want the equality panic", r)
		}
	}()
	m.compute(&snapshot{items: []int{2}})
}
