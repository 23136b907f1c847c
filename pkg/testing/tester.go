package testing

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/errors"
)

// DefaultMaxFrames bounds PumpAndSettle when no limit is given.
const DefaultMaxFrames = 50

// ErrSettleTimeout is returned when PumpAndSettle exceeds its frame budget.
var ErrSettleTimeout = stderrors.New("PumpAndSettle timed out: build owner did not settle")

// Tester drives a BuildOwner the way a host would, with every framework
// error and diagnostic captured instead of logged.
type Tester struct {
	buildOwner  *core.BuildOwner
	root        *core.Element
	dispatches  []func()
	collector   *errors.Collector
	prevHandler errors.ErrorHandler
	frames      int
}

// NewTester creates a tester with an empty root element.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester() *Tester {
	t := &Tester{
		buildOwner: core.NewBuildOwner(),
		collector:  &errors.Collector{},
	}
	t.buildOwner.OnNeedsFrame = func() { t.frames++ }
	t.prevHandler = errors.SetHandler(t.collector)
	t.root = t.buildOwner.Mount(nil, core.ComponentFunc(func(core.BuildContext) {}))
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree and restores the previous error handler.
func (t *Tester) Cleanup() {
	if t.root != nil {
		t.root.Unmount()
		t.root = nil
	}
	if t.collector != nil {
		errors.SetHandler(t.prevHandler)
		t.collector = nil
	}
}

// Owner returns the tester's build owner.
func (t *Tester) Owner() *core.BuildOwner {
	return t.buildOwner
}

// Root returns the root element. Providers are usually installed on it.
func (t *Tester) Root() *core.Element {
	return t.root
}

// Mount adds component below the root without building it.
func (t *Tester) Mount(component core.Component) *core.Element {
	return t.buildOwner.Mount(t.root, component)
}

// PumpComponent mounts component below the root and runs one frame.
func (t *Tester) PumpComponent(component core.Component) (*core.Element, error) {
	e := t.Mount(component)
	return e, t.Pump()
}

// Pump runs a single frame: queued dispatches, then FlushBuild. It returns
// the first build error raised during the frame.
func (t *Tester) Pump() error {
	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn()
	}

	before := len(t.collector.BuildErrors)
	t.buildOwner.FlushBuild()
	if len(t.collector.BuildErrors) > before {
		return t.collector.BuildErrors[before]
	}
	return nil
}

// PumpAndSettle pumps until nothing is dirty and no dispatch is queued.
// maxFrames <= 0 means DefaultMaxFrames.
func (t *Tester) PumpAndSettle(maxFrames int) error {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	for i := 0; i < maxFrames; i++ {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

func (t *Tester) needsWork() bool {
	return t.buildOwner.NeedsWork() || len(t.dispatches) > 0
}

// Dispatch queues a callback for the next frame.
func (t *Tester) Dispatch(fn func()) {
	t.dispatches = append(t.dispatches, fn)
}

// Attempt starts a render pass and renders elements in it. The caller
// commits or discards the returned pass.
func (t *Tester) Attempt(elements ...*core.Element) *core.Pass {
	pass := t.buildOwner.BeginPass()
	for _, e := range elements {
		pass.Render(e)
	}
	return pass
}

// Frames returns how many times the owner requested a frame.
func (t *Tester) Frames() int {
	return t.frames
}

// ResetFrames zeroes the frame request counter.
func (t *Tester) ResetFrames() {
	t.frames = 0
}

// Diagnostics returns the development warnings captured so far.
func (t *Tester) Diagnostics() []*errors.Diagnostic {
	return t.collector.Diagnostics
}

// DiagnosticCount returns how many warnings of kind were captured.
func (t *Tester) DiagnosticCount(kind errors.DiagnosticKind) int {
	return t.collector.Count(kind)
}

// BuildErrors returns the build failures captured so far.
func (t *Tester) BuildErrors() []*errors.BuildError {
	return t.collector.BuildErrors
}

// Find evaluates a finder against the current element tree.
func (t *Tester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}
