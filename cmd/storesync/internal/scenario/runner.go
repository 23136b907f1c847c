package scenario

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/errors"
	"github.com/go-drift/storesync/pkg/selector"
	"github.com/go-drift/storesync/pkg/store"
	"github.com/go-drift/storesync/pkg/tracesink"
)

// Options configures a run.
type Options struct {
	// Checks are the provider-level development checks. The scenario's own
	// checks take precedence.
	Checks selector.DevModeChecks
	// Development sets core.DebugMode for the duration of the run.
	Development bool
	// Trace records instrumentation events into the report.
	Trace bool
	// Logger, when set, also logs every instrumentation event.
	Logger *slog.Logger
	// IDs generates trace record IDs. Nil numbers them "trace-1", "trace-2"...
	IDs tracesink.IDGenerator
}

// Report is the outcome of a run.
type Report struct {
	Scenario    string             `json:"scenario"`
	Bindings    []*BindingResult   `json:"bindings"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
	Panics      []string           `json:"panics,omitempty"`
	Records     []tracesink.Record `json:"records,omitempty"`
	Events      []tracesink.Event  `json:"events,omitempty"`
}

// BindingResult is what one binding rendered.
type BindingResult struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Equality string `json:"equality"`
	// Renders holds the selection of every render attempt, committed or not.
	Renders []any `json:"renders"`
	Commits int   `json:"commits"`
	Mounted bool  `json:"mounted"`
	Error   string `json:"error,omitempty"`
}

// Last returns the most recent selection, or nil before the first render.
func (b *BindingResult) Last() any {
	if len(b.Renders) == 0 {
		return nil
	}
	return b.Renders[len(b.Renders)-1]
}

// Run executes s on a fresh store and build owner. Framework errors and
// diagnostics raised during the run are collected into the report instead
// of the installed handler. A step that panics ends the run; the panic is
// listed in the report.
func Run(s *Scenario, opts Options) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	prevDebug := core.DebugMode
	core.SetDebugMode(opts.Development)
	defer core.SetDebugMode(prevDebug)

	collector := &errors.Collector{}
	prevHandler := errors.SetHandler(collector)
	defer errors.SetHandler(prevHandler)

	r := newRun(s, opts)
	for i, step := range s.Steps {
		if !r.step(i, step, collector) {
			break
		}
	}
	report := r.report(collector)
	r.unmount()
	return report, nil
}

type run struct {
	owner    *core.BuildOwner
	store    *store.Store[State]
	root     *core.Element
	recorder *tracesink.Recorder
	bindings []*mountedBinding
	pass     *core.Pass
	scenario *Scenario
}

type mountedBinding struct {
	element *core.Element
	result  *BindingResult
}

func newRun(s *Scenario, opts Options) *run {
	ids := opts.IDs
	if ids == nil {
		ids = tracesink.Sequential("trace")
	}
	initial := maps.Clone(s.State)
	if initial == nil {
		initial = State{}
	}
	r := &run{
		owner:    core.NewBuildOwner(),
		store:    store.New(initial),
		recorder: tracesink.NewRecorder(ids),
		scenario: s,
	}

	checks := opts.Checks.Merge(selector.PartialDevModeChecks{
		StabilityCheck:        s.Checks.Stability,
		IdentityFunctionCheck: s.Checks.IdentityFunction,
	})
	provOpts := []selector.ProviderOption[State]{
		selector.WithStabilityCheck[State](checks.StabilityCheck),
		selector.WithIdentityFunctionCheck[State](checks.IdentityFunctionCheck),
	}
	if s.ServerState != nil {
		server := s.ServerState
		provOpts = append(provOpts, selector.WithServerState(func() State { return server }))
	}
	var factories []selector.TraceFactory
	if opts.Trace {
		factories = append(factories, r.recorder.Factory())
	}
	if opts.Logger != nil {
		factories = append(factories, tracesink.SlogFactory(opts.Logger))
	}
	if len(factories) > 0 {
		provOpts = append(provOpts, selector.WithTraceFactory[State](tracesink.Multi(factories...)))
	}

	r.root = r.owner.Mount(nil, core.ComponentFunc(func(core.BuildContext) {}))
	selector.Provide(r.root, selector.NewStoreContext[State](r.store, provOpts...))

	hook := selector.NewHook[State](nil)
	for _, b := range s.Bindings {
		equality := b.Equality
		if equality == "" {
			equality = EqualityRef
		}
		result := &BindingResult{Name: b.Name, Path: b.Path, Equality: equality}
		path := splitPath(b.Path)
		c := &bindingComponent{
			hook:   hook,
			sel:    selector.NewNamedFunc(b.Name, func(s State) any { return lookup(s, path) }),
			result: result,
		}
		if opt, _ := equalityOption(b.Equality); opt != nil {
			c.opts = append(c.opts, opt)
		}
		r.bindings = append(r.bindings, &mountedBinding{
			element: r.owner.Mount(r.root, c),
			result:  result,
		})
	}
	return r
}

// step applies one step and reports whether it completed without a panic.
func (r *run) step(i int, step Step, collector *errors.Collector) bool {
	before := len(collector.Panics)
	func() {
		defer errors.Recover(fmt.Sprintf("scenario step %d (%s)", i, step.Op))
		r.apply(step)
	}()
	return len(collector.Panics) == before
}

// unmount tears the tree down, dropping a pass a panicking step left open.
func (r *run) unmount() {
	defer errors.Recover("scenario teardown")
	if r.pass != nil {
		r.pass.Discard()
		r.pass = nil
	}
	r.root.Unmount()
}

func (r *run) apply(step Step) {
	switch step.Op {
	case OpSet:
		path := splitPath(step.Path)
		r.store.Update(func(s State) State { return setPath(s, path, step.Value) })
	case OpDelete:
		path := splitPath(step.Path)
		r.store.Update(func(s State) State { return deletePath(s, path) })
	case OpFlush:
		r.owner.FlushBuild()
	case OpAttempt:
		r.pass = r.owner.BeginPass()
		for _, b := range r.bindings {
			if step.Binding != "" && b.result.Name != step.Binding {
				continue
			}
			if b.element.IsMounted() && b.element.IsDirty() {
				r.pass.Render(b.element)
			}
		}
	case OpCommit:
		r.pass.Commit()
		r.pass = nil
	case OpDiscard:
		r.pass.Discard()
		r.pass = nil
	case OpHydrate:
		hydrating, _ := hydrateFlag(step.Value)
		r.owner.SetHydrating(hydrating)
	case OpUnmount:
		for _, b := range r.bindings {
			if b.result.Name == step.Binding {
				b.element.Unmount()
			}
		}
	}
}

func (r *run) report(collector *errors.Collector) *Report {
	report := &Report{
		Scenario: r.scenario.Name,
		Records:  r.recorder.Records(),
		Events:   r.recorder.Events(),
	}
	for _, b := range r.bindings {
		b.result.Commits = b.element.Builds()
		b.result.Mounted = b.element.IsMounted()
		if err := b.element.Err(); err != nil {
			b.result.Error = err.Error()
		}
		if b.result.Renders == nil {
			b.result.Renders = []any{}
		}
		report.Bindings = append(report.Bindings, b.result)
	}
	for _, d := range collector.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, d.String())
	}
	for _, p := range collector.Panics {
		report.Panics = append(report.Panics, p.Error())
	}
	return report
}

// bindingComponent renders one binding and records its selections.
type bindingComponent struct {
	hook   selector.Hook[State]
	sel    *selector.Func[State, any]
	opts   []selector.Option
	result *BindingResult
}

func (c *bindingComponent) Build(ctx core.BuildContext) {
	v, err := selector.Select(ctx, c.hook, c.sel, c.opts...)
	if err != nil {
		c.result.Error = err.Error()
		return
	}
	c.result.Renders = append(c.result.Renders, v)
}
