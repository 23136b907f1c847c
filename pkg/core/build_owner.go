package core

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/storesync/pkg/errors"
)

// BuildOwner tracks dirty elements and drives render passes.
type BuildOwner struct {
	dirty     []*Element
	dirtySet  map[*Element]bool
	mu        sync.Mutex
	current   *Pass
	hydrating bool

	// OnNeedsFrame is called when a new element is scheduled for rebuild,
	// signalling the host that FlushBuild should run.
	OnNeedsFrame func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{}
}

// SetHydrating marks the owner as hydrating from a server-rendered
// snapshot. While hydrating, elements rendering for the first time read
// server snapshots from UseSyncExternalStore.
func (b *BuildOwner) SetHydrating(hydrating bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hydrating = hydrating
}

// Hydrating reports whether the owner is hydrating.
func (b *BuildOwner) Hydrating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hydrating
}

// Mount creates an element for component under parent (nil for a root)
// and schedules its first build.
func (b *BuildOwner) Mount(parent *Element, component Component) *Element {
	e := &Element{
		component: component,
		parent:    parent,
		owner:     b,
		mounted:   true,
	}
	if parent != nil {
		e.depth = parent.depth + 1
		parent.children = append(parent.children, e)
	}
	e.MarkNeedsBuild()
	return e
}

// ScheduleBuild marks an element as needing rebuild.
func (b *BuildOwner) ScheduleBuild(element *Element) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[element] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[*Element]bool)
		}
		b.dirtySet[element] = true
		b.dirty = append(b.dirty, element)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// NeedsWork returns true if there are dirty elements.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0
}

// takeDirty drains the dirty queue in depth order.
func (b *BuildOwner) takeDirty() []*Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.dirty, func(x, y *Element) int {
		return x.depth - y.depth
	})
	dirty := b.dirty
	b.dirty = nil
	clear(b.dirtySet)
	return dirty
}

// maxFlushRounds bounds FlushBuild so a component that schedules itself on
// every commit cannot hang the caller.
const maxFlushRounds = 100

// FlushBuild renders and commits dirty elements until none remain.
// Elements are rebuilt in depth order. Elements dirtied by a commit (for
// example because the store changed between render and commit) are
// rebuilt in a following round.
func (b *BuildOwner) FlushBuild() {
	for round := 0; ; round++ {
		if round == maxFlushRounds {
			panic(fmt.Sprintf("core: FlushBuild did not settle after %d rounds", maxFlushRounds))
		}
		dirty := b.takeDirty()
		if len(dirty) == 0 {
			return
		}
		pass := b.BeginPass()
		for _, element := range dirty {
			// Skip elements committed by a manual pass since they were queued.
			if !element.mounted || !element.dirty {
				continue
			}
			pass.Render(element)
		}
		pass.Commit()
	}
}

// Pass is one render pass: a set of render attempts that are committed or
// discarded together. Snapshots captured with Capture are shared by every
// attempt in the pass.
type Pass struct {
	owner     *BuildOwner
	attempts  []*attempt
	snapshots map[any]any
	rendering bool
	finished  bool
}

// BeginPass starts a render pass. Only one pass may be active at a time.
func (b *BuildOwner) BeginPass() *Pass {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		panic("core: BeginPass called while another pass is active")
	}
	p := &Pass{owner: b, rendering: true}
	b.current = p
	return p
}

// Render runs a render attempt for element. Rendering the same element
// twice in one pass replaces the earlier attempt. A panicking build is
// reported as an errors.BuildError and its attempt is dropped.
func (p *Pass) Render(element *Element) {
	if p.finished {
		panic("core: Render called on a finished pass")
	}
	if element.owner != p.owner {
		panic("core: element belongs to a different BuildOwner")
	}
	a := newAttempt(element, p)
	if !p.build(a) {
		p.attempts = slices.DeleteFunc(p.attempts, func(x *attempt) bool { return x.element == element })
		return
	}
	for i, existing := range p.attempts {
		if existing.element == element {
			p.attempts[i] = a
			return
		}
	}
	p.attempts = append(p.attempts, a)
}

func (p *Pass) build(a *attempt) (ok bool) {
	e := a.element
	defer func() {
		if r := recover(); r != nil {
			buildErr := &errors.BuildError{
				Component:  e.componentName(),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			errors.ReportBuildError(buildErr)
			e.err = buildErr
			e.dirty = false
			ok = false
		}
	}()
	e.component.Build(a)
	a.finish()
	e.err = nil
	return true
}

// Commit publishes every attempt of the pass: hook state becomes the
// element's committed state, then layout effects run, then passive effects.
func (p *Pass) Commit() {
	p.end()

	var committed []*attempt
	for _, a := range p.attempts {
		e := a.element
		if !e.mounted {
			continue
		}
		e.hooks = a.slots
		e.dirty = false
		e.builds++
		committed = append(committed, a)
	}
	for _, a := range committed {
		a.runEffects(a.layoutEffects)
	}
	for _, a := range committed {
		a.runEffects(a.passiveEffects)
	}
}

// Discard drops every attempt of the pass. Committed hook state is left
// untouched and rendered elements stay scheduled.
func (p *Pass) Discard() {
	p.end()
	for _, a := range p.attempts {
		e := a.element
		if e.mounted && e.dirty {
			p.owner.ScheduleBuild(e)
		}
	}
	p.attempts = nil
}

func (p *Pass) end() {
	if p.finished {
		panic("core: pass already finished")
	}
	p.finished = true
	p.rendering = false
	p.snapshots = nil
	p.owner.mu.Lock()
	if p.owner.current == p {
		p.owner.current = nil
	}
	p.owner.mu.Unlock()
}

// Capture returns the snapshot for key in the active render pass, calling
// read only the first time key is seen in the pass. Outside of a render
// pass it returns read() directly. key must be comparable; callers use the
// store handle.
func Capture[S any](owner *BuildOwner, key any, read func() S) S {
	owner.mu.Lock()
	p := owner.current
	owner.mu.Unlock()
	if p == nil || !p.rendering {
		return read()
	}
	if v, ok := p.snapshots[key]; ok {
		return v.(S)
	}
	v := read()
	if p.snapshots == nil {
		p.snapshots = make(map[any]any)
	}
	p.snapshots[key] = v
	return v
}
