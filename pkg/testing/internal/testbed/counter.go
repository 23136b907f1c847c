// Package testbed provides internal test components for the testing framework.
package testbed

import (
	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/selector"
	"github.com/go-drift/storesync/pkg/store"
)

// State is the store state used by the test components.
type State struct {
	Count int
	Label string
}

// NewStore returns a store holding State{Count: initial}.
func NewStore(initial int) *store.Store[*State] {
	return store.New(&State{Count: initial})
}

// Bump returns a copy of s with Count incremented.
func Bump(s *State) *State {
	next := *s
	next.Count++
	return &next
}

var countOf = selector.NewNamedFunc("count", func(s *State) int { return s.Count })

// Counter selects the count and records every committed-or-not render.
type Counter struct {
	Hook     selector.Hook[*State]
	Rendered []int
	Err      error
}

func (c *Counter) Build(ctx core.BuildContext) {
	n, err := selector.Select(ctx, c.Hook, countOf)
	if err != nil {
		c.Err = err
		return
	}
	c.Rendered = append(c.Rendered, n)
}

// Last returns the most recent rendered count, or -1.
func (c *Counter) Last() int {
	if len(c.Rendered) == 0 {
		return -1
	}
	return c.Rendered[len(c.Rendered)-1]
}

// Whole selects the entire state, which the identity check reports.
type Whole struct {
	Hook selector.Hook[*State]
}

var wholeState = selector.NewNamedFunc("whole", func(s *State) *State { return s })

func (w *Whole) Build(ctx core.BuildContext) {
	_, _ = selector.Select(ctx, w.Hook, wholeState)
}

// Panicking panics while building.
type Panicking struct {
	Value any
}

func (p Panicking) Build(core.BuildContext) {
	panic(p.Value)
}
