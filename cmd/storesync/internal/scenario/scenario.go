// Package scenario loads YAML scenarios that drive bindings against a store
// and reports what every binding rendered.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/storesync/pkg/selector"
)

// Step operations.
const (
	OpSet     = "set"
	OpDelete  = "delete"
	OpFlush   = "flush"
	OpAttempt = "attempt"
	OpCommit  = "commit"
	OpDiscard = "discard"
	OpHydrate = "hydrate"
	OpUnmount = "unmount"
)

// Equality policies a binding may name.
const (
	EqualityRef     = "ref"
	EqualityShallow = "shallow"
)

// Scenario is a store, the bindings reading it and the steps applied to it.
// Bindings are mounted before the first step and render on the first flush
// or attempt.
type Scenario struct {
	Name  string         `yaml:"name"`
	State map[string]any `yaml:"state"`
	// ServerState is the snapshot used by bindings mounted while hydrating.
	ServerState map[string]any `yaml:"serverState,omitempty"`
	Checks      Checks         `yaml:"checks,omitempty"`
	Bindings    []Binding      `yaml:"bindings"`
	Steps       []Step         `yaml:"steps"`
}

// Checks overrides the configured development checks for one scenario.
type Checks struct {
	Stability        *selector.CheckMode `yaml:"stability,omitempty"`
	IdentityFunction *selector.CheckMode `yaml:"identityFunction,omitempty"`
}

// Binding selects the value at a dot-separated path. "." selects the whole
// state.
type Binding struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Equality string `yaml:"equality,omitempty"`
}

// Step is one operation of a scenario.
type Step struct {
	Op   string `yaml:"op"`
	Path string `yaml:"path,omitempty"`
	// Value is the new value for set, and the hydrating flag for hydrate.
	Value any `yaml:"value,omitempty"`
	// Binding restricts attempt and names the target of unmount.
	Binding string `yaml:"binding,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidationError lists every problem found in a scenario.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid scenario: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid scenario: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// Validate checks bindings and simulates the step sequence: a commit or
// discard needs an open pass, flush and attempt need none, and the
// scenario must not end with a pass open.
func (s *Scenario) Validate() error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s.Name == "" {
		report("name is required")
	}
	if len(s.Bindings) == 0 {
		report("at least one binding is required")
	}

	names := make(map[string]bool)
	for i, b := range s.Bindings {
		switch {
		case b.Name == "":
			report("bindings[%d]: name is required", i)
		case names[b.Name]:
			report("bindings[%d]: duplicate name %q", i, b.Name)
		}
		names[b.Name] = true
		if b.Path == "" {
			report("bindings[%d]: path is required (use \".\" for the whole state)", i)
		}
		if _, err := equalityOption(b.Equality); err != nil {
			report("bindings[%d]: %v", i, err)
		}
	}

	open := false
	unmounted := make(map[string]bool)
	for i, step := range s.Steps {
		switch step.Op {
		case OpSet, OpDelete:
			if step.Path == "" || step.Path == "." {
				report("steps[%d]: %s needs a path below the root", i, step.Op)
			}
		case OpFlush:
			if open {
				report("steps[%d]: flush while a pass is open", i)
			}
		case OpAttempt:
			if open {
				report("steps[%d]: attempt while a pass is open", i)
			}
			if step.Binding != "" && !names[step.Binding] {
				report("steps[%d]: unknown binding %q", i, step.Binding)
			}
			open = true
		case OpCommit, OpDiscard:
			if !open {
				report("steps[%d]: %s without an open pass", i, step.Op)
			}
			open = false
		case OpHydrate:
			if _, ok := hydrateFlag(step.Value); !ok {
				report("steps[%d]: hydrate value must be a boolean", i)
			}
		case OpUnmount:
			switch {
			case !names[step.Binding]:
				report("steps[%d]: unknown binding %q", i, step.Binding)
			case unmounted[step.Binding]:
				report("steps[%d]: binding %q is already unmounted", i, step.Binding)
			case open:
				report("steps[%d]: unmount while a pass is open", i)
			}
			unmounted[step.Binding] = true
		default:
			report("steps[%d]: unknown op %q", i, step.Op)
		}
	}
	if open {
		report("scenario ends with an open pass")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func equalityOption(name string) (selector.Option, error) {
	switch name {
	case "", EqualityRef:
		return nil, nil
	case EqualityShallow:
		return selector.WithEquality(selector.ShallowEqual[any]), nil
	}
	return nil, fmt.Errorf("unknown equality %q: must be ref or shallow", name)
}

func hydrateFlag(v any) (bool, bool) {
	if v == nil {
		return true, true
	}
	b, ok := v.(bool)
	return b, ok
}
