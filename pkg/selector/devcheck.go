package selector

import (
	"fmt"

	"github.com/go-drift/storesync/internal/identity"
	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/errors"
)

// CheckMode controls how often a development check runs.
type CheckMode int

const (
	// CheckOnce runs the check on the first selector call of a binding.
	CheckOnce CheckMode = iota
	// CheckAlways runs the check on every selector call.
	CheckAlways
	// CheckNever disables the check.
	CheckNever
)

func (m CheckMode) String() string {
	switch m {
	case CheckOnce:
		return "once"
	case CheckAlways:
		return "always"
	case CheckNever:
		return "never"
	default:
		return fmt.Sprintf("CheckMode(%d)", int(m))
	}
}

// ParseCheckMode parses "once", "always" or "never".
func ParseCheckMode(s string) (CheckMode, error) {
	switch s {
	case "once":
		return CheckOnce, nil
	case "always":
		return CheckAlways, nil
	case "never":
		return CheckNever, nil
	}
	return 0, fmt.Errorf("invalid check mode %q: must be once, always or never", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m CheckMode) MarshalText() ([]byte, error) {
	if m < CheckOnce || m > CheckNever {
		return nil, fmt.Errorf("invalid check mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CheckMode) UnmarshalText(text []byte) error {
	parsed, err := ParseCheckMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m CheckMode) due(firstRun bool) bool {
	return m == CheckAlways || (m == CheckOnce && firstRun)
}

// DevModeChecks selects the development checks applied to selectors.
// The zero value runs both checks once.
type DevModeChecks struct {
	// StabilityCheck calls the selector twice and warns when the results
	// differ under the binding's equality function.
	StabilityCheck CheckMode
	// IdentityFunctionCheck warns when the selector returns its whole input.
	IdentityFunctionCheck CheckMode
}

// PartialDevModeChecks overrides some of the provider-level checks for one
// binding. Nil fields keep the provider setting.
type PartialDevModeChecks struct {
	StabilityCheck        *CheckMode
	IdentityFunctionCheck *CheckMode
}

// Merge returns d with the non-nil fields of p applied.
func (d DevModeChecks) Merge(p PartialDevModeChecks) DevModeChecks {
	if p.StabilityCheck != nil {
		d.StabilityCheck = *p.StabilityCheck
	}
	if p.IdentityFunctionCheck != nil {
		d.IdentityFunctionCheck = *p.IdentityFunctionCheck
	}
	return d
}

// Mode returns a pointer to m, for filling PartialDevModeChecks.
func Mode(m CheckMode) *CheckMode {
	return &m
}

// checkedFunc wraps sel with the development checks. The checks only run
// while core.DebugMode is set and never change the returned selection.
func checkedFunc[S, T any](sel *Func[S, T], rec *bindingRecord[T], checks DevModeChecks) *Func[S, T] {
	return &Func[S, T]{
		name: rec.name,
		fn: func(state S) T {
			selected := sel.fn(state)
			if !core.DebugMode {
				return selected
			}

			if checks.StabilityCheck.due(rec.firstRun) {
				again := sel.fn(state)
				eq := rec.isEqual
				if eq == nil {
					eq = RefEqual[T]
				}
				if !eq(selected, again) {
					errors.Warn(&errors.Diagnostic{
						Kind:     errors.DiagnosticUnstableSelector,
						Selector: rec.name,
						Message: "Selector " + rec.name + " returned a different result when called with the same parameters. " +
							"This can lead to unnecessary rebuilds. Selectors that return a new reference (such as a map, slice or pointer) should be memoized.",
					})
				}
			}

			if checks.IdentityFunctionCheck.due(rec.firstRun) && identity.Is(selected, state) {
				errors.Warn(&errors.Diagnostic{
					Kind:     errors.DiagnosticIdentitySelector,
					Selector: rec.name,
					Message: "Selector " + rec.name + " returned the root state when called. " +
						"Selectors that return the entire state rebuild the binding whenever anything in the state changes.",
				})
			}

			rec.firstRun = false
			return selected
		},
	}
}
