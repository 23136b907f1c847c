package selector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/storesync/pkg/core"
	"github.com/go-drift/storesync/pkg/errors"
)

func collectDiagnostics(t *testing.T) *errors.Collector {
	t.Helper()
	c := &errors.Collector{}
	prev := errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return c
}

func TestParseCheckMode(t *testing.T) {
	for _, want := range []CheckMode{CheckOnce, CheckAlways, CheckNever} {
		got, err := ParseCheckMode(want.String())
		if err != nil {
			t.Fatalf("ParseCheckMode(%q): %v", want.String(), err)
		}
		if got != want {
			t.Errorf("ParseCheckMode(%q) = %v, want %v", want.String(), got, want)
		}
	}
	if _, err := ParseCheckMode("sometimes"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if got := CheckMode(7).String(); got != "CheckMode(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestCheckModeYAML(t *testing.T) {
	var cfg struct {
		Stability CheckMode `yaml:"stability"`
		Identity  CheckMode `yaml:"identity"`
	}
	if err := yaml.Unmarshal([]byte("stability: always\nidentity: never\n"), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Stability != CheckAlways || cfg.Identity != CheckNever {
		t.Errorf("decoded %v/%v, want always/never", cfg.Stability, cfg.Identity)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if diff := cmp.Diff("stability: always\nidentity: never\n", string(out)); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}

	if err := yaml.Unmarshal([]byte("stability: maybe\n"), &cfg); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestDevModeChecksMerge(t *testing.T) {
	base := DevModeChecks{StabilityCheck: CheckOnce, IdentityFunctionCheck: CheckAlways}

	if got := base.Merge(PartialDevModeChecks{}); got != base {
		t.Errorf("empty override changed checks: %+v", got)
	}

	got := base.Merge(PartialDevModeChecks{StabilityCheck: Mode(CheckNever)})
	want := DevModeChecks{StabilityCheck: CheckNever, IdentityFunctionCheck: CheckAlways}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}

func TestCheckedFuncOnce(t *testing.T) {
	c := collectDiagnostics(t)
	sel := NewFunc(func(s *snapshot) []int { return copyItems(s) })
	rec := &bindingRecord[[]int]{name: "items", trace: NopTrace{}, firstRun: true}
	checked := checkedFunc(sel, rec, DevModeChecks{})

	s := &snapshot{items: []int{1}}
	for i := 0; i < 5; i++ {
		checked.Select(s)
	}

	if n := c.Count(errors.DiagnosticUnstableSelector); n != 1 {
		t.Errorf("unstable selector warnings = %d, want 1", n)
	}
	if c.Diagnostics[0].Selector != "items" {
		t.Errorf("diagnostic selector = %q, want items", c.Diagnostics[0].Selector)
	}
}

func TestCheckedFuncUsesBindingEquality(t *testing.T) {
	c := collectDiagnostics(t)
	sel := NewFunc(copyItems)
	rec := &bindingRecord[[]int]{
		name:     "items",
		trace:    NopTrace{},
		firstRun: true,
		isEqual:  ShallowEqual[[]int],
	}
	checked := checkedFunc(sel, rec, DevModeChecks{StabilityCheck: CheckAlways})

	checked.Select(&snapshot{items: []int{1, 2}})
	checked.Select(&snapshot{items: []int{3}})

	if len(c.Diagnostics) != 0 {
		t.Errorf("stable selector under its equality produced %d warnings", len(c.Diagnostics))
	}
}

func TestCheckedFuncIdentity(t *testing.T) {
	c := collectDiagnostics(t)
	sel := NewFunc(func(s *snapshot) *snapshot { return s })
	rec := &bindingRecord[*snapshot]{name: "whole", trace: NopTrace{}, firstRun: true}
	checked := checkedFunc(sel, rec, DevModeChecks{IdentityFunctionCheck: CheckAlways})

	checked.Select(&snapshot{})
	checked.Select(&snapshot{})

	if n := c.Count(errors.DiagnosticIdentitySelector); n != 2 {
		t.Errorf("identity warnings = %d, want 2", n)
	}
	if n := c.Count(errors.DiagnosticUnstableSelector); n != 0 {
		t.Errorf("unstable warnings = %d, want 0", n)
	}
}

func TestCheckedFuncDisabledOutsideDebug(t *testing.T) {
	c := collectDiagnostics(t)
	core.SetDebugMode(false)
	t.Cleanup(func() { core.SetDebugMode(true) })

	calls := 0
	sel := NewFunc(func(s *snapshot) []int {
		calls++
		return copyItems(s)
	})
	rec := &bindingRecord[[]int]{name: "items", trace: NopTrace{}, firstRun: true}
	checked := checkedFunc(sel, rec, DevModeChecks{StabilityCheck: CheckAlways})

	checked.Select(&snapshot{})

	if calls != 1 {
		t.Errorf("projection calls = %d, want 1", calls)
	}
	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics outside debug mode: %d", len(c.Diagnostics))
	}
}
