package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/storesync/pkg/core"
)

// UpdateSnapshotsEnv names the environment variable that makes MatchesFile
// rewrite golden files instead of comparing against them.
const UpdateSnapshotsEnv = "STORESYNC_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the element tree and the diagnostics raised so far.
type Snapshot struct {
	Tree        *ElementNode `json:"tree"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
}

// ElementNode represents a node in the serialized element tree.
type ElementNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Builds   int            `json:"builds"`
	Dirty    bool           `json:"dirty,omitempty"`
	Error    string         `json:"error,omitempty"`
	Children []*ElementNode `json:"children,omitempty"`
}

// CaptureSnapshot captures the current element tree.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.root != nil {
		snap.Tree = captureElementNode(t.root, &typeCounter{})
	}
	for _, d := range t.Diagnostics() {
		snap.Diagnostics = append(snap.Diagnostics, d.String())
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// STORESYNC_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and this snapshot.
// Returns empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return cmp.Diff(string(b), string(a))
}

// typeCounter assigns stable IDs like "Counter#0", "Counter#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureElementNode(e *core.Element, counter *typeCounter) *ElementNode {
	typeName := componentTypeName(e.Component())
	node := &ElementNode{
		ID:     counter.next(typeName),
		Type:   typeName,
		Builds: e.Builds(),
		Dirty:  e.IsDirty(),
	}
	if err := e.Err(); err != nil {
		node.Error = err.Error()
	}
	e.VisitChildren(func(child *core.Element) bool {
		node.Children = append(node.Children, captureElementNode(child, counter))
		return true
	})
	return node
}

func componentTypeName(c core.Component) string {
	t := reflect.TypeOf(c)
	if t == nil {
		return "Nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if len(name) > 0 {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
