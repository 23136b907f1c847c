package scenario

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// State is the store state of a scenario.
type State = map[string]any

func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	return strings.Split(path, ".")
}

// lookup returns the value at path, descending into maps by key and into
// lists by index. Missing entries yield nil.
func lookup(state State, path []string) any {
	var current any = state
	for _, seg := range path {
		switch v := current.(type) {
		case map[string]any:
			current = v[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil
			}
			current = v[i]
		default:
			return nil
		}
	}
	return current
}

// setPath returns a copy of state with value stored at path. Maps along the
// path are copied and missing ones created; everything else is shared with
// state, so untouched subtrees keep their identity.
func setPath(state State, path []string, value any) State {
	return assign(state, path, value, false).(State)
}

// deletePath returns a copy of state without the entry at path.
func deletePath(state State, path []string) State {
	return assign(state, path, nil, true).(State)
}

func assign(node any, path []string, value any, remove bool) any {
	seg := path[0]
	switch v := node.(type) {
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(v) {
			return v
		}
		next := slices.Clone(v)
		if len(path) == 1 {
			if remove {
				return slices.Delete(next, i, i+1)
			}
			next[i] = value
			return next
		}
		next[i] = assign(v[i], path[1:], value, remove)
		return next
	case map[string]any:
		next := maps.Clone(v)
		if next == nil {
			next = make(map[string]any)
		}
		if len(path) == 1 {
			if remove {
				delete(next, seg)
			} else {
				next[seg] = value
			}
			return next
		}
		child, ok := v[seg]
		if !ok || !isContainer(child) {
			if remove {
				return v
			}
			child = map[string]any{}
		}
		next[seg] = assign(child, path[1:], value, remove)
		return next
	default:
		if remove {
			return node
		}
		return assign(map[string]any{}, path, value, remove)
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
