package identity

import (
	"math"
	"reflect"
	"testing"
)

type point struct{ X, Y int }

type holder struct{ items []int }

func TestIsScalars(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", int32(1), int64(1), false},
		{"equal strings", "a", "a", true},
		{"both nil", nil, nil, true},
		{"one nil", nil, 0, false},
		{"NaN", math.NaN(), math.NaN(), true},
		{"equal structs", point{1, 2}, point{1, 2}, true},
		{"different structs", point{1, 2}, point{2, 1}, false},
	}
	for _, tt := range tests {
		if got := Is(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Is(%v, %v) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsReferences(t *testing.T) {
	m := map[string]int{"a": 1}
	m2 := map[string]int{"a": 1}
	if !Is(m, m) {
		t.Error("map should be identical to itself")
	}
	if Is(m, m2) {
		t.Error("distinct maps with equal content should not be identical")
	}

	s := []int{1, 2, 3}
	if !Is(s, s) {
		t.Error("slice should be identical to itself")
	}
	if Is(s, s[:2]) {
		t.Error("slices of different length should not be identical")
	}
	if Is(s, []int{1, 2, 3}) {
		t.Error("distinct slices should not be identical")
	}

	p := &point{1, 2}
	if !Is(p, p) {
		t.Error("pointer should be identical to itself")
	}
	if Is(p, &point{1, 2}) {
		t.Error("distinct pointers should not be identical")
	}
}

func TestValuesUnexportedFields(t *testing.T) {
	type inner struct{ n int }
	x, y := inner{1}, inner{1}
	if !Values(reflect.ValueOf(&x).Elem().Field(0), reflect.ValueOf(&y).Elem().Field(0)) {
		t.Error("unexported scalar fields with equal values should be identical")
	}
}

func TestIsUncomparable(t *testing.T) {
	h := holder{items: []int{1}}
	if !Is(h, h) {
		t.Error("struct holding a slice should be identical to itself")
	}
	if !Is(h, holder{items: h.items}) {
		t.Error("copies sharing the slice should be identical")
	}
	if Is(h, holder{items: []int{1}}) {
		t.Error("structs holding distinct slices should not be identical")
	}

	shared := []int{1}
	a := [1]any{shared}
	if !Is(a, [1]any{shared}) {
		t.Error("arrays holding the same slice reference should be identical")
	}
	if Is(a, [1]any{[]int{1}}) {
		t.Error("arrays holding distinct slices should not be identical")
	}
}

func TestIsNestedValueStructs(t *testing.T) {
	type view struct {
		Title string
		Items []string
		Tags  map[string]bool
	}
	type state struct {
		View  view
		Pages [2]view
	}

	items := []string{"a"}
	tags := map[string]bool{"x": true}
	s := state{View: view{Title: "t", Items: items, Tags: tags}}
	s.Pages[0] = s.View

	copied := s
	if !Is(s, copied) {
		t.Error("a value copy of nested state should be identical")
	}

	copied.Pages[1].Title = "other"
	if Is(s, copied) {
		t.Error("changing a nested scalar should break identity")
	}

	rebuilt := s
	rebuilt.View.Items = append([]string(nil), items...)
	if Is(s, rebuilt) {
		t.Error("replacing a nested slice should break identity")
	}
}
