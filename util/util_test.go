package util

import (
	"reflect"
	"testing"
)

func TestCountSpans(t *testing.T) {
	pairs := [][2]int{{10, 2}, {20, 12}, {30, 22}, {7, 4}}
	got := CountSpans(pairs)
	want := map[int]int{8: 3, 3: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountSpans = %v, want %v", got, want)
	}
}

func TestRankByCount(t *testing.T) {
	counts := map[int]int{4: 2, 8: 5, 16: 2, 32: 1}
	got := RankByCount(counts)
	// Highest count first; ties broken by smaller span.
	want := []int{8, 4, 16, 32}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RankByCount = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	if v := Clamp(1.5, 0, 1); v != 1 {
		t.Errorf("Clamp(1.5, 0, 1) = %v", v)
	}
	if v := Clamp(-0.5, 0, 1); v != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v", v)
	}
	if v := Clamp(0.4, 0, 1); v != 0.4 {
		t.Errorf("Clamp(0.4, 0, 1) = %v", v)
	}
}
