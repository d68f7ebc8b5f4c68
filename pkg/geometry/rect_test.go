package geometry

import (
	"math"
	"testing"
)

func TestRectDimensions(t *testing.T) {
	tests := []struct {
		name                string
		rect                Rect
		width, height, area float64
	}{
		{"Unit", NewRect(0, 0, 1, 1), 1, 1, 1},
		{"Offset", NewRect(5, 10, 3, 4), 3, 4, 12},
		{"Empty", Rect{}, 0, 0, 0},
		{"Inverted", Rect{LX: 2, LY: 2, UX: 1, UY: 1}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); got != tt.width {
				t.Errorf("Width() = %v, want %v", got, tt.width)
			}
			if got := tt.rect.Height(); got != tt.height {
				t.Errorf("Height() = %v, want %v", got, tt.height)
			}
			if got := tt.rect.Area(); got != tt.area {
				t.Errorf("Area() = %v, want %v", got, tt.area)
			}
		})
	}
}

func TestRectOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"Disjoint", NewRect(0, 0, 1, 1), NewRect(5, 5, 1, 1), 0},
		{"Touching", NewRect(0, 0, 1, 1), NewRect(1, 0, 1, 1), 0},
		{"Quarter", NewRect(0, 0, 2, 2), NewRect(1, 1, 2, 2), 1},
		{"Nested", NewRect(0, 0, 4, 4), NewRect(1, 1, 2, 2), 4},
		{"Identical", NewRect(0, 0, 3, 3), NewRect(0, 0, 3, 3), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlap(tt.b); got != tt.want {
				t.Errorf("Overlap() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlap(tt.a); got != tt.want {
				t.Errorf("Overlap() reversed = %v, want %v", got, tt.want)
			}
			if (tt.want > 0) != tt.a.Intersects(tt.b) {
				t.Errorf("Intersects() = %v, want %v", tt.a.Intersects(tt.b), tt.want > 0)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	outer := NewRect(0, 0, 10, 10)
	if !outer.Contains(NewRect(2, 2, 3, 3)) {
		t.Error("Contains() = false for nested rect")
	}
	if !outer.Contains(outer) {
		t.Error("Contains() = false for identical rect")
	}
	if outer.Contains(NewRect(8, 8, 5, 5)) {
		t.Error("Contains() = true for overflowing rect")
	}
}

func TestRectDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"Overlapping", NewRect(0, 0, 2, 2), NewRect(1, 1, 2, 2), 0},
		{"HorizontalGap", NewRect(0, 0, 1, 1), NewRect(3, 0, 1, 1), 2},
		{"VerticalGap", NewRect(0, 0, 1, 1), NewRect(0, 4, 1, 1), 3},
		{"Diagonal", NewRect(0, 0, 1, 1), NewRect(3, 4, 1, 1), 2 + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Distance(tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	got := NewRect(0, 0, 1, 1).Union(NewRect(3, 4, 1, 1))
	want := Rect{LX: 0, LY: 0, UX: 4, UY: 5}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}
