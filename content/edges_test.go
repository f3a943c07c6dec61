package content

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestEdgesRawIndexUniform(t *testing.T) {
	e := Edges{Uniform: true, N: 4, Low: 0, High: 4}
	tests := []struct {
		x    float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{0.5, 0},
		{1, 1},
		{3.9, 3},
		{4, 4},
		{100, 4},
	}
	for _, tt := range tests {
		qt.Check(t, qt.Equals(e.RawIndex(tt.x), tt.want), qt.Commentf("x=%v", tt.x))
	}
}

func TestEdgesRawIndexNonUniform(t *testing.T) {
	e := Edges{Values: []float64{0, 1, 4, 10}}
	e.N = len(e.Values) - 1
	tests := []struct {
		x    float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{0.9, 0},
		{1, 1},
		{3.9, 1},
		{4, 2},
		{9.9, 2},
		{10, 3},
	}
	for _, tt := range tests {
		qt.Check(t, qt.Equals(e.RawIndex(tt.x), tt.want), qt.Commentf("x=%v", tt.x))
	}
}

func TestEdgesClampAndWrap(t *testing.T) {
	e := Edges{Uniform: true, N: 3, Low: 0, High: 3}
	qt.Assert(t, qt.Equals(e.Clamp(-1), 0))
	qt.Assert(t, qt.Equals(e.Clamp(3), 2))
	qt.Assert(t, qt.Equals(e.Clamp(1), 1))

	qt.Assert(t, qt.Equals(e.Wrap(-1), 2))
	qt.Assert(t, qt.Equals(e.Wrap(3), 0))
	qt.Assert(t, qt.Equals(e.Wrap(4), 1))
}
