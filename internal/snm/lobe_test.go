package snm

import "testing"

func TestSplitIndex(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want int
	}{
		{
			name: "single crossing",
			a:    []float64{3, 2, 1, 0, -1, -2},
			b:    []float64{0, 0, 0, 0.5, 0, 0},
			want: 2,
		},
		{
			name: "no crossing falls back to midpoint",
			a:    []float64{1, 1, 1, 1, 1},
			b:    []float64{0, 0, 0, 0, 0},
			want: 2,
		},
		{
			name: "identical curves have no crossing",
			a:    []float64{0.1, 0.5, 0.9, 1.3},
			b:    []float64{0.1, 0.5, 0.9, 1.3},
			want: 2,
		},
		{
			name: "three crossings picks the one nearest the middle",
			// d = + - - - + + - : changes at 0, 3, 5; middle is 3.
			a:    []float64{1, 0, 0, 0, 1, 1, 0},
			b:    []float64{0, 1, 1, 1, 0, 0, 1},
			want: 3,
		},
		{
			name: "equidistant crossings pick the first",
			// d = + + - - + : changes at 1 and 3, both one away from 2.
			a:    []float64{1, 1, 0, 0, 1},
			b:    []float64{0, 0, 1, 1, 0},
			want: 1,
		},
		{
			name: "zero counts with the positives",
			// d = - - 0 0 + : the only change is between index 1 and 2.
			a:    []float64{0, 0, 1, 1, 2},
			b:    []float64{1, 1, 1, 1, 1},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitIndex(tt.a, tt.b); got != tt.want {
				t.Errorf("SplitIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSplitLobes_ShareSplitSample(t *testing.T) {
	left, right := SplitLobes(11, 4)

	if left.Lo != 0 || left.Hi != 4 {
		t.Errorf("left = %+v, want [0, 4]", left)
	}
	if right.Lo != 4 || right.Hi != 10 {
		t.Errorf("right = %+v, want [4, 10]", right)
	}
	if left.Len()+right.Len() != 12 {
		t.Errorf("lobe lengths %d+%d, want 12 (split counted twice)", left.Len(), right.Len())
	}
}
