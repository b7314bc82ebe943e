package numeric

import "testing"

func TestNextPow2(t *testing.T) {
	tests := []struct {
		n int
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{512, 512},
		{513, 1024},
		{1023, 1024},
		{1024, 1024},
	}
	for _, test := range tests {
		got := NextPow2(test.n)
		if got != test.want {
			t.Errorf("NextPow2(%d) = %d, want %d", test.n, got, test.want)
		}
		if !IsPow2(got) {
			t.Errorf("NextPow2(%d) = %d is not itself a power of two", test.n, got)
		}
		if got < test.n {
			t.Errorf("NextPow2(%d) = %d is less than n", test.n, got)
		}
	}
}

func TestNextPow2PanicsOnNonPositive(t *testing.T) {
	for _, n := range []int{0, -1, -512} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NextPow2(%d) did not panic", n)
				}
			}()
			NextPow2(n)
		}()
	}
}
