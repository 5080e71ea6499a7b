package mat33

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestInverse(t *testing.T) {
	testCases := []T{
		Identity(),
		{2, 0, 0, 0, 3, 0, 0, 0, 4},
		{0, 1, 0, 1, 0, 0, 0, 0, 1},
		{1, 2, 3, 0, 1, 4, 5, 6, 0},
	}

	for _, m := range testCases {
		got := MulMM(m, Inverse(m))
		if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("m * Inverse(m) != I for m=%v; diff (-got +want)\n%s", m, diff)
		}
	}
}

func TestTranspose(t *testing.T) {
	got := Transpose(T{1, 2, 3, 4, 5, 6, 7, 8, 9})
	want := T{1, 4, 7, 2, 5, 8, 3, 6, 9}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad transpose; diff (-got +want)\n%s", diff)
	}
}
