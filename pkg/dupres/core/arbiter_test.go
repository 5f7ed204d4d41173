package core

import (
	"testing"

	"github.com/aerospike-community/dupres/pkg/dupres/types"
)

func TestResolveGenerationThenLUT(t *testing.T) {
	cases := []struct {
		name  string
		left  types.RecordMeta
		right types.RecordMeta
		want  types.Outcome
	}{
		{"higher generation wins", types.RecordMeta{Generation: 5, LastUpdateTime: 1}, types.RecordMeta{Generation: 3, LastUpdateTime: 100}, types.OutcomeLeft},
		{"lower generation loses", types.RecordMeta{Generation: 3, LastUpdateTime: 100}, types.RecordMeta{Generation: 5, LastUpdateTime: 1}, types.OutcomeRight},
		{"tie broken by LUT", types.RecordMeta{Generation: 4, LastUpdateTime: 50}, types.RecordMeta{Generation: 4, LastUpdateTime: 10}, types.OutcomeLeft},
		{"fully equal", types.RecordMeta{Generation: 4, LastUpdateTime: 50}, types.RecordMeta{Generation: 4, LastUpdateTime: 50}, types.OutcomeEqual},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Resolve(types.PolicyGenerationThenLUT, c.left, c.right); got != c.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", c.left, c.right, got, c.want)
			}
		})
	}
}

func TestResolveLUTThenGeneration(t *testing.T) {
	left := types.RecordMeta{Generation: 1, LastUpdateTime: 100}
	right := types.RecordMeta{Generation: 99, LastUpdateTime: 50}
	if got := Resolve(types.PolicyLUTThenGeneration, left, right); got != types.OutcomeLeft {
		t.Errorf("Resolve = %v, want OutcomeLeft (LUT dominates generation under this policy)", got)
	}
	if got := Resolve(types.PolicyGenerationThenLUT, left, right); got != types.OutcomeRight {
		t.Errorf("Resolve = %v, want OutcomeRight under the default policy", got)
	}
}

func TestResolveIsSymmetric(t *testing.T) {
	left := types.RecordMeta{Generation: 7, LastUpdateTime: 200}
	right := types.RecordMeta{Generation: 2, LastUpdateTime: 900}
	fwd := Resolve(types.PolicyGenerationThenLUT, left, right)
	rev := Resolve(types.PolicyGenerationThenLUT, right, left)
	if fwd != types.OutcomeLeft || rev != types.OutcomeRight {
		t.Errorf("Resolve not symmetric: fwd=%v rev=%v", fwd, rev)
	}
}
