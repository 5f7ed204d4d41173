package core

import "github.com/aerospike-community/dupres/pkg/dupres/types"

// Resolve compares two candidates under policy and reports which one
// wins. It is pure, total, and deterministic: no I/O, no allocation,
// and it never needs the original message a candidate came from.
func Resolve(policy types.Policy, left, right types.RecordMeta) types.Outcome {
	switch policy {
	case types.PolicyLUTThenGeneration:
		return resolveOrdered(left.LastUpdateTime, right.LastUpdateTime, uint64(left.Generation), uint64(right.Generation))
	case types.PolicyGenerationThenLUT:
		fallthrough
	default:
		return resolveOrdered(uint64(left.Generation), uint64(right.Generation), left.LastUpdateTime, right.LastUpdateTime)
	}
}

// resolveOrdered compares the primary field first, falling back to the
// secondary field to break ties.
func resolveOrdered(leftPrimary, rightPrimary, leftSecondary, rightSecondary uint64) types.Outcome {
	switch {
	case leftPrimary > rightPrimary:
		return types.OutcomeLeft
	case leftPrimary < rightPrimary:
		return types.OutcomeRight
	case leftSecondary > rightSecondary:
		return types.OutcomeLeft
	case leftSecondary < rightSecondary:
		return types.OutcomeRight
	default:
		return types.OutcomeEqual
	}
}
