package hmm

import (
	"fmt"
	"math"
)

// sanityTolerance is the maximum allowed deviation of a state's outgoing
// transition sum from 1 before it is reported unbalanced.
const sanityTolerance = 1e-4

// UnbalancedState describes a state whose outgoing transitions don't sum to
// (approximately) 1.
type UnbalancedState struct {
	SubModel string
	State    string
	Sum      float64
}

func (u UnbalancedState) String() string {
	return fmt.Sprintf("%s: state %q sums to %.6f (want 1)", u.SubModel, u.State, u.Sum)
}

// CheckSanityOfTransitionProb verifies, for every sub-model and every state
// in it, that the state's outgoing transitions sum to 1 within
// sanityTolerance. It is purely advisory: no state is modified, and it is
// up to the caller to decide what to do with a non-empty report (refuse to
// bake, log a warning, fail a test).
//
// If verbose, every state is included in the report (labelled clean or
// not); otherwise only unbalanced states are returned.
//
// The final sub-model's End sentinel is exempt: it is the model's terminal
// sink and has no outgoing transitions by construction, so requiring its
// (nonexistent) outgoing probabilities to sum to 1 would flag every
// well-formed model. Every other state, including every other sub-model's
// End (which does carry the inter-sub-model bridge edge Concatenate wires
// in), is checked.
func (m *Model) CheckSanityOfTransitionProb(verbose bool) []UnbalancedState {
	var terminalEnd *State
	if n := len(m.SubModels); n > 0 {
		terminalEnd = m.SubModels[n-1].End
	}

	var report []UnbalancedState
	for _, sm := range m.SubModels {
		for _, s := range sm.States {
			if s == terminalEnd {
				continue
			}
			sum := 0.0
			for _, p := range sm.Out(s) {
				sum += p
			}
			clean := math.Abs(sum-1) <= sanityTolerance
			if !clean || verbose {
				report = append(report, UnbalancedState{SubModel: sm.Name, State: s.Name, Sum: sum})
			}
		}
	}
	return report
}

// IsClean reports whether CheckSanityOfTransitionProb(false) found nothing.
func (m *Model) IsClean() bool {
	return len(m.CheckSanityOfTransitionProb(false)) == 0
}
