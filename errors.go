package hmm

import "errors"

// Sentinel errors returned by this package. Callers should compare with
// errors.Is, since they may be wrapped with additional context.
var (
	// ErrUnknownState is returned when add_transition (AddTransition)
	// references a state that was never added to the sub-model.
	ErrUnknownState = errors.New("hmm: unknown state")

	// ErrNotBaked is returned when a decoder is invoked on a model that
	// has not been baked, or whose bake was invalidated by Concatenate.
	ErrNotBaked = errors.New("hmm: model is not baked")

	// ErrEmptySequence is returned when a decoder receives a zero-length
	// sequence.
	ErrEmptySequence = errors.New("hmm: empty sequence")

	// ErrUnknownUnit is returned by SubsequenceViterbi when it cannot
	// find unit_start_<id> or unit_end_<id> in the repeat sub-model.
	ErrUnknownUnit = errors.New("hmm: unknown repeat unit")
)
