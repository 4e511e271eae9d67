package hmm

import "math"

// alphabetSize is the width of a State's dense emission table. Emission
// symbols are byte-valued (spec: "Emission symbols are byte-valued"), so a
// table of this size can answer any lookup in constant time without a map.
const alphabetSize = 256

// State is a single node of the HMM: either a silent node (no emission,
// consumes no input symbol when traversed) or an emitting node carrying a
// distribution over the byte alphabet.
//
// A State is immutable from this package's perspective once it has been
// added to a SubModel; the same *State value may be shared between a
// SubModel's States slice and a baked Model's flat state list.
type State struct {
	// Name is the stable identity used both by the topology sorter
	// (see ParseStateKey) and by callers outside this package.
	Name string

	silent bool
	dist   [alphabetSize]float64
}

// NewState returns an emitting state with the given name and emission
// distribution. dist maps an emission symbol to a probability in [0, 1];
// symbols absent from dist have probability 0, not an error (a decoder
// skips zero-probability emissions rather than taking log(0) and failing).
func NewState(name string, dist map[byte]float64) *State {
	s := &State{Name: name}
	for sym, p := range dist {
		s.dist[sym] = p
	}
	return s
}

// NewSilentState returns a silent state with the given name. Silent states
// carry no emission distribution; traversing one consumes no input symbol.
func NewSilentState(name string) *State {
	return &State{Name: name, silent: true}
}

// IsSilent reports whether s consumes an input symbol when traversed.
func (s *State) IsSilent() bool {
	return s.silent
}

// Emit returns the linear-domain emission probability of sym under s's
// distribution. It is 0 for any silent state, and for any symbol not given
// a positive probability at construction time.
func (s *State) Emit(sym byte) float64 {
	if s.silent {
		return 0
	}
	return s.dist[sym]
}

// LogEmit returns log(s.Emit(sym)). If the emission probability is 0, the
// result is math.Inf(-1); this never panics, matching the requirement that
// a zero emission probability produce -Inf rather than an error.
func (s *State) LogEmit(sym byte) float64 {
	return math.Log(s.Emit(sym))
}

// SetEmit sets the emission probability of sym for an emitting state. It is
// a no-op on a silent state. Exposed mainly for callers/loaders building up
// a distribution incrementally.
func (s *State) SetEmit(sym byte, p float64) {
	if s.silent {
		return
	}
	s.dist[sym] = p
}
