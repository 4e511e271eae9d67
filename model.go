package hmm

// edge is a sparse outgoing transition, keyed by destination's global
// index. Built once at bake time so decoders never need to look up a
// transition by *State during the hot loop (Design Notes: "replace
// defaultdict-of-defaultdict with explicit sparse edges").
type edge struct {
	to int
	p  float64
}

// Model is the top-level container: an ordered sequence of sub-models
// concatenated into one flat, indexed state graph. Conventionally
// SubModels is [suffix, repeat, prefix]; the decoders only require that
// the repeat band live at index 1 (see RepeatBandRange).
type Model struct {
	Name      string
	SubModels []*SubModel

	Start *State
	End   *State

	// States is the flat, ordered concatenation of every sub-model's
	// States, assigned during Bake.
	States []*State

	// StateToIndex is the inverse of States: an injective mapping from
	// state to its position in States.
	StateToIndex map[*State]int

	// edges[i] holds state i's outgoing transitions as (target index,
	// probability) pairs with probability > 0.
	edges [][]edge

	// PassCount is the number of relaxation passes the full Viterbi
	// decoder performs over the repeat band per input column. Default 2.
	PassCount int

	IsBaked bool
}

// NewModel returns an empty, unbaked model with no sub-models yet.
func NewModel(name string) *Model {
	return &Model{Name: name, PassCount: 2}
}

// activeSubModel returns the sub-model that Model-level AddState/
// AddTransition calls should target: the last one appended, or a freshly
// created one if none exists yet. This is a convenience surface; the usual
// construction path builds SubModels directly and wires them together with
// Concatenate.
func (m *Model) activeSubModel() *SubModel {
	if len(m.SubModels) == 0 {
		m.SubModels = append(m.SubModels, NewSubModel(m.Name))
	}
	return m.SubModels[len(m.SubModels)-1]
}

// AddState appends s to the model's currently active sub-model.
func (m *Model) AddState(s *State) {
	m.activeSubModel().AddState(s)
}

// AddStates appends each of ss to the model's currently active sub-model.
func (m *Model) AddStates(ss ...*State) {
	sm := m.activeSubModel()
	for _, s := range ss {
		sm.AddState(s)
	}
}

// AddTransition sets the transition probability from -> to on the model's
// currently active sub-model, failing with ErrUnknownState if either state
// was never added.
func (m *Model) AddTransition(from, to *State, p float64) error {
	return m.activeSubModel().AddTransition(from, to, p)
}

// Concatenate appends other to the model's sub-model sequence. If a
// sub-model was already present, the bridging edge
// transitions[prev.End][other.Start] = p is written into the *previous*
// sub-model's transition table. Concatenate always clears IsBaked; the
// caller must Bake again before decoding.
func (m *Model) Concatenate(other *SubModel, p float64) {
	if n := len(m.SubModels); n > 0 {
		prev := m.SubModels[n-1]
		prev.SetTransition(prev.End, other.Start, p)
	}
	m.SubModels = append(m.SubModels, other)
	m.IsBaked = false
}

// RepeatBandRange returns the inclusive global-index range [start, end] of
// sub-model index 1 (conventionally the repeat sub-model), the band the
// full Viterbi decoder relaxes PassCount times (default 2) per column. It
// must only be called
// after Bake.
func (m *Model) RepeatBandRange() (start, end int) {
	return m.subModelRange(1)
}

// subModelRange returns the inclusive global-index range of sub-model
// subModelIdx. If the model has no such sub-model (e.g. a single-sub-model
// model being decoded, which has no index-1 repeat band), it returns an
// empty range positioned at the end of the flat state list (start > end),
// so callers that loop `for i := start; i <= end; i++` simply iterate zero
// times rather than indexing with a sentinel -1.
func (m *Model) subModelRange(subModelIdx int) (start, end int) {
	offset := 0
	for i, sm := range m.SubModels {
		if i == subModelIdx {
			return offset, offset + len(sm.States) - 1
		}
		offset += len(sm.States)
	}
	return offset, offset - 1
}

// Bake assembles the flat, indexed state graph: it sorts each sub-model's
// states into canonical topology order (or name order, if sortByName),
// concatenates them into Model.States with a contiguous global index per
// sub-model, merges every sub-model's transition table (including the
// inter-sub-model bridging edges Concatenate wrote) into a sparse edge
// list keyed by global index, and marks the model baked.
//
// readLength is accepted for parity with callers that know the sequence
// length up front and may want to presize their own decode tables; this
// package does not need it; it is not retained.
func (m *Model) Bake(readLength int, sortByName bool) {
	_ = readLength

	for _, sm := range m.SubModels {
		if sortByName {
			SortTopologyByName(sm)
		} else {
			SortTopology(sm)
		}
	}

	m.Start = m.SubModels[0].Start
	m.End = m.SubModels[len(m.SubModels)-1].End

	total := 0
	for _, sm := range m.SubModels {
		total += len(sm.States)
	}
	m.States = make([]*State, 0, total)
	m.StateToIndex = make(map[*State]int, total)
	for _, sm := range m.SubModels {
		for _, s := range sm.States {
			m.StateToIndex[s] = len(m.States)
			m.States = append(m.States, s)
		}
	}

	m.edges = make([][]edge, total)
	for _, sm := range m.SubModels {
		for from, out := range sm.transitions {
			fi, ok := m.StateToIndex[from]
			if !ok {
				continue
			}
			for to, p := range out {
				if p <= 0 {
					continue
				}
				ti, ok := m.StateToIndex[to]
				if !ok {
					continue
				}
				m.edges[fi] = append(m.edges[fi], edge{to: ti, p: p})
			}
		}
	}

	if m.PassCount <= 0 {
		m.PassCount = 2
	}
	m.IsBaked = true
}

// transitionProb returns the linear-domain probability of the edge from
// global index `from` to global index `to`, or 0 if no such edge exists.
// Edge lists are small and unsorted, so this is a linear scan; it is used
// only outside decode hot loops (Forward's termination step).
func (m *Model) transitionProb(from, to int) float64 {
	for _, e := range m.edges[from] {
		if e.to == to {
			return e.p
		}
	}
	return 0
}

// DenseTransitionMatrix returns the |States| x |States| matrix of linear
// transition probabilities. Unlisted (zero-probability / absent) edges are
// 0.
func (m *Model) DenseTransitionMatrix() [][]float64 {
	n := len(m.States)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		for _, e := range m.edges[i] {
			mat[i][e.to] = e.p
		}
	}
	return mat
}
