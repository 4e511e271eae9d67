package hmm

import (
	"fmt"
	"math"
)

// PathStep is one node of a decoded Viterbi path: the state's global index
// at bake time, paired with the State itself.
type PathStep struct {
	Index int
	State *State
}

// Path is an ordered sequence of PathSteps reconstructed by back-pointer
// traceback. For Viterbi it begins at (0, model.Start) and ends at
// (len(States)-1, model.End); for SubsequenceViterbi it begins at the
// repeat unit's start boundary and ends at its end boundary.
type Path []PathStep

// relaxTolerance is the strict-improvement margin a candidate must clear to
// overwrite a DP cell. A candidate within tolerance of the current best does
// not fire, so the back-pointer already recorded survives; this keeps ties
// between equally-scored paths from thrashing as later passes revisit a cell.
const relaxTolerance = 1e-10

// vtable is the (|states| x (T+1)) Viterbi dynamic-programming table: a
// log-domain score plus a back-pointer per cell, backed by flat 1-D slices
// indexed by a computed offset.
type vtable struct {
	n      int
	cols   int
	scores []float64
	rowPtr []int
	colPtr []int
}

func newVTable(n, T int) *vtable {
	size := n * (T + 1)
	t := &vtable{n: n, cols: T + 1, scores: make([]float64, size), rowPtr: make([]int, size), colPtr: make([]int, size)}
	for i := range t.scores {
		t.scores[i] = math.Inf(-1)
		t.rowPtr[i] = -1
		t.colPtr[i] = -1
	}
	return t
}

func (t *vtable) index(state, col int) int {
	return col*t.n + state
}

func (t *vtable) get(state, col int) float64 {
	return t.scores[t.index(state, col)]
}

// set overwrites cell (state, col) if v clears relaxTolerance over the
// current value there, recording (fromState, fromCol) as its back-pointer.
// It reports whether the update fired.
func (t *vtable) set(state, col int, v float64, fromState, fromCol int) bool {
	i := t.index(state, col)
	cur := t.scores[i]
	if !math.IsInf(cur, -1) && v-cur <= relaxTolerance {
		return false
	}
	t.scores[i] = v
	t.rowPtr[i] = fromState
	t.colPtr[i] = fromCol
	return true
}

// relaxCell applies the relaxation rule to source cell (i, col) for a full
// decode over the model's global edge list: silent states propagate within
// the same column; emitting states advance to col+1 and additionally pay
// the log-emission cost of seq[col] under the *source* state's distribution,
// not the target's.
func (m *Model) relaxCell(t *vtable, seq []byte, i, col int) {
	v := t.get(i, col)
	if math.IsInf(v, -1) {
		return
	}
	s := m.States[i]
	if s.IsSilent() {
		for _, e := range m.edges[i] {
			t.set(e.to, col, v+math.Log(e.p), i, col)
		}
		return
	}
	if col >= len(seq) {
		return
	}
	em := s.Emit(seq[col])
	if em <= 0 {
		return
	}
	emLog := math.Log(em)
	for _, e := range m.edges[i] {
		t.set(e.to, col+1, v+math.Log(e.p)+emLog, i, col)
	}
}

// Viterbi runs the full decoder over the baked, flat state graph: for each
// input column it relaxes the suffix band once, the repeat band m.PassCount
// times (default 2), and the prefix band once, in ascending state-index
// order within each band. The repeat band gets extra passes because a unit
// profile's silent delete states can chain several deep within one column;
// a single ascending sweep carries a silent chain through every hop that
// goes to a higher index, but each hop back to a lower index needs another
// pass. A final,
// silent-only closing column lets paths reach End without consuming more
// input.
func (m *Model) Viterbi(seq []byte) (float64, Path, error) {
	if !m.IsBaked {
		return 0, nil, ErrNotBaked
	}
	if len(seq) == 0 {
		return 0, nil, ErrEmptySequence
	}

	n := len(m.States)
	T := len(seq)
	startIdx, endIdx := 0, n-1
	rStart, rEnd := m.RepeatBandRange()

	tbl := newVTable(n, T)
	tbl.scores[tbl.index(startIdx, 0)] = 0

	passes := m.PassCount
	if passes <= 0 {
		passes = 2
	}

	for col := 0; col < T; col++ {
		for i := 0; i < rStart; i++ {
			m.relaxCell(tbl, seq, i, col)
		}
		for pass := 0; pass < passes; pass++ {
			for i := rStart; i <= rEnd; i++ {
				m.relaxCell(tbl, seq, i, col)
			}
		}
		for i := rEnd + 1; i < n; i++ {
			m.relaxCell(tbl, seq, i, col)
		}
	}

	// Final column: relax silent transitions from states[n-2] into End.
	// This only covers one hop from the second-to-last state rather than
	// every state that reaches End by a chain of silent transitions; a
	// model whose closing silent run is longer than one hop needs its
	// topology arranged so the last real hop into End lands exactly here.
	if n >= 2 {
		i := n - 2
		v := tbl.get(i, T)
		if !math.IsInf(v, -1) && m.States[i].IsSilent() {
			for _, e := range m.edges[i] {
				if e.to == endIdx {
					tbl.set(endIdx, T, v+math.Log(e.p), i, T)
				}
			}
		}
	}

	logp := tbl.get(endIdx, T)
	path := traceback(tbl, m.States, endIdx, T, startIdx, 0)
	return logp, path, nil
}

// traceback walks (row, col) back-pointers from (endState, endCol) to
// (startState, startCol) inclusive, prepending each visited cell so the
// returned Path runs forward from start to end.
func traceback(tbl *vtable, states []*State, endState, endCol, startState, startCol int) Path {
	path := make(Path, 0)
	i, col := endState, endCol
	for {
		path = append(Path{{Index: i, State: states[i]}}, path...)
		if i == startState && col == startCol {
			break
		}
		idx := tbl.index(i, col)
		v := tbl.scores[idx]
		pi, pc := tbl.rowPtr[idx], tbl.colPtr[idx]
		if pi < 0 {
			if math.IsInf(v, -1) {
				// no path reaches this cell; nothing more to trace.
				break
			}
			panic(fmt.Sprintf("BUG in traceback: cell (state %d, col %d) has score %v but no recorded predecessor", i, col, v))
		}
		i, col = pi, pc
	}
	return path
}
