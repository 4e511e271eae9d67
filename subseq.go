package hmm

import (
	"fmt"
	"math"
	"strings"
)

// locateUnitBounds finds the unit_start_<unitID> / unit_end_<unitID> dummy
// boundary states inside the repeat sub-model (sub_models[1]) and returns
// their global indices. ErrUnknownUnit if either is missing.
func (m *Model) locateUnitBounds(unitID string) (a, b int, err error) {
	if len(m.SubModels) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unitID)
	}
	repeat := m.SubModels[1]
	wantStart := "unit_start_" + unitID
	wantEnd := "unit_end_" + unitID

	a, b = -1, -1
	for _, s := range repeat.States {
		if strings.EqualFold(s.Name, wantStart) {
			a = m.StateToIndex[s]
		}
		if strings.EqualFold(s.Name, wantEnd) {
			b = m.StateToIndex[s]
		}
	}
	if a < 0 || b < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unitID)
	}
	return a, b, nil
}

// subVTable is SubsequenceViterbi's band-local analogue of vtable: rows are
// indexed 0..K-1 relative to the unit's start boundary, not by global state
// index.
type subVTable struct {
	k, cols int
	scores  []float64
	rowPtr  []int
	colPtr  []int
}

func newSubVTable(k, T int) *subVTable {
	size := k * (T + 1)
	t := &subVTable{k: k, cols: T + 1, scores: make([]float64, size), rowPtr: make([]int, size), colPtr: make([]int, size)}
	for i := range t.scores {
		t.scores[i] = math.Inf(-1)
		t.rowPtr[i] = -1
		t.colPtr[i] = -1
	}
	return t
}

func (t *subVTable) index(row, col int) int { return col*t.k + row }
func (t *subVTable) get(row, col int) float64 {
	return t.scores[t.index(row, col)]
}

func (t *subVTable) set(row, col int, v float64, fromRow, fromCol int) bool {
	i := t.index(row, col)
	cur := t.scores[i]
	if !math.IsInf(cur, -1) && v-cur <= relaxTolerance {
		return false
	}
	t.scores[i] = v
	t.rowPtr[i] = fromRow
	t.colPtr[i] = fromCol
	return true
}

// relaxSubCell is band-local relaxation: identical rule to relaxCell, but
// edge targets are translated to band-local coordinates and any neighbor
// outside [0, K) is skipped rather than followed out of band.
func (m *Model) relaxSubCell(t *subVTable, seq []byte, a, k, row, col int) {
	v := t.get(row, col)
	if math.IsInf(v, -1) {
		return
	}
	i := a + row
	s := m.States[i]
	if s.IsSilent() {
		for _, e := range m.edges[i] {
			j := e.to - a
			if j < 0 || j >= k {
				continue
			}
			t.set(j, col, v+math.Log(e.p), row, col)
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
		j := e.to - a
		if j < 0 || j >= k {
			continue
		}
		t.set(j, col+1, v+math.Log(e.p)+emLog, row, col)
	}
}

// SubsequenceViterbi finds the best path confined to the single repeat
// copy identified by unitID, entering at unit_start_<unitID> and leaving at
// unit_end_<unitID>. Unlike Viterbi, only one relaxation pass runs per
// column: a single unit's band is shallow enough that one ascending sweep
// fully relaxes its silent chain, unlike the full repeat band with several
// unit copies back to back.
//
// The returned log-probability is always 0, a preserved quirk rather than a
// bug to silently fix. Callers that need the actual achieved score should
// call SubsequenceViterbiScore instead.
func (m *Model) SubsequenceViterbi(seq []byte, unitID string) (float64, Path, error) {
	_, path, err := m.subsequenceViterbi(seq, unitID)
	if err != nil {
		return 0, nil, err
	}
	return 0, path, nil
}

// SubsequenceViterbiScore is SubsequenceViterbi with the real achieved
// log-probability in place of the literal 0 placeholder, for callers that
// want the actual score rather than API compatibility with the original.
func (m *Model) SubsequenceViterbiScore(seq []byte, unitID string) (float64, Path, error) {
	return m.subsequenceViterbi(seq, unitID)
}

func (m *Model) subsequenceViterbi(seq []byte, unitID string) (float64, Path, error) {
	if !m.IsBaked {
		return 0, nil, ErrNotBaked
	}
	if len(seq) == 0 {
		return 0, nil, ErrEmptySequence
	}

	a, b, err := m.locateUnitBounds(unitID)
	if err != nil {
		return 0, nil, err
	}
	k := b - a + 1
	T := len(seq)

	tbl := newSubVTable(k, T)
	tbl.scores[tbl.index(0, 0)] = 0

	for col := 0; col < T; col++ {
		for row := 0; row <= k-2; row++ {
			m.relaxSubCell(tbl, seq, a, k, row, col)
		}
	}

	// Final column: same one-pass relaxation, silent transitions only
	// fire since col == T is past the end of seq.
	for row := 0; row <= k-2; row++ {
		m.relaxSubCell(tbl, seq, a, k, row, T)
	}

	logp := tbl.get(k-1, T)
	path := subTraceback(tbl, m.States, a, k-1, T)
	return logp, path, nil
}

// subTraceback mirrors traceback but walks band-local rows, translating
// back to global indices as it prepends each step.
func subTraceback(tbl *subVTable, states []*State, a, endRow, endCol int) Path {
	path := make(Path, 0)
	row, col := endRow, endCol
	for {
		path = append(Path{{Index: a + row, State: states[a+row]}}, path...)
		if row == 0 && col == 0 {
			break
		}
		idx := tbl.index(row, col)
		v := tbl.scores[idx]
		pr, pc := tbl.rowPtr[idx], tbl.colPtr[idx]
		if pr < 0 {
			if math.IsInf(v, -1) {
				break
			}
			panic(fmt.Sprintf("BUG in subTraceback: cell (row %d, col %d) has score %v but no recorded predecessor", row, col, v))
		}
		row, col = pr, pc
	}
	return path
}
