package hmm

import (
	"errors"
	"math"
	"testing"
)

func TestViterbiTwoStateEmitter(t *testing.T) {
	m, a, b := twoStateEmitterModel(t)
	logp, path, err := m.Viterbi([]byte("xy"))
	if err != nil {
		t.Fatalf("Viterbi: %v", err)
	}
	if math.Abs(logp-0.0) > 1e-12 {
		t.Errorf("logp = %v, want 0.0", logp)
	}
	wantNames := []string{m.Start.Name, a.Name, b.Name, m.End.Name}
	if len(path) != len(wantNames) {
		t.Fatalf("path length = %d, want %d (%v)", len(path), len(wantNames), pathStateNames(path))
	}
	for i, name := range wantNames {
		if path[i].State.Name != name {
			t.Errorf("path[%d] = %q, want %q", i, path[i].State.Name, name)
		}
		if path[i].Index != m.StateToIndex[path[i].State] {
			t.Errorf("path[%d].Index = %d, want %d", i, path[i].Index, m.StateToIndex[path[i].State])
		}
	}
	if path[0].Index != 0 {
		t.Errorf("path must start at global index 0, got %d", path[0].Index)
	}
	if path[len(path)-1].Index != len(m.States)-1 {
		t.Errorf("path must end at global index %d, got %d", len(m.States)-1, path[len(path)-1].Index)
	}
}

func TestViterbiEmptySequence(t *testing.T) {
	m, _, _ := twoStateEmitterModel(t)
	if _, _, err := m.Viterbi(nil); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Viterbi(nil): err = %v, want ErrEmptySequence", err)
	}
}

func TestViterbiNotBaked(t *testing.T) {
	m := NewModel("unbaked")
	m.SubModels = append(m.SubModels, NewSubModel("band"))
	if _, _, err := m.Viterbi([]byte("x")); !errors.Is(err, ErrNotBaked) {
		t.Errorf("Viterbi on unbaked model: err = %v, want ErrNotBaked", err)
	}
}

// TestViterbiTrivialTwoStateModel covers a model with only Start and End,
// edge start->end probability 1. EmptySequence is
// raised only for a zero-length read; for any non-empty read the decoder
// returns -Inf, since reaching End without consuming input symbols is only
// possible at column 0, not at the closing column T>0.
func TestViterbiTrivialTwoStateModel(t *testing.T) {
	m := NewModel("trivial")
	sm := NewSubModel("only")
	must(t, sm.AddTransition(sm.Start, sm.End, 1.0))
	m.SubModels = append(m.SubModels, sm)
	m.Bake(0, false)

	if _, _, err := m.Viterbi(nil); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Viterbi(nil): err = %v, want ErrEmptySequence", err)
	}
	logp, _, err := m.Viterbi([]byte("x"))
	if err != nil {
		t.Fatalf("Viterbi: %v", err)
	}
	if !math.IsInf(logp, -1) {
		t.Errorf("logp = %v, want -Inf (no way to consume a symbol in this model)", logp)
	}
}

func TestViterbiUnreachableSequenceIsNegInf(t *testing.T) {
	m, _, _ := twoStateEmitterModel(t)
	logp, _, err := m.Viterbi([]byte("xx"))
	if err != nil {
		t.Fatalf("Viterbi: %v", err)
	}
	if !math.IsInf(logp, -1) {
		t.Errorf("logp = %v, want -Inf (no path emits \"xx\")", logp)
	}
}

// TestViterbiRepeatBandThreeUnits builds a trivial suffix sub-model
// concatenated with a three-copy repeat sub-model (each copy a single
// Match state that emits 'A'), and checks that the full Viterbi decoder
// finds the path through all three copies for "AAA". The repeat sub-model
// is deliberately last (model.End == repeat.End) so the final copy's
// silent unit-end state lands exactly at states[n-2], the one state the
// decoder's final-column step relaxes into End (see DESIGN.md's note on
// that literal, preserved quirk).
func TestViterbiRepeatBandThreeUnits(t *testing.T) {
	m := NewModel("vntr")
	suffix := NewSubModel("suffix")
	must(t, suffix.AddTransition(suffix.Start, suffix.End, 1.0))
	m.SubModels = append(m.SubModels, suffix)

	repeat := NewSubModel("repeat")
	prev := repeat.Start
	var matches []*State
	for c := 1; c <= 3; c++ {
		uid := string(rune('0' + c))
		ds := NewSilentState("unit_start_" + uid)
		de := NewSilentState("unit_end_" + uid)
		match := NewState("M0_"+uid, map[byte]float64{'A': 1.0})
		repeat.AddState(ds)
		repeat.AddState(match)
		repeat.AddState(de)
		must(t, repeat.AddTransition(prev, ds, 1.0))
		must(t, repeat.AddTransition(ds, match, 1.0))
		must(t, repeat.AddTransition(match, de, 1.0))
		prev = de
		matches = append(matches, match)
	}
	must(t, repeat.AddTransition(prev, repeat.End, 1.0))
	m.Concatenate(repeat, 1.0)
	m.Bake(0, false)

	logp, path, err := m.Viterbi([]byte("AAA"))
	if err != nil {
		t.Fatalf("Viterbi: %v", err)
	}
	if math.Abs(logp-0.0) > 1e-9 {
		t.Errorf("logp = %v, want 0.0 (every edge probability 1)", logp)
	}
	for _, match := range matches {
		found := false
		for _, step := range path {
			if step.State == match {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("path did not pass through %q", match.Name)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func pathStateNames(path Path) []string {
	names := make([]string, len(path))
	for i, s := range path {
		names[i] = s.State.Name
	}
	return names
}
