package hmm

import (
	"errors"
	"strings"
	"testing"
)

// buildRepeatThreeUnits assembles a suffix + three-copy repeat model where
// each copy is a single Match state emitting 'A'.
func buildRepeatThreeUnits(t *testing.T) (*Model, map[string]*State) {
	t.Helper()
	m := NewModel("vntr")
	suffix := NewSubModel("suffix")
	must(t, suffix.AddTransition(suffix.Start, suffix.End, 1.0))
	m.SubModels = append(m.SubModels, suffix)

	repeat := NewSubModel("repeat")
	prev := repeat.Start
	byName := map[string]*State{}
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
		byName["unit_start_"+uid] = ds
		byName["unit_end_"+uid] = de
		byName["M0_"+uid] = match
	}
	must(t, repeat.AddTransition(prev, repeat.End, 1.0))
	m.Concatenate(repeat, 1.0)
	m.Bake(0, false)
	return m, byName
}

func TestSubsequenceViterbiConfinedToUnitBand(t *testing.T) {
	m, byName := buildRepeatThreeUnits(t)

	logp, path, err := m.SubsequenceViterbi([]byte("A"), "2")
	if err != nil {
		t.Fatalf("SubsequenceViterbi: %v", err)
	}
	if logp != 0 {
		t.Errorf("SubsequenceViterbi logp = %v, want the literal placeholder 0", logp)
	}
	if len(path) == 0 {
		t.Fatal("expected a non-empty path")
	}
	for _, step := range path {
		name := step.State.Name
		if !strings.HasSuffix(name, "_2") {
			t.Errorf("path state %q does not belong to unit 2", name)
		}
	}
	if path[0].State != byName["unit_start_2"] {
		t.Errorf("path must start at unit_start_2, got %q", path[0].State.Name)
	}
	if path[len(path)-1].State != byName["unit_end_2"] {
		t.Errorf("path must end at unit_end_2, got %q", path[len(path)-1].State.Name)
	}
}

func TestSubsequenceViterbiScoreReturnsRealLogp(t *testing.T) {
	m, _ := buildRepeatThreeUnits(t)
	logp, _, err := m.SubsequenceViterbiScore([]byte("A"), "1")
	if err != nil {
		t.Fatalf("SubsequenceViterbiScore: %v", err)
	}
	if logp != 0 {
		t.Errorf("logp = %v, want 0.0 (every edge probability 1)", logp)
	}
}

func TestSubsequenceViterbiUnknownUnit(t *testing.T) {
	m, _ := buildRepeatThreeUnits(t)
	if _, _, err := m.SubsequenceViterbi([]byte("A"), "9"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("err = %v, want ErrUnknownUnit", err)
	}
}

func TestSubsequenceViterbiNotBaked(t *testing.T) {
	m := NewModel("unbaked")
	m.SubModels = append(m.SubModels, NewSubModel("suffix"), NewSubModel("repeat"))
	if _, _, err := m.SubsequenceViterbi([]byte("A"), "1"); !errors.Is(err, ErrNotBaked) {
		t.Errorf("err = %v, want ErrNotBaked", err)
	}
}

func TestSubsequenceViterbiEmptySequence(t *testing.T) {
	m, _ := buildRepeatThreeUnits(t)
	if _, _, err := m.SubsequenceViterbi(nil, "1"); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("err = %v, want ErrEmptySequence", err)
	}
}
