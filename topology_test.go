package hmm

import "testing"

func TestParseStateKey(t *testing.T) {
	cases := []struct {
		name    string
		wantOK  bool
		wantTyp byte
		wantIdx int
		wantUID string
	}{
		{"M3_2", true, 'M', 3, "2"},
		{"D0_1", true, 'D', 0, "1"},
		{"I12_unitA", true, 'I', 12, "unitA"},
		{"start", false, 0, 0, ""},
		{"unit_start_1", false, 0, 0, ""},
	}
	for _, c := range cases {
		key, ok := ParseStateKey(c.name)
		if ok != c.wantOK {
			t.Errorf("ParseStateKey(%q) ok = %v, want %v", c.name, ok, c.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if key.Type != c.wantTyp || key.Index != c.wantIdx || key.UnitID != c.wantUID {
			t.Errorf("ParseStateKey(%q) = %+v, want {%c %d %s}", c.name, key, c.wantTyp, c.wantIdx, c.wantUID)
		}
	}
}

func TestSortTopologyNoOpOnTrivialSubModel(t *testing.T) {
	sm := NewSubModel("suffix")
	before := append([]*State{}, sm.States...)
	SortTopology(sm)
	if len(sm.States) != len(before) || sm.States[0] != before[0] || sm.States[1] != before[1] {
		t.Errorf("SortTopology should no-op on a 2-state sub-model")
	}
}

// buildUnit adds a dummy-start, D0/M0/I0/D1/M1/I1, and a dummy-end for the
// given unit id to sm, in a deliberately shuffled input order.
func buildUnit(sm *SubModel, unitID string) {
	sm.AddState(NewSilentState("dummy_end_" + unitID))
	sm.AddState(NewState("I1_"+unitID, map[byte]float64{'A': 1}))
	sm.AddState(NewState("M0_"+unitID, map[byte]float64{'A': 1}))
	sm.AddState(NewSilentState("D1_" + unitID))
	sm.AddState(NewSilentState("dummy_start_" + unitID))
	sm.AddState(NewState("I0_"+unitID, map[byte]float64{'A': 1}))
	sm.AddState(NewState("M1_"+unitID, map[byte]float64{'A': 1}))
	sm.AddState(NewSilentState("D0_" + unitID))
}

func TestSortTopologyOrdersUnitsAndSentinels(t *testing.T) {
	sm := NewSubModel("repeat")
	buildUnit(sm, "2")
	buildUnit(sm, "1")
	SortTopology(sm)

	if sm.States[0] != sm.Start {
		t.Fatalf("first state = %q, want Start", sm.States[0].Name)
	}
	if sm.States[len(sm.States)-1] != sm.End {
		t.Fatalf("last state = %q, want End", sm.States[len(sm.States)-1].Name)
	}

	// Units must sort lexicographically ascending ("1" before "2"), and
	// each unit's block must be contiguous.
	var sawUnit1, sawUnit2 bool
	lastUnit := ""
	for _, s := range sm.States[1 : len(sm.States)-1] {
		_, unitID := parseDummy(s.Name)
		if unitID == "" {
			if key, ok := ParseStateKey(s.Name); ok {
				unitID = key.UnitID
			}
		}
		if unitID == "2" {
			if sawUnit2 && lastUnit != "2" {
				t.Fatalf("unit blocks are not contiguous: saw unit 1 interleaved with unit 2")
			}
			sawUnit2 = true
		}
		if unitID == "1" {
			sawUnit1 = true
		}
		if lastUnit == "2" && unitID == "1" {
			t.Fatalf("unit 2 must not sort before unit 1 (got %q after unit 2)", s.Name)
		}
		lastUnit = unitID
	}
	if !sawUnit1 || !sawUnit2 {
		t.Fatalf("expected to see both units 1 and 2 in sorted output")
	}

	// Dummy start must precede dummy end within each unit.
	idx := map[string]int{}
	for i, s := range sm.States {
		idx[s.Name] = i
	}
	for _, unit := range []string{"1", "2"} {
		if idx["dummy_start_"+unit] >= idx["dummy_end_"+unit] {
			t.Errorf("unit %s: dummy_start must precede dummy_end", unit)
		}
	}
}

func TestSortTopologyByName(t *testing.T) {
	sm := NewSubModel("repeat")
	buildUnit(sm, "1")
	SortTopologyByName(sm)
	if sm.States[0] != sm.Start {
		t.Fatalf("first state = %q, want Start", sm.States[0].Name)
	}
	if sm.States[len(sm.States)-1] != sm.End {
		t.Fatalf("last state = %q, want End", sm.States[len(sm.States)-1].Name)
	}
	for i := 2; i < len(sm.States)-1; i++ {
		if sm.States[i-1].Name > sm.States[i].Name {
			t.Errorf("SortTopologyByName not ascending at %d: %q > %q", i, sm.States[i-1].Name, sm.States[i].Name)
		}
	}
}

func TestBakeIdempotentStateToIndex(t *testing.T) {
	m := NewModel("vntr")
	suffix := NewSubModel("suffix")
	m.SubModels = append(m.SubModels, suffix)
	repeat := NewSubModel("repeat")
	buildUnit(repeat, "1")
	buildUnit(repeat, "2")
	buildUnit(repeat, "3")
	m.Concatenate(repeat, 1.0)
	prefix := NewSubModel("prefix")
	m.Concatenate(prefix, 1.0)

	m.Bake(0, false)
	states1 := append([]*State{}, m.States...)
	idx1 := make(map[*State]int, len(m.StateToIndex))
	for s, i := range m.StateToIndex {
		idx1[s] = i
	}

	m.Bake(0, false)
	if len(states1) != len(m.States) {
		t.Fatalf("second bake changed state count: %d vs %d", len(states1), len(m.States))
	}
	for i, s := range m.States {
		if states1[i] != s {
			t.Errorf("Bake is not idempotent: states[%d] changed from %q to %q", i, states1[i].Name, s.Name)
		}
	}
	for s, i := range m.StateToIndex {
		if idx1[s] != i {
			t.Errorf("Bake is not idempotent: StateToIndex[%q] changed from %d to %d", s.Name, idx1[s], i)
		}
	}
}
