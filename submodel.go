package hmm

import "fmt"

// SubModel is a self-contained collection of states with a start/end
// sentinel pair and a sparse transition table. Models are assembled by
// concatenating sub-models in order (conventionally suffix, repeat,
// prefix) and baking the result.
type SubModel struct {
	Name  string
	Start *State
	End   *State

	// States is the ordered sequence of states, including Start and End.
	// Bake (via the topology sorter) reorders this slice in place.
	States []*State

	// transitions maps a source state to its outgoing edges. A missing
	// entry, or a missing target within an entry, reads as probability 0.
	transitions map[*State]map[*State]float64
}

// NewSubModel returns an empty sub-model already containing its start and
// end sentinels (both silent), named "<name>_start" / "<name>_end".
func NewSubModel(name string) *SubModel {
	start := NewSilentState(name + "_start")
	end := NewSilentState(name + "_end")
	sm := &SubModel{
		Name:        name,
		Start:       start,
		End:         end,
		transitions: make(map[*State]map[*State]float64),
	}
	sm.AddState(start)
	sm.AddState(end)
	return sm
}

// AddState appends s to the sub-model's state list and initializes its
// outgoing-transition entry to empty (read as all-zero).
func (sm *SubModel) AddState(s *State) {
	sm.States = append(sm.States, s)
	if _, ok := sm.transitions[s]; !ok {
		sm.transitions[s] = make(map[*State]float64)
	}
}

// hasState reports whether s was added to this sub-model.
func (sm *SubModel) hasState(s *State) bool {
	_, ok := sm.transitions[s]
	return ok
}

// SetTransition sets transitions[a][b] = p unconditionally, creating a's
// outgoing-edge map if necessary. Unlike AddTransition, it does not require
// a or b to already be members of States.
func (sm *SubModel) SetTransition(a, b *State, p float64) {
	if sm.transitions == nil {
		sm.transitions = make(map[*State]map[*State]float64)
	}
	if _, ok := sm.transitions[a]; !ok {
		sm.transitions[a] = make(map[*State]float64)
	}
	sm.transitions[a][b] = p
}

// AddTransition sets transitions[a][b] = p, requiring both a and b to
// already be members of States. It returns ErrUnknownState, wrapped with
// the offending state's name, if either is not.
func (sm *SubModel) AddTransition(a, b *State, p float64) error {
	if !sm.hasState(a) {
		return fmt.Errorf("%w: %q", ErrUnknownState, a.Name)
	}
	if !sm.hasState(b) {
		return fmt.Errorf("%w: %q", ErrUnknownState, b.Name)
	}
	sm.SetTransition(a, b, p)
	return nil
}

// Transition returns the transition probability from a to b, or 0 if no
// such edge exists.
func (sm *SubModel) Transition(a, b *State) float64 {
	to, ok := sm.transitions[a]
	if !ok {
		return 0
	}
	return to[b]
}

// Out returns a's outgoing edges as a read-only view: nil if a has no
// recorded outgoing edges.
func (sm *SubModel) Out(a *State) map[*State]float64 {
	return sm.transitions[a]
}
