// Package modelio loads a YAML tandem-repeat model description into the
// hmm.Model sub-models the core decoders operate on. Model construction is
// deliberately a caller-side concern: the loader populates State emission
// distributions and hands fully-built SubModels to hmm, never reaching into
// the core's decoding internals.
package modelio

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	hmm "github.com/berntpopp/adVNTR"
)

// ErrInvalidModelSpec wraps every structural problem the loader finds in a
// YAML model document: an out-of-range inter-sub-model probability, a
// dangling transition target, a missing per-position emission table. A
// transition key absent from the repeat template is not an error: that
// edge is simply not wired. It is never raised for bad
// emission *values* in range; the loader validates structure, not whether
// distributions are properly normalized, which stays the caller's job.
var ErrInvalidModelSpec = fmt.Errorf("modelio: invalid model spec")

// StateSpec describes one named state in a flanking band (suffix or
// prefix). A state with no Emit entries is silent.
type StateSpec struct {
	Name        string             `yaml:"name"`
	Silent      bool               `yaml:"silent"`
	Emit        map[string]float64 `yaml:"emit"`
	Transitions map[string]float64 `yaml:"transitions"`
}

// BandSpec describes a flanking (suffix or prefix) sub-model: a flat list
// of states plus the outgoing transitions from the band's own start
// sentinel, keyed by target state name. "start" and "end" are reserved
// names referring to the band's sentinels.
type BandSpec struct {
	States           []StateSpec        `yaml:"states"`
	StartTransitions map[string]float64 `yaml:"start_transitions"`
}

// RepeatSpec describes the repeat band: Copies instances of a UnitLength-
// position unit profile, each position holding a Delete/Match/Insert
// triple. Transitions is a template of *relative* transition probabilities
// applied identically at every position of every copy (recognized keys:
// "start_D", "start_M", "start_I", "D_D", "D_M", "M_D", "M_M", "M_I",
// "I_I", "I_M", "D_end", "M_end", "I_end", "unit_p", the probability of
// advancing from one copy's dummy end into the next copy's dummy start).
type RepeatSpec struct {
	UnitLength  int                  `yaml:"unit_length"`
	Copies      int                  `yaml:"copies"`
	MatchEmit   []map[string]float64 `yaml:"match_emit"`
	InsertEmit  []map[string]float64 `yaml:"insert_emit"`
	Transitions map[string]float64   `yaml:"transitions"`
}

// ModelSpec is the parsed form of a YAML tandem-repeat model document.
type ModelSpec struct {
	Name                     string     `yaml:"name"`
	Alphabet                 string     `yaml:"alphabet"`
	Suffix                   BandSpec   `yaml:"suffix"`
	Repeat                   RepeatSpec `yaml:"repeat"`
	Prefix                   BandSpec   `yaml:"prefix"`
	InterSubModelTransitions [2]float64 `yaml:"inter_submodel_transitions"`
}

// Load reads and parses a YAML model document from path.
func Load(path string) (*ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelio: read %s: %w", path, err)
	}
	var spec ModelSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("modelio: parse %s: %w", path, err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *ModelSpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidModelSpec)
	}
	if s.Repeat.Copies <= 0 {
		return fmt.Errorf("%w: repeat.copies must be positive", ErrInvalidModelSpec)
	}
	if s.Repeat.UnitLength <= 0 {
		return fmt.Errorf("%w: repeat.unit_length must be positive", ErrInvalidModelSpec)
	}
	for _, p := range s.InterSubModelTransitions {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: inter_submodel_transitions entries must be in [0,1], got %v", ErrInvalidModelSpec, p)
		}
	}
	return nil
}

// Build turns the parsed spec into three concatenated, baked SubModels
// (suffix, repeat, prefix) already wired with the YAML's inter-sub-model
// transition probabilities.
func (s *ModelSpec) Build() (*hmm.Model, error) {
	suffix, err := buildBand("suffix", &s.Suffix)
	if err != nil {
		return nil, err
	}
	repeat, err := buildRepeat(&s.Repeat)
	if err != nil {
		return nil, err
	}
	prefix, err := buildBand("prefix", &s.Prefix)
	if err != nil {
		return nil, err
	}

	m := &hmm.Model{Name: s.Name, SubModels: []*hmm.SubModel{suffix}}
	m.Concatenate(repeat, s.InterSubModelTransitions[0])
	m.Concatenate(prefix, s.InterSubModelTransitions[1])
	m.Bake(0, false)
	return m, nil
}

func buildBand(name string, spec *BandSpec) (*hmm.SubModel, error) {
	sm := hmm.NewSubModel(name)
	byName := map[string]*hmm.State{"start": sm.Start, "end": sm.End}

	for _, st := range spec.States {
		if st.Name == "" {
			return nil, fmt.Errorf("%w: %s band has an unnamed state", ErrInvalidModelSpec, name)
		}
		if _, dup := byName[st.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate state name %q in %s band", ErrInvalidModelSpec, st.Name, name)
		}
		var s *hmm.State
		if st.Silent || len(st.Emit) == 0 {
			s = hmm.NewSilentState(st.Name)
		} else {
			dist, err := parseEmit(st.Emit)
			if err != nil {
				return nil, fmt.Errorf("%w: state %q: %v", ErrInvalidModelSpec, st.Name, err)
			}
			s = hmm.NewState(st.Name, dist)
		}
		sm.AddState(s)
		byName[st.Name] = s
	}

	for toName, p := range spec.StartTransitions {
		to, ok := byName[toName]
		if !ok {
			return nil, fmt.Errorf("%w: %s band start_transitions references unknown state %q", ErrInvalidModelSpec, name, toName)
		}
		if err := sm.AddTransition(sm.Start, to, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModelSpec, err)
		}
	}
	for _, st := range spec.States {
		from := byName[st.Name]
		for toName, p := range st.Transitions {
			to, ok := byName[toName]
			if !ok {
				return nil, fmt.Errorf("%w: %s band state %q references unknown transition target %q", ErrInvalidModelSpec, name, st.Name, toName)
			}
			if err := sm.AddTransition(from, to, p); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidModelSpec, err)
			}
		}
	}
	return sm, nil
}

func parseEmit(emit map[string]float64) (map[byte]float64, error) {
	dist := make(map[byte]float64, len(emit))
	for sym, p := range emit {
		if len(sym) != 1 {
			return nil, fmt.Errorf("emission symbol %q must be exactly one byte", sym)
		}
		dist[sym[0]] = p
	}
	return dist, nil
}

// buildRepeat assembles Copies instances of a UnitLength-position unit
// profile, wiring each copy's D/M/I triples with the relative transition
// template, and chaining dummy unit_start_<id>/unit_end_<id> boundary
// states copy to copy.
func buildRepeat(spec *RepeatSpec) (*hmm.SubModel, error) {
	sm := hmm.NewSubModel("repeat")
	tmpl := spec.Transitions

	prevEnd := sm.Start
	for c := 1; c <= spec.Copies; c++ {
		unitID := strconv.Itoa(c)

		dummyStart := hmm.NewSilentState("unit_start_" + unitID)
		dummyEnd := hmm.NewSilentState("unit_end_" + unitID)
		sm.AddState(dummyStart)
		sm.AddState(dummyEnd)
		if p, ok := tmpl["unit_p"]; ok && p > 0 {
			if err := sm.AddTransition(prevEnd, dummyStart, p); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidModelSpec, err)
			}
		}

		deletes := make([]*hmm.State, spec.UnitLength)
		matches := make([]*hmm.State, spec.UnitLength)
		inserts := make([]*hmm.State, spec.UnitLength)
		for i := 0; i < spec.UnitLength; i++ {
			deletes[i] = hmm.NewSilentState(fmt.Sprintf("D%d_%s", i, unitID))
			mEmit, err := emitAt(spec.MatchEmit, i)
			if err != nil {
				return nil, fmt.Errorf("%w: match_emit: %v", ErrInvalidModelSpec, err)
			}
			matches[i] = hmm.NewState(fmt.Sprintf("M%d_%s", i, unitID), mEmit)
			iEmit, err := emitAt(spec.InsertEmit, i)
			if err != nil {
				return nil, fmt.Errorf("%w: insert_emit: %v", ErrInvalidModelSpec, err)
			}
			inserts[i] = hmm.NewState(fmt.Sprintf("I%d_%s", i, unitID), iEmit)
			sm.AddState(deletes[i])
			sm.AddState(matches[i])
			sm.AddState(inserts[i])
		}

		wire := func(a, b *hmm.State, key string) error {
			p, ok := tmpl[key]
			if !ok || p <= 0 {
				return nil
			}
			return sm.AddTransition(a, b, p)
		}
		must := func(err error) error {
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidModelSpec, err)
			}
			return nil
		}

		if err := must(wire(dummyStart, deletes[0], "start_D")); err != nil {
			return nil, err
		}
		if err := must(wire(dummyStart, matches[0], "start_M")); err != nil {
			return nil, err
		}
		if err := must(wire(dummyStart, inserts[0], "start_I")); err != nil {
			return nil, err
		}

		for i := 0; i < spec.UnitLength; i++ {
			if err := must(wire(inserts[i], inserts[i], "I_I")); err != nil {
				return nil, err
			}
			if i+1 < spec.UnitLength {
				if err := must(wire(deletes[i], deletes[i+1], "D_D")); err != nil {
					return nil, err
				}
				if err := must(wire(deletes[i], matches[i+1], "D_M")); err != nil {
					return nil, err
				}
				if err := must(wire(matches[i], deletes[i+1], "M_D")); err != nil {
					return nil, err
				}
				if err := must(wire(matches[i], matches[i+1], "M_M")); err != nil {
					return nil, err
				}
				if err := must(wire(matches[i], inserts[i], "M_I")); err != nil {
					return nil, err
				}
				if err := must(wire(inserts[i], matches[i+1], "I_M")); err != nil {
					return nil, err
				}
			} else {
				if err := must(wire(deletes[i], dummyEnd, "D_end")); err != nil {
					return nil, err
				}
				if err := must(wire(matches[i], dummyEnd, "M_end")); err != nil {
					return nil, err
				}
				if err := must(wire(matches[i], inserts[i], "M_I")); err != nil {
					return nil, err
				}
				if err := must(wire(inserts[i], dummyEnd, "I_end")); err != nil {
					return nil, err
				}
			}
		}

		prevEnd = dummyEnd
	}

	if err := sm.AddTransition(prevEnd, sm.End, 1.0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelSpec, err)
	}
	return sm, nil
}

func emitAt(table []map[string]float64, i int) (map[byte]float64, error) {
	if i >= len(table) {
		return nil, fmt.Errorf("no entry for position %d", i)
	}
	return parseEmit(table[i])
}
