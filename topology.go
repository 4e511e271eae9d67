package hmm

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// profileStateKey is the parsed form of a profile state name of the form
// "<type><index>_<unit_id>", e.g. "M3_2" is Match, index 3, unit "2".
type profileStateKey struct {
	Type   byte // 'I', 'M', or 'D'
	Index  int
	UnitID string
}

var profileNameRE = regexp.MustCompile(`^([IMD])(\d+)_(.+)$`)

// ParseStateKey parses a profile state name into its type/index/unit_id
// components. ok is false if name does not match the "<type><index>_<unit>"
// grammar (e.g. a sub-model sentinel, or a dummy boundary state).
func ParseStateKey(name string) (key profileStateKey, ok bool) {
	m := profileNameRE.FindStringSubmatch(name)
	if m == nil {
		return profileStateKey{}, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return profileStateKey{}, false
	}
	return profileStateKey{Type: m[1][0], Index: idx, UnitID: m[3]}, true
}

// dummyKind classifies a dummy boundary state: unitDummyStart for a name
// containing "_start_", unitDummyEnd for one containing "_end_".
type dummyKind int

const (
	notDummy dummyKind = iota
	unitDummyStart
	unitDummyEnd
)

// parseDummy reports whether name is a dummy boundary state, and if so,
// which repeat unit it belongs to. The unit_id is everything following the
// "_start_"/"_end_" marker, matching the literal "unit_start_<id>" /
// "unit_end_<id>" naming SubsequenceViterbi looks for.
func parseDummy(name string) (kind dummyKind, unitID string) {
	if i := strings.Index(name, "_start_"); i >= 0 {
		return unitDummyStart, name[i+len("_start_"):]
	}
	if i := strings.Index(name, "_end_"); i >= 0 {
		return unitDummyEnd, name[i+len("_end_"):]
	}
	return notDummy, ""
}

// unitBucket collects the states belonging to a single repeat unit_id,
// in the categories the topology sorter needs.
type unitBucket struct {
	dummyStart []*State
	dummyEnd   []*State
	inserts    []*State
	matches    []*State
	deletes    []*State
}

// SortTopology reorders sm.States into canonical profile order: Start,
// then each unit's dummy-starts, its index-0 insert state, its (D_i, M_i,
// I_i) triples for i = 0, 1, ..., its dummy-ends, in ascending lexicographic
// order of unit_id, then End. It is a no-op if sm has only Start and End.
//
// States that are neither Start/End, profile states, nor dummy boundary
// states (e.g. the free-form states of a flanking band) are kept in their
// input order and placed directly after Start, ahead of the unit blocks.
func SortTopology(sm *SubModel) {
	if len(sm.States) <= 2 {
		return
	}

	buckets := make(map[string]*unitBucket)
	order := func(unitID string) *unitBucket {
		b, ok := buckets[unitID]
		if !ok {
			b = &unitBucket{}
			buckets[unitID] = b
		}
		return b
	}

	var others []*State
	for _, s := range sm.States {
		if s == sm.Start || s == sm.End {
			continue
		}
		if kind, unitID := parseDummy(s.Name); kind != notDummy {
			b := order(unitID)
			if kind == unitDummyStart {
				b.dummyStart = append(b.dummyStart, s)
			} else {
				b.dummyEnd = append(b.dummyEnd, s)
			}
			continue
		}
		if key, ok := ParseStateKey(s.Name); ok {
			b := order(key.UnitID)
			switch key.Type {
			case 'I':
				b.inserts = append(b.inserts, s)
			case 'M':
				b.matches = append(b.matches, s)
			case 'D':
				b.deletes = append(b.deletes, s)
			}
			continue
		}
		others = append(others, s)
	}

	unitIDs := make([]string, 0, len(buckets))
	for id := range buckets {
		unitIDs = append(unitIDs, id)
	}
	sort.Strings(unitIDs)

	sorted := make([]*State, 0, len(sm.States))
	sorted = append(sorted, sm.Start)
	sorted = append(sorted, others...)
	for _, id := range unitIDs {
		b := buckets[id]
		sortByIndex(b.inserts)
		sortByIndex(b.matches)
		sortByIndex(b.deletes)

		sorted = append(sorted, b.dummyStart...)

		var insertHead *State
		remainingInserts := b.inserts
		if len(remainingInserts) > 0 {
			insertHead, remainingInserts = remainingInserts[0], remainingInserts[1:]
			sorted = append(sorted, insertHead)
		}

		n := len(b.deletes)
		if len(b.matches) > n {
			n = len(b.matches)
		}
		if len(remainingInserts) > n {
			n = len(remainingInserts)
		}
		for i := 0; i < n; i++ {
			if i < len(b.deletes) {
				sorted = append(sorted, b.deletes[i])
			}
			if i < len(b.matches) {
				sorted = append(sorted, b.matches[i])
			}
			if i < len(remainingInserts) {
				sorted = append(sorted, remainingInserts[i])
			}
		}

		sorted = append(sorted, b.dummyEnd...)
	}
	sorted = append(sorted, sm.End)

	sm.States = sorted
}

// sortByIndex sorts profile states ascending by their parsed numeric index.
// States that fail to parse (shouldn't happen for callers of this
// function) sort last, stably among themselves.
func sortByIndex(states []*State) {
	sort.SliceStable(states, func(i, j int) bool {
		ki, oki := ParseStateKey(states[i].Name)
		kj, okj := ParseStateKey(states[j].Name)
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return ki.Index < kj.Index
	})
}

// SortTopologyByName reorders sm.States with Start first, End last, and
// every other state sorted ascending by name as a plain string. This is the
// "sort_by_name" alternative offered by Bake; it exists for visualization.
// The decoders relax each band a fixed number of passes per column (see
// Viterbi and SubsequenceViterbi), so a silent hop that this order places
// at a lower index than its source is carried only as far as those passes
// reach.
func SortTopologyByName(sm *SubModel) {
	if len(sm.States) <= 2 {
		return
	}
	rest := make([]*State, 0, len(sm.States)-2)
	for _, s := range sm.States {
		if s == sm.Start || s == sm.End {
			continue
		}
		rest = append(rest, s)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })

	sorted := make([]*State, 0, len(sm.States))
	sorted = append(sorted, sm.Start)
	sorted = append(sorted, rest...)
	sorted = append(sorted, sm.End)
	sm.States = sorted
}
