// Package bioseq provides a Residue/Alphabet/Sequence family adapted to the
// byte-indexed emission convention the hmm package requires: emission
// symbols are plain bytes. It sits at the I/O boundary only: a read's raw
// bytes go in, a byte slice hmm.Model can decode comes out, and a decoded
// Path can be rendered back to a human-readable state trace.
package bioseq

// Residue is a single entry in a sequence: a DNA/RNA base, 'N', or a gap.
type Residue byte

// Alphabet is an ordered set of residues. Order is significant for callers
// that build frequency tables over it, though hmm itself is byte-indexed
// and does not consult Alphabet directly.
type Alphabet []Residue

// NewAlphabet builds an Alphabet from the residues given, in order.
func NewAlphabet(residues ...Residue) Alphabet {
	return Alphabet(residues)
}

// Len returns the number of residues in the alphabet.
func (a Alphabet) Len() int {
	return len(a)
}

// Contains reports whether r is a member of a.
func (a Alphabet) Contains(r Residue) bool {
	for _, x := range a {
		if x == r {
			return true
		}
	}
	return false
}

func (a Alphabet) String() string {
	bs := make([]byte, len(a))
	for i, r := range a {
		bs[i] = byte(r)
	}
	return string(bs)
}

// AlphaDNA is the default alphabet for DNA reads.
var AlphaDNA = NewAlphabet('A', 'C', 'G', 'T', 'N', '-')

// AlphaRNA is the default alphabet for RNA reads.
var AlphaRNA = NewAlphabet('A', 'C', 'G', 'U', 'N', '-')
