package bioseq

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Sequence is a named biological read: DNA, RNA, or similar.
type Sequence struct {
	Name     string
	Residues []Residue
}

// NewSequenceString builds a Sequence from a plain string of residues.
func NewSequenceString(name, residues string) Sequence {
	rs := make([]Residue, len(residues))
	for i := 0; i < len(residues); i++ {
		rs[i] = Residue(residues[i])
	}
	return Sequence{Name: name, Residues: rs}
}

// Len returns the number of residues in the sequence.
func (s Sequence) Len() int {
	return len(s.Residues)
}

// Bytes returns the sequence as a byte slice, the form hmm.Model's
// decoders consume directly.
func (s Sequence) Bytes() []byte {
	bs := make([]byte, len(s.Residues))
	for i, r := range s.Residues {
		bs[i] = byte(r)
	}
	return bs
}

// ReadFASTA parses a single-record FASTA-ish read: one header line starting
// with '>', followed by one or more residue lines which are concatenated
// (whitespace stripped). It is deliberately narrow: the CLI's read
// argument is always a single read, never a multi-record alignment file.
func ReadFASTA(r io.Reader) (Sequence, error) {
	scanner := bufio.NewScanner(r)
	var name string
	var body strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if name != "" {
				return Sequence{}, fmt.Errorf("bioseq: multiple FASTA records not supported (already read %q)", name)
			}
			name = strings.TrimSpace(strings.TrimPrefix(line, ">"))
			continue
		}
		body.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return Sequence{}, fmt.Errorf("bioseq: read FASTA: %w", err)
	}
	if name == "" {
		return Sequence{}, fmt.Errorf("bioseq: no FASTA header line found")
	}
	if body.Len() == 0 {
		return Sequence{}, fmt.Errorf("bioseq: record %q has no residues", name)
	}
	return NewSequenceString(name, body.String()), nil
}

// PathTrace renders a list of state names (e.g. from an hmm.Path) as a
// compact, arrow-joined trace for CLI output.
func PathTrace(names []string) string {
	return strings.Join(names, " -> ")
}
