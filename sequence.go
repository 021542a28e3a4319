package lz4p

import "math"

// A Match is one sequence of an LZ4 block: a run of literal bytes followed
// by a copy from earlier output.
type Match struct {
	Unmatched int // the number of literal bytes before the copy
	Length    int // the number of bytes copied; 0 only for the final sequence
	Distance  int // how far back in the output to copy from
}

// Sequences parses the block in src and appends its sequences to dst.
// The block must be self-contained: a sequence that reaches back before
// the start of the output is reported as ErrCorrupt.
func Sequences(dst []Match, src []byte) ([]Match, error) {
	if len(src) == 0 {
		return dst, corruptf(0, "empty block")
	}
	s, pos := 0, 0
	for {
		m, _, next, err := nextSequence(src, s, math.MaxInt32-255)
		if err != nil {
			return dst, err
		}
		pos += m.Unmatched
		if m.Length > 0 && m.Distance > pos {
			return dst, corruptf(s, "offset %d before start of output", m.Distance)
		}
		pos += m.Length
		dst = append(dst, m)
		if next == len(src) {
			return dst, nil
		}
		s = next
	}
}
