package lz4p

import (
	"encoding/binary"
	"fmt"
)

func corruptf(pos int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: at %d: %s", ErrCorrupt, pos, fmt.Sprintf(format, args...))
}

// readLength adds the continuation bytes starting at src[s] to n.
// It gives up as soon as n exceeds limit, since no such length can fit.
func readLength(src []byte, s, n, limit int) (int, int, error) {
	for {
		if s >= len(src) {
			return 0, s, corruptf(s, "block ends inside a length")
		}
		b := src[s]
		s++
		n += int(b)
		if n > limit {
			return 0, s, corruptf(s, "length %d too large", n)
		}
		if b != 255 {
			return n, s, nil
		}
	}
}

// nextSequence parses the sequence that starts at src[s]. room is how many
// output bytes the sequence may produce. The literals of the sequence are
// src[lit:lit+m.Unmatched], and the next sequence starts at next. The
// final sequence has no copy and ends exactly at len(src).
func nextSequence(src []byte, s, room int) (m Match, lit, next int, err error) {
	token := src[s]
	s++

	m.Unmatched = int(token >> mlBits)
	if m.Unmatched == runMask {
		m.Unmatched, s, err = readLength(src, s, m.Unmatched, min(len(src)-s, room))
		if err != nil {
			return m, 0, 0, err
		}
	}
	if m.Unmatched > len(src)-s {
		return m, 0, 0, corruptf(s, "%d literals overrun the block", m.Unmatched)
	}
	if m.Unmatched > room {
		return m, 0, 0, corruptf(s, "%d literals overrun the output", m.Unmatched)
	}
	lit = s
	s += m.Unmatched
	if s == len(src) {
		// Last literals.
		if token&mlMask != 0 {
			return m, 0, 0, corruptf(s, "block ends inside an offset")
		}
		return m, lit, s, nil
	}
	room -= m.Unmatched

	if len(src)-s < 2 {
		return m, 0, 0, corruptf(s, "block ends inside an offset")
	}
	m.Distance = int(binary.LittleEndian.Uint16(src[s:]))
	if m.Distance == 0 {
		return m, 0, 0, corruptf(s, "zero offset")
	}
	s += 2

	m.Length = int(token & mlMask)
	if m.Length == mlMask {
		m.Length, s, err = readLength(src, s, m.Length, room-minMatch)
		if err != nil {
			return m, 0, 0, err
		}
	}
	m.Length += minMatch
	if m.Length > room {
		return m, 0, 0, corruptf(s, "match of %d bytes overruns the output", m.Length)
	}
	if s >= len(src) {
		return m, 0, 0, corruptf(s, "block ends after a match")
	}
	return m, lit, s, nil
}

// DecompressBlock decodes the block in src into dst and returns the number
// of bytes written. len(dst) is the capacity; it is normally the exact
// uncompressed size. Nothing outside dst[:len(dst)] is ever written.
func DecompressBlock(dst, src []byte) (int, error) {
	return decodeBlock(dst, src, nil)
}

// DecompressBlockWithDict is like DecompressBlock for blocks compressed
// with CompressBlockWithDict or CompressBlockWithPrefix. dict is the data
// that preceded the block; only its last 64 KiB can be referenced.
func DecompressBlockWithDict(dst, src, dict []byte) (int, error) {
	return decodeBlock(dst, src, dict)
}

// Decode decodes the block in src, which must expand to exactly size
// bytes, and appends the result to dst.
func Decode(dst, src []byte, size int) ([]byte, error) {
	if size < 0 {
		return dst, fmt.Errorf("%w: negative size %d", ErrCorrupt, size)
	}
	n := len(dst)
	dst = grow(dst, size)
	m, err := decodeBlock(dst[n:n+size], src, nil)
	if err != nil {
		return dst[:n], err
	}
	if m != size {
		return dst[:n], fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorrupt, m, size)
	}
	return dst[:n+size], nil
}

func decodeBlock(dst, src, dict []byte) (int, error) {
	if len(src) == 0 {
		return 0, corruptf(0, "empty block")
	}
	if len(dst) == 0 {
		// The only block that decodes to nothing is a single empty literal run.
		if len(src) == 1 && src[0] == 0 {
			return 0, nil
		}
		return 0, corruptf(0, "no room for output")
	}
	if len(dict) > maxDistance {
		dict = dict[len(dict)-maxDistance:]
	}

	s, d := 0, 0
	for {
		m, lit, next, err := nextSequence(src, s, len(dst)-d)
		if err != nil {
			return d, err
		}
		d += copy(dst[d:], src[lit:lit+m.Unmatched])
		if m.Length == 0 {
			return d, nil
		}

		length := m.Length
		if m.Distance > d {
			// The copy starts in the dictionary.
			back := m.Distance - d
			if back > len(dict) {
				return d, corruptf(s, "offset %d before start of output", m.Distance)
			}
			n := copy(dst[d:d+min(length, back)], dict[len(dict)-back:])
			d += n
			length -= n
		}
		if length > 0 {
			copyMatch(dst, d, m.Distance, length)
			d += length
		}
		s = next
	}
}

// copyMatch copies length bytes from dst[d-dist:] to dst[d:]. When the
// ranges overlap, the copy has to run forward a byte at a time so that
// short periods repeat.
func copyMatch(dst []byte, d, dist, length int) {
	from := d - dist
	if dist >= length {
		copy(dst[d:d+length], dst[from:from+length])
		return
	}
	for i := 0; i < length; i++ {
		dst[d+i] = dst[from+i]
	}
}

func grow(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b[:len(b)+n]
	}
	nb := make([]byte, len(b)+n, 2*len(b)+n)
	copy(nb, b)
	return nb
}
