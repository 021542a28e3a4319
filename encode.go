package lz4p

import "encoding/binary"

// appendInt appends n to dst in LZ4's variable-length integer format.
func appendInt(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 255)
		n -= 255
	}
	dst = append(dst, byte(n))
	return dst
}

// putInt is appendInt for a preallocated buffer. It writes n at dst[op:]
// and returns the new end.
func putInt(dst []byte, op, n int) int {
	for ; n >= 255; n -= 255 {
		dst[op] = 255
		op++
	}
	dst[op] = byte(n)
	return op + 1
}

// intLen is the number of continuation bytes needed after a nibble that
// holds n, where mask is the largest value the nibble itself can hold.
func intLen(n, mask int) int {
	if n < mask {
		return 0
	}
	return (n-mask)/255 + 1
}

// putLiterals writes the literal-length part of the token at dst[token]
// and the literals themselves, starting at dst[op].
func putLiterals(dst []byte, token, op int, lit []byte) int {
	if len(lit) >= runMask {
		dst[token] = runMask << mlBits
		op = putInt(dst, op, len(lit)-runMask)
	} else {
		dst[token] = byte(len(lit) << mlBits)
	}
	return op + copy(dst[op:], lit)
}

// putMatchLength completes the token at dst[token] with matchCode, the
// match length minus minMatch, writing any continuation bytes at dst[op].
func putMatchLength(dst []byte, token, op, matchCode int) int {
	if matchCode >= mlMask {
		dst[token] |= mlMask
		return putInt(dst, op, matchCode-mlMask)
	}
	dst[token] |= byte(matchCode)
	return op
}

// putLastLiterals writes the final, copy-less sequence.
func putLastLiterals(dst []byte, op int, lit []byte) int {
	return putLiterals(dst, op, op+1, lit)
}

// AppendBlock encodes src as an LZ4 block using the given matches, which
// must cover src in order (as the sequences of a MatchFinder would), and
// appends it to dst. Matches too close to the end of the block are turned
// back into literals, so that the block ends with at least 5 literal bytes
// and the last match ends at least 12 bytes before the end.
func AppendBlock(dst []byte, src []byte, matches []Match) []byte {
	trailingLiterals := 0
	for len(matches) > 0 && (trailingLiterals < lastLiterals || trailingLiterals+matches[len(matches)-1].Length < mfLimit) {
		lastMatch := matches[len(matches)-1]
		matches = matches[:len(matches)-1]
		trailingLiterals += lastMatch.Unmatched + lastMatch.Length
	}

	pos := 0
	for _, m := range matches {
		token := byte(0)
		if m.Unmatched >= runMask {
			token |= runMask << mlBits
		} else {
			token |= byte(m.Unmatched << mlBits)
		}
		if m.Length-minMatch >= mlMask {
			token |= mlMask
		} else {
			token |= byte(m.Length - minMatch)
		}
		dst = append(dst, token)

		if m.Unmatched >= runMask {
			dst = appendInt(dst, m.Unmatched-runMask)
		}
		dst = append(dst, src[pos:pos+m.Unmatched]...)

		dst = binary.LittleEndian.AppendUint16(dst, uint16(m.Distance))
		if m.Length-minMatch >= mlMask {
			dst = appendInt(dst, m.Length-minMatch-mlMask)
		}

		pos += m.Unmatched + m.Length
	}

	// Write the final, literals-only sequence.
	n := len(src) - pos
	if n >= runMask {
		dst = append(dst, runMask<<mlBits)
		dst = appendInt(dst, n-runMask)
	} else {
		dst = append(dst, byte(n<<mlBits))
	}
	dst = append(dst, src[pos:]...)

	return dst
}
