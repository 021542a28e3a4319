package lz4p

import "encoding/binary"

// dictMode says where matches may point besides the input itself.
type dictMode uint8

const (
	noDict dictMode = iota
	// withPrefix64k: up to 64 KiB of history sits in buf right before the input.
	withPrefix64k
	// usingExtDict: the history is a separate slice (block.dict).
	usingExtDict
)

// A block is one invocation of the engine.
//
// Positions are indexes into buf. Dictionary positions of usingExtDict are
// negative: position p < 0 is dict[len(dict)+p]. The hash table stores
// positions plus len(dict), so every stored value is non-negative.
type block struct {
	buf   []byte // prefix (withPrefix64k only) followed by the input
	start int    // where the input begins in buf
	dict  []byte // usingExtDict only; at most maxDictSize bytes

	mode dictMode
	// dictSmall rejects candidates that lie before the dictionary.
	dictSmall bool

	accel int
	// limited means dst may be smaller than CompressBlockBound.
	limited bool
	// final means the block ends the stream and gets the last literals.
	// Otherwise the engine stops after the last match and reports how much
	// input it used, so the rest can start the next chunk.
	final bool
}

func (b *block) bias() int {
	if b.mode == usingExtDict {
		return len(b.dict)
	}
	return 0
}

// span is the number of distinct positions the table must represent.
func (b *block) span() int {
	return len(b.buf) + b.bias()
}

// lowRef is the lowest position a match may reference.
func (b *block) lowRef() int {
	switch b.mode {
	case usingExtDict:
		return -len(b.dict)
	case withPrefix64k:
		return max(b.start-maxDictSize, 0)
	}
	return b.start
}

func (b *block) load32(p int) uint32 {
	if p < 0 {
		return binary.LittleEndian.Uint32(b.dict[len(b.dict)+p:])
	}
	return binary.LittleEndian.Uint32(b.buf[p:])
}

func (b *block) at(p int) byte {
	if p < 0 {
		return b.dict[len(b.dict)+p]
	}
	return b.buf[p]
}

// compressGeneric compresses b.buf[b.start:] into dst. It returns how many
// input bytes were encoded and how many output bytes were written. The
// table t must be empty apart from positions of the dictionary or prefix.
//
// The loop alternates between searching for a 4-byte match (with a step
// that grows the longer nothing is found), extending it backward into the
// pending literals, and writing the literals and the match. After a match
// it first tries the very next position before searching again.
func compressGeneric[T hashTable](t T, dst []byte, b *block) (consumed, produced int, err error) {
	buf := b.buf
	ip := b.start
	anchor := ip
	iend := len(buf)
	mflimit := iend - mfLimit
	matchlimit := iend - lastLiterals
	bias := b.bias()
	lowRef := b.lowRef()
	op := 0
	olimit := len(dst)

	if t.narrow() && b.span() >= limit64k {
		return 0, 0, ErrInputTooLarge
	}

	if iend-b.start < minLength {
		// Too short to hold a match.
		goto lastLiterals
	}

	t.put(t.hash(buf, ip), ip+bias)
	ip++

	{
		forwardH := t.hash(buf, ip)

	mainLoop:
		for {
			var match int

			// Find a match.
			{
				forwardIp := ip
				step := 1
				searchMatchNb := b.accel << skipTrigger
				for {
					h := forwardH
					ip = forwardIp
					forwardIp += step
					step = searchMatchNb >> skipTrigger
					searchMatchNb++

					if forwardIp > mflimit {
						break mainLoop
					}

					match = t.get(h) - bias
					forwardH = t.hash(buf, forwardIp)
					t.put(h, ip+bias)

					if b.dictSmall && match < lowRef {
						continue
					}
					if !t.narrow() && match+maxDistance < ip {
						continue
					}
					if b.load32(match) == load32(buf, ip) {
						break
					}
				}
			}

			// Catch up.
			low := 0
			if match < 0 {
				low = -len(b.dict)
			}
			for ip > anchor && match > low && b.at(match-1) == buf[ip-1] {
				ip--
				match--
			}

			// Encode literals.
			token := op
			op++
			litLength := ip - anchor
			if b.limited && op+litLength+(2+1+lastLiterals)+litLength/255 > olimit {
				return 0, 0, ErrOutputBoundExceeded
			}
			op = putLiterals(dst, token, op, buf[anchor:ip])

			for {
				// Encode offset.
				binary.LittleEndian.PutUint16(dst[op:], uint16(ip-match))
				op += 2

				// Encode match length.
				var matchCode int
				if match < 0 {
					// The match starts in the dictionary and may run on
					// into the start of the input.
					limit := min(ip-match, matchlimit)
					end := extendMatch2(b.dict, len(b.dict)+match+minMatch, buf[:limit], ip+minMatch)
					matchCode = end - ip - minMatch
					ip = end
					if ip == limit {
						more := extendMatch(buf[:matchlimit], b.start, ip) - ip
						matchCode += more
						ip += more
					}
				} else {
					end := extendMatch(buf[:matchlimit], match+minMatch, ip+minMatch)
					matchCode = end - ip - minMatch
					ip = end
				}

				if b.limited && op+1+lastLiterals+intLen(matchCode, mlMask) > olimit {
					return 0, 0, ErrOutputBoundExceeded
				}
				op = putMatchLength(dst, token, op, matchCode)

				anchor = ip

				// Test end of chunk.
				if ip > mflimit {
					break mainLoop
				}

				// Fill table.
				t.put(t.hash(buf, ip-2), ip-2+bias)

				// Test next position.
				h := t.hash(buf, ip)
				match = t.get(h) - bias
				t.put(h, ip+bias)
				if (!b.dictSmall || match >= lowRef) && match+maxDistance >= ip && b.load32(match) == load32(buf, ip) {
					token = op
					op++
					dst[token] = 0
					continue
				}
				break
			}

			// Prepare next loop.
			ip++
			forwardH = t.hash(buf, ip)
		}
	}

lastLiterals:
	if !b.final {
		return anchor - b.start, op, nil
	}
	lastRun := iend - anchor
	if b.limited && op+lastRun+1+intLen(lastRun, runMask) > olimit {
		return 0, 0, ErrOutputBoundExceeded
	}
	op = putLastLiterals(dst, op, buf[anchor:])
	return iend - b.start, op, nil
}
