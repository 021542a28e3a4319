package lz4p

import "encoding/binary"

const (
	rawHashBits    = 10
	rawHashEntries = 1 << rawHashBits

	// rawSafetyMargin is kept free at the end of both input and output, so
	// the inner loops can read and write without checking every byte.
	rawSafetyMargin = 128

	// rawDistanceBound is the exclusive upper bound of match offsets.
	rawDistanceBound = 1 << 16

	// rawStride is how many bytes forward match extension compares at once.
	rawStride = 32

	// rawEmptyOffset marks an unused entry. It is farther from every
	// position in a chunk than any valid match.
	rawEmptyOffset = 0x80000000
)

// A rawEntry caches the four bytes at offset next to the offset itself, so
// a candidate can be rejected without touching the input.
type rawEntry struct {
	offset uint32
	word   uint32
}

// A RawEncoder compresses buffers of any size with a small word-caching
// hash table, checking four positions per step. It compresses less than a
// Compressor but keeps its table in 8 KiB. The output is an ordinary LZ4
// block. A RawEncoder must not be used by more than one goroutine at a
// time.
type RawEncoder struct {
	// ChunkSize is how much input is encoded per chunk. 0 means MaxChunkSize.
	ChunkSize int

	table [rawHashEntries]rawEntry
}

// RawEncodeBound returns the destination size EncodeBuffer needs to be
// sure to succeed on n bytes of input.
func RawEncodeBound(n int) int {
	return CompressBlockBound(n) + rawSafetyMargin
}

// EncodeBuffer compresses src into dst and returns the number of bytes
// written. If dst is too small, or a chunk cannot make enough progress,
// it returns an error wrapping ErrChunkProgress. An empty src produces no
// output at all.
func (e *RawEncoder) EncodeBuffer(dst, src []byte) (int, error) {
	return encodeChunks(e, dst, src, e.ChunkSize)
}

func (e *RawEncoder) maxOffset() int { return rawDistanceBound - 1 }

func (e *RawEncoder) reset() {
	for i := range e.table {
		e.table[i] = rawEntry{offset: rawEmptyOffset}
	}
}

func rawHash(w uint32) uint32 {
	return (w * prime4bytes) >> (32 - rawHashBits)
}

// encodeChunk encodes src into dst. It stops when dst has fewer than
// rawSafetyMargin bytes left, and reports only complete sequences: the
// returned counts always end on a sequence boundary.
func (e *RawEncoder) encodeChunk(dst, src []byte, final bool) (consumed, produced int, err error) {
	e.reset()

	end := len(dst) - rawSafetyMargin
	srcEnd := len(src) - rawSafetyMargin
	s, d := 0, 0

	for d < end {
		var mb, dist int
		found := false

	search:
		for mb = s; mb < srcEnd; mb += 4 {
			var w, idx [4]uint32
			var cand [4]rawEntry
			for k := range w {
				w[k] = load32(src, mb+k)
				idx[k] = rawHash(w[k])
			}
			for k := range cand {
				cand[k] = e.table[idx[k]]
			}
			for k := range w {
				e.table[idx[k]] = rawEntry{offset: uint32(mb + k), word: w[k]}
			}
			for k := range cand {
				dd := int64(mb+k) - int64(cand[k].offset)
				if w[k] == cand[k].word && dd > 0 && dd < rawDistanceBound {
					mb += k
					dist = int(dd)
					found = true
					break search
				}
			}
		}

		if !found {
			if !final {
				return s, d, nil
			}
			// Final literals, if they fit.
			n := len(src) - s
			t := d
			dst[t] = byte(min(n, runMask) << mlBits)
			t++
			if n >= runMask {
				var ok bool
				if t, ok = rawPutLength(dst, t, end, n-runMask); !ok || t+n >= end {
					return s, d, nil
				}
			}
			t += copy(dst[t:], src[s:])
			return len(src), t, nil
		}

		// Extend forward.
		me := mb + minMatch
		ref := me - dist
		for me < srcEnd {
			n := matchLen(src, ref, me, rawStride)
			if n < rawStride {
				me += n
				break
			}
			me += rawStride
			ref += rawStride
		}

		// Extend backward, but not into the previous sequence.
		minBegin := max(dist, s)
		ref = mb - dist
		for mb > minBegin && src[ref-1] == src[mb-1] {
			mb--
			ref--
		}

		t, ok := rawPutSequence(dst, d, end, src[s:mb], me-mb, dist)
		if !ok {
			return s, d, nil
		}
		s, d = me, t
	}
	return s, d, nil
}

// rawPutLength writes the continuation bytes for l at dst[d:]. It fails if
// the write crosses end, checking once per 17 bytes; the safety margin
// absorbs the overshoot.
func rawPutLength(dst []byte, d, end, l int) (int, bool) {
	for l >= 17*255 {
		for i := 0; i < 17; i++ {
			dst[d+i] = 255
		}
		d += 17
		l -= 17 * 255
		if d >= end {
			return 0, false
		}
	}
	return putInt(dst, d, l), true
}

// rawPutSequence writes the literals lit followed by a match of length ml
// at distance dist.
func rawPutSequence(dst []byte, d, end int, lit []byte, ml, dist int) (int, bool) {
	ml -= minMatch
	token := d
	dst[token] = byte(min(len(lit), runMask)<<mlBits | min(ml, mlMask))
	d++
	if len(lit) >= runMask {
		var ok bool
		if d, ok = rawPutLength(dst, d, end, len(lit)-runMask); !ok || d+len(lit) >= end {
			return 0, false
		}
	}
	d += copy(dst[d:], lit)
	binary.LittleEndian.PutUint16(dst[d:], uint16(dist))
	d += 2
	if ml >= mlMask {
		var ok bool
		if d, ok = rawPutLength(dst, d, end, ml-mlMask); !ok {
			return 0, false
		}
	}
	return d, true
}
