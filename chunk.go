package lz4p

import "fmt"

// A chunkEncoder encodes one chunk of at most MaxChunkSize bytes, starting
// from an empty table. When final is false it may leave trailing input
// unencoded; it reports how much input it used and how much output it
// wrote.
type chunkEncoder interface {
	encodeChunk(dst, src []byte, final bool) (consumed, produced int, err error)

	// maxOffset is the largest match offset the encoder produces.
	maxOffset() int
}

// encodeChunks encodes src with enc, chunkSize bytes at a time, and
// returns the total number of bytes written to dst. Chunks are encoded
// independently, but only the last one ends with a literal run, so the
// output is one valid block.
//
// Whatever a chunk leaves unencoded is carried over to the next one. The
// carry-over must stay shorter than enc.maxOffset()+1 bytes, or a run of
// unencodable chunks could turn into an unbounded literal run.
func encodeChunks(enc chunkEncoder, dst, src []byte, chunkSize int) (int, error) {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}
	carryLimit := enc.maxOffset() + 1

	d := 0
	for len(src) > 0 {
		n := min(chunkSize, len(src))
		final := n == len(src)

		used, written, err := enc.encodeChunk(dst[d:], src[:n], final)
		if err != nil {
			return 0, err
		}

		if final && used < n {
			return 0, fmt.Errorf("%w: last chunk encoded %d of %d bytes", ErrChunkProgress, used, n)
		}
		if !final && (used == 0 || n-used >= carryLimit) {
			return 0, fmt.Errorf("%w: chunk left %d of %d bytes", ErrChunkProgress, n-used, n)
		}

		d += written
		src = src[used:]
	}
	return d, nil
}
