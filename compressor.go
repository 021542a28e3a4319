package lz4p

import (
	"fmt"
	"sync"
)

// A Compressor compresses LZ4 blocks. It holds the hash tables, about
// 64 KiB, so it should be reused; the zero value is ready to use. A
// Compressor must not be used by more than one goroutine at a time.
type Compressor struct {
	// Acceleration trades compression ratio for speed: the match search
	// skips ahead faster on data that does not compress. Values below 1
	// mean DefaultAcceleration.
	Acceleration int

	// ChunkSize is how much input CompressChunked encodes per chunk.
	// 0 means MaxChunkSize.
	ChunkSize int

	// forceWide overrides the table used for inputs of 64 KiB or more.
	forceWide tableKind

	tables struct {
		u16 [narrowEntries]uint16
		u32 [wideEntries]uint32
		ptr [wideEntries]int
	}
}

func (c *Compressor) acceleration() int {
	switch {
	case c.Acceleration < 1:
		return DefaultAcceleration
	case c.Acceleration > MaxAcceleration:
		return MaxAcceleration
	}
	return c.Acceleration
}

func (c *Compressor) newBlock(dst, src []byte) block {
	return block{
		buf:     src,
		accel:   c.acceleration(),
		limited: len(dst) < CompressBlockBound(len(src)),
		final:   true,
	}
}

// CompressBlock compresses src into dst and returns the number of bytes
// written. len(dst) is the capacity: if it is less than
// CompressBlockBound(len(src)) and the block does not fit,
// ErrOutputBoundExceeded is returned. Inputs larger than MaxInputSize
// return ErrInputTooLarge.
func (c *Compressor) CompressBlock(dst, src []byte) (int, error) {
	if len(src) > MaxInputSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(src))
	}
	b := c.newBlock(dst, src)
	_, n, err := c.compress(dst, &b)
	return n, err
}

// CompressBlockWithDict is like CompressBlock, but matches may also point
// into dict, which is treated as the data right before src. Only the last
// 64 KiB of dict are used, and dictionaries shorter than 8 bytes are
// ignored. Decode the block with DecompressBlockWithDict and the same dict.
func (c *Compressor) CompressBlockWithDict(dst, src, dict []byte) (int, error) {
	if len(src) > MaxInputSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(src))
	}
	b := c.newBlock(dst, src)
	if len(dict) >= hashUnit {
		if len(dict) > maxDictSize {
			dict = dict[len(dict)-maxDictSize:]
		}
		b.mode = usingExtDict
		b.dict = dict
		b.dictSmall = len(dict) < maxDictSize
	}
	_, n, err := c.compress(dst, &b)
	return n, err
}

// CompressBlockWithPrefix compresses buf[start:], allowing matches into
// the up to 64 KiB of buf that come right before it. Decode the block with
// DecompressBlockWithDict, passing buf[:start] as the dictionary.
func (c *Compressor) CompressBlockWithPrefix(dst, buf []byte, start int) (int, error) {
	if start < 0 || start > len(buf) {
		return 0, fmt.Errorf("lz4p: prefix start %d out of range [0, %d]", start, len(buf))
	}
	if len(buf)-start > MaxInputSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(buf)-start)
	}
	if start > maxDictSize {
		buf = buf[start-maxDictSize:]
		start = maxDictSize
	}
	b := c.newBlock(dst, buf[start:])
	b.buf = buf
	b.start = start
	if start >= hashUnit {
		b.mode = withPrefix64k
		b.dictSmall = start < maxDictSize
	} else {
		b.buf = buf[start:]
		b.start = 0
	}
	_, n, err := c.compress(dst, &b)
	return n, err
}

// Encode compresses src and appends the block to dst, growing it as
// needed. It only fails for inputs larger than MaxInputSize.
func (c *Compressor) Encode(dst, src []byte) ([]byte, error) {
	n := len(dst)
	dst = grow(dst, CompressBlockBound(len(src)))
	m, err := c.CompressBlock(dst[n:], src)
	if err != nil {
		return dst[:n], err
	}
	return dst[:n+m], nil
}

// CompressChunked compresses src, which may be of any size, by running the
// engine on consecutive chunks of at most ChunkSize bytes and
// concatenating the results. The output decodes as a single block.
func (c *Compressor) CompressChunked(dst, src []byte) (int, error) {
	return encodeChunks(c, dst, src, c.ChunkSize)
}

func (c *Compressor) encodeChunk(dst, src []byte, final bool) (consumed, produced int, err error) {
	b := c.newBlock(dst, src)
	b.final = final
	return c.compress(dst, &b)
}

func (c *Compressor) maxOffset() int { return maxDistance }

// compress picks the table for b, clears it, indexes the dictionary or
// prefix, and runs the engine.
func (c *Compressor) compress(dst []byte, b *block) (consumed, produced int, err error) {
	kind := tableU16
	if b.span() >= limit64k {
		kind = c.forceWide
		if kind == tableAuto {
			kind = wideKind()
		}
	}
	switch kind {
	case tableU16:
		t := u16Table(c.tables.u16[:])
		clear(t)
		indexHistory(t, b)
		return compressGeneric(t, dst, b)
	case tableU32:
		t := u32Table(c.tables.u32[:])
		clear(t)
		indexHistory(t, b)
		return compressGeneric(t, dst, b)
	default:
		t := ptrTable(c.tables.ptr[:])
		clear(t)
		indexHistory(t, b)
		return compressGeneric(t, dst, b)
	}
}

// indexHistory records the dictionary or prefix of b in t.
func indexHistory[T hashTable](t T, b *block) {
	switch b.mode {
	case usingExtDict:
		loadPositions(t, b.dict, len(b.dict))
	case withPrefix64k:
		loadPositions(t, b.buf, b.start)
	}
}

var compressorPool = sync.Pool{New: func() interface{} { return new(Compressor) }}

// CompressBlock compresses src into dst with a pooled Compressor at the
// default acceleration. See Compressor.CompressBlock.
func CompressBlock(dst, src []byte) (int, error) {
	c := compressorPool.Get().(*Compressor)
	n, err := c.CompressBlock(dst, src)
	compressorPool.Put(c)
	return n, err
}
