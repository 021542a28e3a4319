package lz4p

import (
	"encoding/binary"
	"math/bits"
)

const (
	hashLog       = 12
	wideEntries   = 1 << hashLog
	narrowEntries = 1 << (hashLog + 1)

	prime4bytes = 2654435761
	prime5bytes = 889523592379
)

func hash4(u uint32, log uint) uint32 {
	return (u * prime4bytes) >> (32 - log)
}

// hash5 hashes the low five bytes of u. u must come from a little-endian load.
func hash5(u uint64, log uint) uint32 {
	return uint32(((u << 24) * prime5bytes) >> (64 - log))
}

// A hashTable remembers the most recent position for each hash value.
// Positions are only candidates: they may be stale or collide, and the
// caller must compare the actual bytes before using one.
//
// The three implementations have different underlying types, so the
// generic engine is compiled separately for each of them.
type hashTable interface {
	// hash hashes the bytes of b starting at i.
	hash(b []byte, i int) uint32
	get(h uint32) int
	put(h uint32, pos int)
	// narrow reports whether every position the table can hold is within
	// maxDistance of every other, so the distance check can be skipped.
	narrow() bool
}

// u16Table stores 16-bit positions, for inputs (plus dictionary) shorter
// than limit64k. It gets one more hash bit than the wide tables.
type u16Table []uint16

func (t u16Table) hash(b []byte, i int) uint32 {
	return hash4(binary.LittleEndian.Uint32(b[i:]), hashLog+1)
}

func (t u16Table) get(h uint32) int      { return int(t[h&(narrowEntries-1)]) }
func (t u16Table) put(h uint32, pos int) { t[h&(narrowEntries-1)] = uint16(pos) }
func (t u16Table) narrow() bool          { return true }

// u32Table stores 32-bit positions. On 64-bit platforms it hashes five
// bytes, which costs nothing extra there and collides less.
type u32Table []uint32

func (t u32Table) hash(b []byte, i int) uint32 {
	if bits.UintSize == 64 {
		return hash5(binary.LittleEndian.Uint64(b[i:]), hashLog)
	}
	return hash4(binary.LittleEndian.Uint32(b[i:]), hashLog)
}

func (t u32Table) get(h uint32) int      { return int(t[h&(wideEntries-1)]) }
func (t u32Table) put(h uint32, pos int) { t[h&(wideEntries-1)] = uint32(pos) }
func (t u32Table) narrow() bool          { return false }

// ptrTable stores native ints. It is the wide table on 32-bit platforms.
type ptrTable []int

func (t ptrTable) hash(b []byte, i int) uint32 {
	return hash4(binary.LittleEndian.Uint32(b[i:]), hashLog)
}

func (t ptrTable) get(h uint32) int      { return t[h&(wideEntries-1)] }
func (t ptrTable) put(h uint32, pos int) { t[h&(wideEntries-1)] = pos }
func (t ptrTable) narrow() bool          { return false }

type tableKind uint8

const (
	tableAuto tableKind = iota
	tableU16
	tableU32
	tablePtr
)

// wideKind is the table used for inputs too large for tableU16.
func wideKind() tableKind {
	if bits.UintSize == 64 {
		return tableU32
	}
	return tablePtr
}

// loadPositions records every third position of b[:end] in t. It is how
// dictionaries and prefixes get indexed before compression starts.
func loadPositions[T hashTable](t T, b []byte, end int) {
	for p := 0; p <= end-hashUnit; p += 3 {
		t.put(t.hash(b, p), p)
	}
}
