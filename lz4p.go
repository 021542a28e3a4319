// Package lz4p implements the raw LZ4 block format: a fast LZ77 compressor
// with a configurable acceleration, dictionary-aware matching, a chunking
// wrapper for inputs of any size, and a bounds-checked decoder.
//
// The output is a bare token stream. There is no header, checksum, or
// embedded length, so the caller has to remember the uncompressed size and
// hand it back to the decoder.
//
// A Compressor (or RawEncoder) carries the hash table and is meant to be
// reused, but by one goroutine at a time. Decoding needs no state.
package lz4p

const (
	minMatch     = 4
	lastLiterals = 5
	// mfLimit is how close to the end of the input a match may start.
	mfLimit   = 8 + minMatch
	minLength = mfLimit + 1

	mlBits  = 4
	mlMask  = 1<<mlBits - 1
	runBits = 8 - mlBits
	runMask = 1<<runBits - 1

	maxDistance = 1<<16 - 1
	skipTrigger = 6

	// limit64k is the largest span the 16-bit table can address.
	limit64k = 64<<10 + mfLimit - 1

	maxDictSize = 64 << 10
	// hashUnit is the shortest dictionary that is worth loading.
	hashUnit = 8
)

const (
	// MaxInputSize is the largest input CompressBlock accepts.
	MaxInputSize = 0x7E000000

	// MaxChunkSize is the largest piece of input the chunking encoders hand
	// to the engine in one go.
	MaxChunkSize = 0x7ffff000

	// DefaultAcceleration is used when Acceleration is less than 1.
	DefaultAcceleration = 1

	// MaxAcceleration is the highest useful acceleration; larger values are clamped.
	MaxAcceleration = 65537
)

// CompressBlockBound returns the largest size a compressed block of n bytes
// can have. A destination at least this large makes compression unbounded.
func CompressBlockBound(n int) int {
	return n + n/255 + 16
}
