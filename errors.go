package lz4p

import "errors"

var (
	// ErrInputTooLarge is returned when the input is larger than a single
	// call can address.
	ErrInputTooLarge = errors.New("lz4p: input too large")

	// ErrOutputBoundExceeded is returned when the compressed block does not
	// fit in the destination. Nothing useful has been written; store the
	// data uncompressed instead.
	ErrOutputBoundExceeded = errors.New("lz4p: output does not fit destination")

	// ErrChunkProgress is returned by the chunking encoders when a chunk
	// leaves more input behind than the next chunk can make up for. It is
	// handled the same way as ErrOutputBoundExceeded.
	ErrChunkProgress = errors.New("lz4p: chunk did not make enough progress")

	// ErrCorrupt is returned by the decoder for any malformed block.
	ErrCorrupt = errors.New("lz4p: corrupt block")
)
