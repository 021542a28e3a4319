package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// A codec is another compressor to compare against.
type codec struct {
	name   string
	encode func(src []byte) ([]byte, error)
}

var codecs = []codec{
	{"lz4", func(src []byte) ([]byte, error) {
		dst := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, dst, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible; lz4 would store it as is.
			return src, nil
		}
		return dst[:n], nil
	}},
	{"snappy", func(src []byte) ([]byte, error) {
		return snappy.Encode(nil, src), nil
	}},
	{"s2", func(src []byte) ([]byte, error) {
		return s2.Encode(nil, src), nil
	}},
	{"s2-better", func(src []byte) ([]byte, error) {
		return s2.EncodeBetter(nil, src), nil
	}},
	{"zstd-fastest", func(src []byte) ([]byte, error) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(src, nil), nil
	}},
	{"brotli-1", func(src []byte) ([]byte, error) {
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, 1)
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}},
}

func measure(c codec, data []byte, rounds int) (result, error) {
	var out []byte
	var err error
	start := time.Now()
	for i := 0; i < rounds; i++ {
		out, err = c.encode(data)
		if err != nil {
			return result{}, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return result{in: len(data), out: len(out), elapsed: time.Since(start), rounds: rounds}, nil
}

// crossCheck decodes block with pierrec/lz4, and converts it to S2 and
// Snappy blocks that are decoded in turn. All must give back data.
func crossCheck(block, data []byte) error {
	got := make([]byte, len(data))
	n, err := lz4.UncompressBlock(block, got)
	if err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	if !bytes.Equal(got[:n], data) {
		return errors.New("lz4: output mismatch")
	}

	// The converter keeps 8 bytes of slack at the end of dst.
	hdr := make([]byte, binary.MaxVarintLen32, binary.MaxVarintLen32+s2.MaxEncodedLen(len(data))+8)
	hdr = hdr[:binary.PutUvarint(hdr, uint64(len(data)))]
	var conv s2.LZ4Converter

	out, n, err := conv.ConvertBlock(hdr, block)
	if err != nil {
		return fmt.Errorf("s2 convert: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("s2 convert: length %d, want %d", n, len(data))
	}
	got, err = s2.Decode(got[:0], out)
	if err != nil {
		return fmt.Errorf("s2: %w", err)
	}
	if !bytes.Equal(got, data) {
		return errors.New("s2: output mismatch")
	}

	out, _, err = conv.ConvertBlockSnappy(hdr, block)
	if err != nil {
		return fmt.Errorf("snappy convert: %w", err)
	}
	got, err = snappy.Decode(got[:0], out)
	if err != nil {
		return fmt.Errorf("snappy: %w", err)
	}
	if !bytes.Equal(got, data) {
		return errors.New("snappy: output mismatch")
	}
	return nil
}
