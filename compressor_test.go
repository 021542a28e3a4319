package lz4p

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
)

func TestRoundTrip(t *testing.T) {
	var c Compressor
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			block := compress(t, &c, tc.data)
			if len(block) > CompressBlockBound(len(tc.data)) {
				t.Fatalf("block of %d bytes exceeds bound %d", len(block), CompressBlockBound(len(tc.data)))
			}
			got := decompress(t, block, len(tc.data))
			if !bytes.Equal(got, tc.data) {
				t.Fatal("decompressed output does not match")
			}
		})
	}
}

func TestCompressEmpty(t *testing.T) {
	dst := make([]byte, CompressBlockBound(0))
	n, err := CompressBlock(dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dst[:n], []byte{0}) {
		t.Fatalf("got %x, want 00", dst[:n])
	}
}

func TestCompressShortRun(t *testing.T) {
	data := bytes.Repeat([]byte{'a'}, 20)
	var c Compressor
	block := compress(t, &c, data)
	want := []byte{0x1a, 'a', 1, 0, 0x50, 'a', 'a', 'a', 'a', 'a'}
	if !bytes.Equal(block, want) {
		t.Fatalf("got %x, want %x", block, want)
	}
}

func TestCompressBlockEndRules(t *testing.T) {
	var c Compressor
	for _, tc := range testCases {
		if len(tc.data) == 0 {
			continue
		}
		block := compress(t, &c, tc.data)
		matches, err := Sequences(nil, block)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		last := matches[len(matches)-1]
		if last.Length != 0 {
			t.Fatalf("%s: block does not end with literals", tc.name)
		}
		if len(matches) == 1 {
			continue
		}
		if last.Unmatched < lastLiterals {
			t.Errorf("%s: block ends with %d literals", tc.name, last.Unmatched)
		}
		if m := matches[len(matches)-2]; m.Length+last.Unmatched < mfLimit {
			t.Errorf("%s: last match starts %d bytes before the end", tc.name, m.Length+last.Unmatched)
		}
	}
}

// s2ConvertBound is the capacity LZ4Converter needs for a block of n
// bytes, including the length header and the converter's 8 bytes of slack.
func s2ConvertBound(n int) int {
	return binary.MaxVarintLen32 + s2.MaxEncodedLen(n) + 8
}

// Blocks must decode with the reference implementation, and convert to S2
// and Snappy blocks that decode with those packages.
func TestCrossDecode(t *testing.T) {
	var c Compressor
	for _, tc := range testCases {
		if len(tc.data) == 0 {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			block := compress(t, &c, tc.data)

			got := make([]byte, len(tc.data))
			n, err := lz4.UncompressBlock(block, got)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tc.data) || !bytes.Equal(got, tc.data) {
				t.Fatal("lz4: decompressed output does not match")
			}

			s2Dst := make([]byte, binary.MaxVarintLen32, s2ConvertBound(len(tc.data)))
			s2Dst = s2Dst[:binary.PutUvarint(s2Dst, uint64(len(tc.data)))]
			var conv s2.LZ4Converter

			out, n, err := conv.ConvertBlock(s2Dst, block)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tc.data) {
				t.Fatalf("s2: length mismatch: want %d, got %d", len(tc.data), n)
			}
			decom, err := s2.Decode(nil, out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(decom, tc.data) {
				t.Fatal("s2: output mismatch")
			}

			out, _, err = conv.ConvertBlockSnappy(s2Dst, block)
			if err != nil {
				t.Fatal(err)
			}
			decom, err = snappy.Decode(nil, out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(decom, tc.data) {
				t.Fatal("snappy: output mismatch")
			}
		})
	}
}

func TestDecodeReference(t *testing.T) {
	for _, tc := range testCases {
		if len(tc.data) == 0 {
			continue
		}
		dst := make([]byte, lz4.CompressBlockBound(len(tc.data)))
		n, err := lz4.CompressBlock(tc.data, dst, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if n == 0 {
			// Incompressible.
			continue
		}
		got, err := Decode(nil, dst[:n], len(tc.data))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !bytes.Equal(got, tc.data) {
			t.Fatalf("%s: decompressed output does not match", tc.name)
		}
	}
}

func TestDeterministic(t *testing.T) {
	data := textData(200<<10, 10)
	var c1, c2 Compressor
	// Leave stale entries in c2's tables first.
	compress(t, &c2, textData(100<<10, 11))
	compress(t, &c2, textData(1000, 12))

	b1 := compress(t, &c1, data)
	b2 := compress(t, &c2, data)
	dst := make([]byte, CompressBlockBound(len(data)))
	n, err := CompressBlock(dst, data)
	if err != nil {
		t.Fatal(err)
	}
	h1, h2, h3 := xxHash32.Checksum(b1, 0), xxHash32.Checksum(b2, 0), xxHash32.Checksum(dst[:n], 0)
	if h1 != h2 || h1 != h3 {
		t.Fatalf("digests differ: %08x %08x %08x", h1, h2, h3)
	}
}

func TestCompressBounded(t *testing.T) {
	var c Compressor
	for _, tc := range testCases {
		if len(tc.data) == 0 {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			block := compress(t, &c, tc.data)

			// A destination of exactly the compressed size is enough.
			dst := make([]byte, len(block))
			n, err := c.CompressBlock(dst, tc.data)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(dst[:n], block) {
				t.Fatal("bounded output differs")
			}

			// One byte less is not, and nothing beyond dst is touched.
			buf := bytes.Repeat([]byte{0xa5}, len(block)+64)
			_, err = c.CompressBlock(buf[:len(block)-1], tc.data)
			if !errors.Is(err, ErrOutputBoundExceeded) {
				t.Fatalf("got %v, want ErrOutputBoundExceeded", err)
			}
			for i, b := range buf[len(block)-1:] {
				if b != 0xa5 {
					t.Fatalf("byte %d past the destination was written", i)
				}
			}
		})
	}
}

func TestEncode(t *testing.T) {
	var c Compressor
	data := textData(50<<10, 13)
	prefix := []byte("header")
	out, err := c.Encode(append([]byte(nil), prefix...), data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, prefix) {
		t.Fatal("Encode overwrote dst")
	}
	got := decompress(t, out[len(prefix):], len(data))
	if !bytes.Equal(got, data) {
		t.Fatal("decompressed output does not match")
	}
}

func TestAcceleration(t *testing.T) {
	data := textData(200<<10, 14)
	for _, accel := range []int{-1, 0, 1, 2, 8, 100, MaxAcceleration, MaxAcceleration + 1000} {
		t.Run(fmt.Sprint(accel), func(t *testing.T) {
			c := Compressor{Acceleration: accel}
			block := compress(t, &c, data)
			got := decompress(t, block, len(data))
			if !bytes.Equal(got, data) {
				t.Fatal("decompressed output does not match")
			}
		})
	}

	var def, one Compressor
	one.Acceleration = 1
	if !bytes.Equal(compress(t, &def, data), compress(t, &one, data)) {
		t.Fatal("zero Acceleration is not the default")
	}
}

func TestWideTables(t *testing.T) {
	for _, kind := range []tableKind{tableU32, tablePtr} {
		c := Compressor{forceWide: kind}
		for _, tc := range testCases {
			block := compress(t, &c, tc.data)
			got := decompress(t, block, len(tc.data))
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("table %d, %s: decompressed output does not match", kind, tc.name)
			}
		}
	}
}

func TestNarrowTableTooLarge(t *testing.T) {
	c := Compressor{forceWide: tableU16}
	data := textData(limit64k, 15)
	_, err := c.CompressBlock(make([]byte, CompressBlockBound(len(data))), data)
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("got %v, want ErrInputTooLarge", err)
	}
}

func TestCompressWithDict(t *testing.T) {
	dict := textData(100<<10, 16)
	tests := []struct {
		name string
		dict []byte
		src  []byte
	}{
		{"copy-of-dict", dict, append([]byte(nil), dict[70000:90000]...)},
		{"same-words", dict, textData(50<<10, 17)},
		{"small-dict", dict[:1000], textData(3000, 18)},
		{"tiny-dict", dict[:7], textData(3000, 19)},
		{"dict-tail", dict[:40000], append([]byte(nil), dict[39990:41000]...)},
		{"short-src", dict, []byte("indigo violet")},
		{"empty-src", dict, nil},
	}
	var c Compressor
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, CompressBlockBound(len(tt.src)))
			n, err := c.CompressBlockWithDict(dst, tt.src, tt.dict)
			if err != nil {
				t.Fatal(err)
			}
			got := make([]byte, len(tt.src))
			m, err := DecompressBlockWithDict(got, dst[:n], tt.dict)
			if err != nil {
				t.Fatal(err)
			}
			if m != len(tt.src) || !bytes.Equal(got, tt.src) {
				t.Fatal("decompressed output does not match")
			}
		})
	}

	// Copying from the dictionary is much better than compressing alone.
	src := append([]byte(nil), dict[70000:90000]...)
	plain := compress(t, &c, src)
	dst := make([]byte, CompressBlockBound(len(src)))
	n, err := c.CompressBlockWithDict(dst, src, dict)
	if err != nil {
		t.Fatal(err)
	}
	if n*10 > len(plain) {
		t.Errorf("with dict: %d bytes, without: %d", n, len(plain))
	}
}

func TestCompressWithPrefix(t *testing.T) {
	buf := textData(200<<10, 20)
	for _, start := range []int{0, 5, 8, 1000, 60000, 64 << 10, 150000, len(buf)} {
		t.Run(fmt.Sprint(start), func(t *testing.T) {
			var c Compressor
			src := buf[start:]
			dst := make([]byte, CompressBlockBound(len(src)))
			n, err := c.CompressBlockWithPrefix(dst, buf, start)
			if err != nil {
				t.Fatal(err)
			}
			got := make([]byte, len(src))
			m, err := DecompressBlockWithDict(got, dst[:n], buf[:start])
			if err != nil {
				t.Fatal(err)
			}
			if m != len(src) || !bytes.Equal(got, src) {
				t.Fatal("decompressed output does not match")
			}
		})
	}

	var c Compressor
	if _, err := c.CompressBlockWithPrefix(make([]byte, 100), buf[:50], 51); err == nil {
		t.Fatal("out of range start accepted")
	}
}

func benchmarkCompress(b *testing.B, data []byte, accel int) {
	b.ReportAllocs()
	c := Compressor{Acceleration: accel}
	dst := make([]byte, CompressBlockBound(len(data)))
	n, err := c.CompressBlock(dst, data)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CompressBlock(dst, data)
	}
}

func BenchmarkCompressText(b *testing.B) {
	benchmarkCompress(b, textData(1<<20, 1), 1)
}

func BenchmarkCompressTextAccel8(b *testing.B) {
	benchmarkCompress(b, textData(1<<20, 1), 8)
}

func BenchmarkCompressText64K(b *testing.B) {
	benchmarkCompress(b, textData(64<<10, 1), 1)
}

func BenchmarkCompressRandom(b *testing.B) {
	benchmarkCompress(b, randomData(1<<20, 1), 1)
}

func BenchmarkCompressPierrecLZ4(b *testing.B) {
	b.ReportAllocs()
	data := textData(1<<20, 1)
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CompressBlock(data, dst)
	}
}

func BenchmarkDecompress(b *testing.B) {
	b.ReportAllocs()
	data := textData(1<<20, 1)
	var c Compressor
	block := compress(b, &c, data)
	out := make([]byte, len(data))
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecompressBlock(out, block); err != nil {
			b.Fatal(err)
		}
	}
}
