package lz4p

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

var words = strings.Fields(`
	light rays refracted reflected prism colours colour red orange yellow green
	blue indigo violet experiment glass lens object image sun beam hole window
	shutter paper white black bodies motion lines angle incidence degrees part
	which that with from this those their these into upon more less than same
	was were been being have had when where while after before between through
	propositions book first second third observation figure axiom theorem
`)

// textData returns n bytes of word salad, which compresses about as well as
// ordinary English text.
func textData(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, 0, n+32)
	for len(b) < n {
		b = append(b, words[rng.Intn(len(words))]...)
		if rng.Intn(16) == 0 {
			b = append(b, ".\n"...)
		} else {
			b = append(b, ' ')
		}
	}
	return b[:n]
}

// randomData returns n bytes that do not compress.
func randomData(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	rng.Read(b)
	return b
}

type testCase struct {
	name string
	data []byte
}

var testCases = []testCase{
	{"empty", nil},
	{"one", []byte{'x'}},
	{"short", []byte("hello, world")},
	{"min-length", []byte("abcdabcdabcda")},
	{"repeat-20", bytes.Repeat([]byte{'a'}, 20)},
	{"repeat-1M", bytes.Repeat([]byte{'z'}, 1<<20)},
	{"period-3", bytes.Repeat([]byte("abc"), 30000)},
	{"text-1K", textData(1<<10, 1)},
	{"text-64K-minus", textData(64<<10+mfLimit-2, 2)},
	{"text-64K-plus", textData(64<<10+mfLimit-1, 3)},
	{"text-300K", textData(300<<10, 4)},
	{"random-100", randomData(100, 5)},
	{"random-100K", randomData(100<<10, 6)},
	{"mixed", append(randomData(70<<10, 7), textData(90<<10, 8)...)},
}

// compress compresses data with c into a buffer of exactly the bound.
func compress(t testing.TB, c *Compressor, data []byte) []byte {
	t.Helper()
	dst := make([]byte, CompressBlockBound(len(data)))
	n, err := c.CompressBlock(dst, data)
	if err != nil {
		t.Fatal(err)
	}
	return dst[:n]
}

// decompress decodes block, which must expand to exactly size bytes.
func decompress(t testing.TB, block []byte, size int) []byte {
	t.Helper()
	out, err := Decode(nil, block, size)
	if err != nil {
		t.Fatal(err)
	}
	return out
}
