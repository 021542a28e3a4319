package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/pierrec/xxHash/xxHash32"
	"github.com/ponces/lz4p"
)

var (
	mode       = flag.String("mode", "block", "Encoder to use: block, chunked or raw")
	accel      = flag.Int("accel", lz4p.DefaultAcceleration, "Acceleration. Higher is faster but compresses less")
	chunkSize  = flag.String("chunk", "0", "Chunk size for the chunked and raw modes. Examples: 64K, 1M. 0 means the largest")
	compare    = flag.Bool("compare", false, "Also compress with lz4, snappy, s2, zstd and brotli")
	crosscheck = flag.Bool("crosscheck", false, "Also decode the output with pierrec/lz4 and klauspost/s2")
	dump       = flag.Bool("dump", false, "Print the sequences of each compressed file")
	bench      = flag.Int("bench", 1, "Compress each file n times and report the speed")
	quiet      = flag.Bool("q", false, "Don't write anything to the terminal, except errors")
	help       = flag.Bool("help", false, "Display help")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lz4pbench: ")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 || *help {
		_, _ = fmt.Fprintln(os.Stderr, `Usage: lz4pbench [options] file1 file2

Compresses every file into a raw LZ4 block, decodes it again and checks
that the result matches by xxHash32 digest. Nothing is written to disk.

Options:`)
		flag.PrintDefaults()
		os.Exit(0)
	}

	sz, err := toSize(*chunkSize)
	exitErr(err)
	encode, err := newEncoder(*mode, *accel, sz)
	exitErr(err)
	if *bench < 1 {
		*bench = 1
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	if !*quiet {
		_, _ = fmt.Fprintln(tw, "file\tcodec\tinput\toutput\tratio\tMB/s\t")
	}
	for _, name := range args {
		data, err := os.ReadFile(name)
		exitErr(err)
		if len(data) == 0 {
			log.Printf("%s: empty, skipped", name)
			continue
		}

		r, block, err := run(encode, data, *bench)
		exitErr(wrap(name, err))
		if !*quiet {
			r.print(tw, name, "lz4p-"+*mode)
		}

		if *crosscheck {
			exitErr(wrap(name, crossCheck(block, data)))
		}
		if *compare && !*quiet {
			for _, c := range codecs {
				r, err := measure(c, data, *bench)
				exitErr(wrap(name, err))
				r.print(tw, name, c.name)
			}
		}
		if *dump {
			exitErr(tw.Flush())
			exitErr(wrap(name, dumpBlock(block, data)))
		}
	}
	exitErr(tw.Flush())
}

type encodeFunc func(dst, src []byte) (int, error)

func newEncoder(mode string, accel, chunkSize int) (encodeFunc, error) {
	switch mode {
	case "block":
		c := &lz4p.Compressor{Acceleration: accel}
		return c.CompressBlock, nil
	case "chunked":
		c := &lz4p.Compressor{Acceleration: accel, ChunkSize: chunkSize}
		return c.CompressChunked, nil
	case "raw":
		e := &lz4p.RawEncoder{ChunkSize: chunkSize}
		return e.EncodeBuffer, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

type result struct {
	in, out int
	elapsed time.Duration
	rounds  int
}

func (r result) print(tw *tabwriter.Writer, file, codec string) {
	ratio := float64(r.in) / float64(r.out)
	mbs := float64(r.in*r.rounds) / r.elapsed.Seconds() / (1 << 20)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%.1f\t\n", file, codec, r.in, r.out, ratio, mbs)
}

// run compresses data rounds times, then decodes the block and compares
// digests. It returns the block as well.
func run(encode encodeFunc, data []byte, rounds int) (result, []byte, error) {
	dst := make([]byte, lz4p.RawEncodeBound(len(data)))
	var n int
	var err error
	start := time.Now()
	for i := 0; i < rounds; i++ {
		n, err = encode(dst, data)
		if err != nil {
			return result{}, nil, err
		}
	}
	elapsed := time.Since(start)
	block := dst[:n]

	got, err := lz4p.Decode(nil, block, len(data))
	if err != nil {
		return result{}, nil, err
	}
	if want, have := xxHash32.Checksum(data, 0), xxHash32.Checksum(got, 0); want != have {
		return result{}, nil, fmt.Errorf("round trip digest %08x, want %08x", have, want)
	}
	return result{in: len(data), out: n, elapsed: elapsed, rounds: rounds}, block, nil
}

func dumpBlock(block, data []byte) error {
	matches, err := lz4p.Sequences(nil, block)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(lz4p.AppendText(nil, data, matches))
	if err == nil {
		_, err = fmt.Println()
	}
	return err
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func exitErr(err error) {
	if err != nil {
		if errors.Is(err, lz4p.ErrOutputBoundExceeded) || errors.Is(err, lz4p.ErrChunkProgress) {
			log.Printf("%v (the data would be stored uncompressed)", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "\nERROR:", err.Error())
		os.Exit(2)
	}
}

// toSize converts a size indication to bytes.
func toSize(size string) (int, error) {
	size = strings.ToUpper(strings.TrimSpace(size))
	firstLetter := strings.IndexFunc(size, unicode.IsLetter)
	if firstLetter == -1 {
		firstLetter = len(size)
	}

	bytesString, multiple := size[:firstLetter], size[firstLetter:]
	sz, err := strconv.Atoi(bytesString)
	if err != nil {
		return 0, fmt.Errorf("unable to parse size: %v", err)
	}

	switch multiple {
	case "G", "GB", "GIB":
		return sz * 1 << 30, nil
	case "M", "MB", "MIB":
		return sz * 1 << 20, nil
	case "K", "KB", "KIB":
		return sz * 1 << 10, nil
	case "B", "":
		return sz, nil
	default:
		return 0, fmt.Errorf("unknown size suffix: %v", multiple)
	}
}
