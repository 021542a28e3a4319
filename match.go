package lz4p

import (
	"encoding/binary"
	"math/bits"
	"runtime"
)

// This file is based on code from github.com/golang/snappy.

//Copyright (c) 2011 The Snappy-Go Authors. All rights reserved.
//
//Redistribution and use in source and binary forms, with or without
//modification, are permitted provided that the following conditions are
//met:
//
//   * Redistributions of source code must retain the above copyright
//notice, this list of conditions and the following disclaimer.
//   * Redistributions in binary form must reproduce the above
//copyright notice, this list of conditions and the following disclaimer
//in the documentation and/or other materials provided with the
//distribution.
//   * Neither the name of Google Inc. nor the names of its
//contributors may be used to endorse or promote products derived from
//this software without specific prior written permission.
//
//THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
//"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
//LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
//A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
//OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
//SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
//LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
//DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
//THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
//(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
//OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

func load32(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i:])
}

// wideLoads reports whether unaligned 8-byte loads are cheap on this
// platform. Elsewhere the match extension compares 4 bytes at a time.
var wideLoads = runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" ||
	runtime.GOARCH == "ppc64le" || runtime.GOARCH == "riscv64"

// extendMatch returns the largest k <= len(src) such that src[i:i+k-j]
// and src[j:k] are equal. It assumes 0 <= i < j <= len(src).
func extendMatch(src []byte, i, j int) int {
	return extendMatch2(src, i, src, j)
}

// extendMatch2 returns the largest k such that src1[i:i+k-j] and src2[j:k]
// are equal and all these indexes are valid.
func extendMatch2(src1 []byte, i int, src2 []byte, j int) int {
	if wideLoads {
		for i+8 < len(src1) && j+8 < len(src2) {
			// The loads are little-endian, so the lowest set bit of the
			// XOR belongs to the first byte that differs.
			if x := binary.LittleEndian.Uint64(src1[i:]) ^ binary.LittleEndian.Uint64(src2[j:]); x != 0 {
				return j + bits.TrailingZeros64(x)>>3
			}
			i, j = i+8, j+8
		}
	} else {
		for i+4 < len(src1) && j+4 < len(src2) {
			if x := binary.LittleEndian.Uint32(src1[i:]) ^ binary.LittleEndian.Uint32(src2[j:]); x != 0 {
				return j + bits.TrailingZeros32(x)>>3
			}
			i, j = i+4, j+4
		}
	}
	for i < len(src1) && j < len(src2) && src1[i] == src2[j] {
		i++
		j++
	}
	return j
}

// matchLen returns how many of the first n bytes of src[i:] and src[j:]
// are equal. Both ranges must be in bounds.
func matchLen(src []byte, i, j, n int) int {
	k := 0
	for ; k+8 <= n; k += 8 {
		x := binary.LittleEndian.Uint64(src[i+k:]) ^ binary.LittleEndian.Uint64(src[j+k:])
		if x != 0 {
			return k + bits.TrailingZeros64(x)>>3
		}
	}
	for ; k < n && src[i+k] == src[j+k]; k++ {
	}
	return k
}
