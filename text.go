package lz4p

import "strconv"

// AppendText appends a human-readable form of a block to dst. data is the
// decoded block and matches are its sequences, as returned by Sequences.
// Literals are copied as they are and matches are shown as
// <Length,Distance>.
func AppendText(dst []byte, data []byte, matches []Match) []byte {
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = append(dst, data[pos:pos+m.Unmatched]...)
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = append(dst, '<')
			dst = strconv.AppendInt(dst, int64(m.Length), 10)
			dst = append(dst, ',')
			dst = strconv.AppendInt(dst, int64(m.Distance), 10)
			dst = append(dst, '>')
			pos += m.Length
		}
	}
	if pos < len(data) {
		dst = append(dst, data[pos:]...)
	}
	return dst
}
