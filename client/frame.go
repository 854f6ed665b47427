package client

import (
	"bytes"
	"strings"
)

// FrameParser splits an incrementally arriving response body into complete,
// newline-terminated lines.
//
// Lines are cut on raw bytes, so a multi-byte rune split across two reads is
// reassembled before it is turned into a string. Content after the last '\n'
// is retained until the next Feed; whatever is still retained when the body
// ends is never emitted.
type FrameParser struct {
	buf []byte
}

// Feed appends p to the internal buffer and returns every line completed by
// it, each trimmed of surrounding whitespace. Blank lines are returned as "".
func (f *FrameParser) Feed(p []byte) []string {
	f.buf = append(f.buf, p...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, strings.TrimSpace(string(f.buf[:i])))
		f.buf = f.buf[i+1:]
	}

	// Drop the consumed prefix so the backing array can be collected.
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Pending returns the number of bytes held back waiting for a newline.
func (f *FrameParser) Pending() int {
	return len(f.buf)
}

// Reset drops any retained partial line.
func (f *FrameParser) Reset() {
	f.buf = nil
}
