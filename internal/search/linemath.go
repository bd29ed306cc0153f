package search

import (
	"bytes"
)

// Pure functions for locating matches within file content. They have no
// side effects and depend only on their inputs, which keeps them easy to
// property-test.

// ComputeLineNumber returns the 1-based line number for a byte offset in
// content.
func ComputeLineNumber(content []byte, offset int) int {
	if len(content) == 0 {
		return 1
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(content) {
		offset = len(content) - 1
	}
	return bytes.Count(content[:offset], []byte("\n")) + 1
}

// ComputeLineStart returns the byte offset of the start of the line
// containing offset.
func ComputeLineStart(content []byte, offset int) int {
	if len(content) == 0 || offset <= 0 {
		return 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	idx := bytes.LastIndexByte(content[:offset], '\n')
	if idx < 0 {
		return 0
	}
	return idx + 1
}

// ComputeLineEnd returns the byte offset of the end of the line containing
// offset: the position of the newline, or the end of content.
func ComputeLineEnd(content []byte, offset int) int {
	if len(content) == 0 {
		return 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(content) {
		return len(content)
	}
	idx := bytes.IndexByte(content[offset:], '\n')
	if idx < 0 {
		return len(content)
	}
	return offset + idx
}

// ComputeColumn returns the 1-based column number for a byte offset within
// its line.
func ComputeColumn(content []byte, offset int) int {
	return offset - ComputeLineStart(content, offset) + 1
}
