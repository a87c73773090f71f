package util

import (
	"bufio"
	"io"
)

// NewLineScanner returns a line scanner with a buffer large enough for
// journal output, which can exceed bufio's default 64K token limit when a
// unit logs long JSON lines.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	scanner.Split(bufio.ScanLines)
	return scanner
}
