// Package sentinel watches the monitored file whose existence triggers
// blinking and whose first line can override the blink interval.
package sentinel

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// maxLine bounds the first-line read; the file carries at most one number.
const maxLine = 64

// ErrNoInterval is returned when the file's first line does not start with a
// positive number.
var ErrNoInterval = errors.New("sentinel: no usable interval in file")

// Exists reports whether the sentinel file is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadInterval reads the blink half-period from the file's first line.
// Only the leading number is considered; anything after it is ignored.
// Returns an error if the file cannot be opened or read, or if the parsed
// value is not a positive number of seconds. Callers keep their previously
// active interval on error.
func ReadInterval(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open sentinel %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, maxLine)
	buf := make([]byte, maxLine)
	n, err := r.Read(buf)
	if n == 0 {
		if err != nil {
			return 0, fmt.Errorf("read sentinel %s: %w", path, err)
		}
		return 0, ErrNoInterval
	}

	line := buf[:n]
	if i := indexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	seconds, ok := parseLeadingFloat(string(line))
	if !ok || seconds <= 0 {
		return 0, ErrNoInterval
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// parseLeadingFloat parses the longest numeric prefix of s, so trailing text
// after the number does not invalidate it.
func parseLeadingFloat(s string) (float64, bool) {
	s = trimLeadingSpace(s)
	end := 0
	for end < len(s) && isFloatChar(s[end]) {
		end++
	}
	// Trim trailing partial tokens ("1.5e", "2.") until something parses.
	for token := s[:end]; token != ""; token = token[:len(token)-1] {
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func isFloatChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E'
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\r') {
		s = s[1:]
	}
	return s
}
