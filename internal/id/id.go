package id

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeSeparator joins the segments of a hierarchical account code.
const CodeSeparator = "."

// ChildCode returns the code of the n-th child of parent: "3" + 2 -> "3.2".
func ChildCode(parent string, n int) string {
	return parent + CodeSeparator + strconv.Itoa(n)
}

// LastSegment returns the final dot-delimited segment of a code.
// "1.2.7" -> "7", "4" -> "4".
func LastSegment(code string) string {
	i := strings.LastIndex(code, CodeSeparator)
	if i < 0 {
		return code
	}
	return code[i+len(CodeSeparator):]
}

// SegmentNumber parses a code segment with leading-digit semantics:
// leading whitespace is skipped and digits are read up to the first non-digit.
// A segment with no leading digits is 0.
func SegmentNumber(segment string) int {
	s := strings.TrimLeft(segment, " \t")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Depth returns the number of segments in a code. "" has depth 0.
func Depth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, CodeSeparator) + 1
}

// FormatEntryID returns a journal entry number like "2025-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseEntryID parses "2025-01-001" into year, month, seq.
func ParseEntryID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}

	return year, month, seq, nil
}
