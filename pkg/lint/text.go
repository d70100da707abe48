package lint

import "strings"

// LineAt converts a byte offset into a 1-based line number.
func LineAt(content string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n") + 1
}

// LineOf returns the 1-based line of the first occurrence of needle, or 0.
func LineOf(content, needle string) int {
	if needle == "" {
		return 0
	}
	idx := strings.Index(content, needle)
	if idx < 0 {
		return 0
	}
	return LineAt(content, idx)
}

// KeyLine finds the line declaring key, trying the quoted JSON spelling first
// and then a YAML "key:" at the start of a line.
func KeyLine(content, key string) int {
	if key == "" {
		return 0
	}
	if line := LineOf(content, `"`+key+`"`); line > 0 {
		return line
	}
	for i, l := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), key+":") {
			return i + 1
		}
	}
	return 0
}
