package extraction

import (
	"strings"
	"unicode"
)

// Document is the normalized form of raw recognized text: an ordered
// sequence of trimmed, non-empty lines. Extractors rely on line order
// (vendor names lead receipts, totals trail them), so the original order
// is always preserved. A Document is never mutated after construction.
type Document struct {
	lines []string
}

// NormalizeText converts raw recognizer output into a Document. It strips
// control characters, collapses repeated whitespace within each line, and
// drops empty lines. It never fails: empty or all-whitespace input yields
// an empty Document, which downstream extractors treat as "no candidates".
func NormalizeText(raw string) Document {
	rawLines := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		cleaned := normalizeLine(line)
		if cleaned != "" {
			lines = append(lines, cleaned)
		}
	}

	return Document{lines: lines}
}

// normalizeLine removes control characters and collapses runs of
// whitespace into single spaces, preserving case.
func normalizeLine(line string) string {
	var b strings.Builder
	for _, r := range line {
		if unicode.IsControl(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Lines returns the ordered lines of the document.
func (d Document) Lines() []string {
	return d.lines
}

// Empty reports whether the document contains no lines.
func (d Document) Empty() bool {
	return len(d.lines) == 0
}

// text returns the whole document joined by newlines, for scans that do
// not care about line positions.
func (d Document) text() string {
	return strings.Join(d.lines, "\n")
}
