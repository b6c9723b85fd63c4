// Package section locates structural boundaries in agent definition documents.
//
// A document is a sequence of newline-delimited lines. A section starts with a
// heading line (first byte an uppercase ASCII letter) and continues with
// bullet lines ("- " followed by text). Sections are separated by one empty
// line. There is no closing delimiter, so the end of a section is inferred
// from the bullet-run, blank-line, heading sequence.
//
// Example:
//
//	pt, err := section.Locate(text, "BOUNDARIES")
//	if err != nil {
//	    return err // errors.Is(err, section.ErrNotFound)
//	}
//
//	updated := section.Splice(text, pt, block)
package section

import (
	"errors"
	"fmt"
	"strings"
)

const bulletPrefix = "- "

// ErrNotFound is returned by [Locate] when no insertion point exists.
// Every reason error below wraps it.
var ErrNotFound = errors.New("anchor section not found")

// Reasons for [ErrNotFound].
var (
	ErrAnchorMissing = fmt.Errorf("%w: no heading line matches anchor", ErrNotFound)
	ErrNoBullets     = fmt.Errorf("%w: anchor heading has no bullet lines", ErrNotFound)
	ErrNoBlankLine   = fmt.Errorf("%w: bullet run not followed by a blank line", ErrNotFound)
	ErrNoHeading     = fmt.Errorf("%w: blank line not followed by a heading", ErrNotFound)
	ErrLastSection   = fmt.Errorf("%w: anchor section is the last section", ErrNotFound)
)

// Point is the insertion point found by [Locate].
//
// Byte offsets refer to the text passed to Locate. BlankLine is always
// NextHeading-1: the blank line separating the anchor section from the next
// heading is exactly one newline byte.
type Point struct {
	// BlankLine is the offset of the blank line after the anchor's bullet run.
	BlankLine int
	// NextHeading is the offset of the first byte of the following heading.
	NextHeading int

	// AnchorLine and HeadingLine are 1-based line numbers, for diagnostics.
	AnchorLine  int
	HeadingLine int
}

// Heading is a heading line found by [Headings].
type Heading struct {
	Name   string
	Line   int
	Offset int
}

// IsHeading reports whether line starts a new section.
func IsHeading(line string) bool {
	return line != "" && line[0] >= 'A' && line[0] <= 'Z'
}

// IsBullet reports whether line is a section body line. The marker must be
// followed by at least one byte.
func IsBullet(line string) bool {
	return len(line) > len(bulletPrefix) && strings.HasPrefix(line, bulletPrefix)
}

// Splice inserts block at pt and returns the new text.
//
// The result is text[:pt.BlankLine] + "\n" + block + "\n" + text[pt.NextHeading:].
// Since text[pt.BlankLine:pt.NextHeading] is the single blank line, this is
// the same as inserting block plus a separating newline right before the
// next heading: no existing byte is altered, reordered, or deleted.
//
// Panics if pt does not describe a blank line inside text.
func Splice(text string, pt Point, block string) string {
	if pt.BlankLine < 0 || pt.NextHeading != pt.BlankLine+1 || pt.NextHeading > len(text) {
		panic(fmt.Sprintf("section: invalid point %+v for text of length %d", pt, len(text)))
	}

	var b strings.Builder

	b.Grow(len(text) + len(block) + 1)
	b.WriteString(text[:pt.BlankLine])
	b.WriteByte('\n')
	b.WriteString(block)
	b.WriteByte('\n')
	b.WriteString(text[pt.NextHeading:])

	return b.String()
}

// Headings returns every heading line in text, in document order.
func Headings(text string) []Heading {
	var headings []Heading

	sc := newLineScanner(text)
	for sc.next() {
		if IsHeading(sc.line) {
			headings = append(headings, Heading{Name: sc.line, Line: sc.lineNo, Offset: sc.start})
		}
	}

	return headings
}

// lineScanner walks text line by line, tracking offsets.
// Unlike bufio.Scanner it reports whether the line was newline terminated,
// which the grammar depends on.
type lineScanner struct {
	text       string
	pos        int
	start      int
	line       string
	terminated bool
	lineNo     int
}

func newLineScanner(text string) *lineScanner {
	return &lineScanner{text: text}
}

func (s *lineScanner) next() bool {
	if s.pos >= len(s.text) {
		return false
	}

	s.start = s.pos
	s.lineNo++

	end := strings.IndexByte(s.text[s.pos:], '\n')
	if end < 0 {
		s.line = s.text[s.pos:]
		s.terminated = false
		s.pos = len(s.text)

		return true
	}

	s.line = s.text[s.pos : s.pos+end]
	s.terminated = true
	s.pos += end + 1

	return true
}
