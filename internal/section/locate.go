package section

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAnchor is returned when the anchor cannot name a heading line.
var ErrInvalidAnchor = errors.New("anchor must be a single heading line")

type state uint8

const (
	stateSeekAnchor state = iota
	stateInBulletRun
	stateExpectBlankLine
	stateExpectHeading
)

// ValidateAnchor reports whether anchor can match a heading line.
func ValidateAnchor(anchor string) error {
	if !IsHeading(anchor) || strings.ContainsAny(anchor, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAnchor, anchor)
	}

	return nil
}

// Locate finds where new content goes after the section named anchor.
//
// The anchor section is a line exactly equal to anchor, followed by one or
// more bullet lines, exactly one empty line, and a line starting with an
// uppercase letter. The bullet run is consumed maximally, so a bullet line is
// never taken as a boundary.
//
// If an occurrence of the anchor does not have that shape, scanning resumes
// at the line that broke the pattern, so a later occurrence can still match.
// Callers must not rely on this: anchors are expected to be unique.
//
// On failure the returned error wraps [ErrNotFound] and one of its reasons.
func Locate(text, anchor string) (Point, error) {
	err := ValidateAnchor(anchor)
	if err != nil {
		return Point{}, err
	}

	loc := locator{anchor: anchor, reason: ErrAnchorMissing}

	sc := newLineScanner(text)
	for sc.next() {
		if loc.feed(sc) {
			return loc.pt, nil
		}
	}

	if loc.state != stateSeekAnchor {
		loc.fail(ErrLastSection)
	}

	if errors.Is(loc.reason, ErrAnchorMissing) {
		return Point{}, fmt.Errorf("%w: %q", loc.reason, anchor)
	}

	return Point{}, fmt.Errorf("%w: %q at line %d", loc.reason, anchor, loc.failedAt)
}

// locator is the state machine behind [Locate].
type locator struct {
	anchor  string
	state   state
	pt      Point
	bullets int

	// reason and failedAt describe the most recent failed attempt.
	reason   error
	failedAt int
}

// feed consumes one line. Returns true once the insertion point is known.
func (l *locator) feed(sc *lineScanner) bool {
	for {
		switch l.state {
		case stateSeekAnchor:
			if sc.terminated && sc.line == l.anchor {
				l.pt = Point{AnchorLine: sc.lineNo}
				l.bullets = 0
				l.state = stateInBulletRun
			}

			return false

		case stateInBulletRun:
			if IsBullet(sc.line) {
				if !sc.terminated {
					l.fail(ErrLastSection)

					return false
				}

				l.bullets++

				return false
			}

			if l.bullets == 0 {
				l.fail(ErrNoBullets)

				continue // the line may itself be an anchor
			}

			l.state = stateExpectBlankLine

		case stateExpectBlankLine:
			if sc.line == "" {
				l.pt.BlankLine = sc.start
				l.state = stateExpectHeading

				return false
			}

			l.fail(ErrNoBlankLine)

		case stateExpectHeading:
			if IsHeading(sc.line) {
				l.pt.NextHeading = sc.start
				l.pt.HeadingLine = sc.lineNo

				return true
			}

			l.fail(ErrNoHeading)
		}
	}
}

func (l *locator) fail(reason error) {
	l.reason = reason
	l.failedAt = l.pt.AnchorLine
	l.state = stateSeekAnchor
}
