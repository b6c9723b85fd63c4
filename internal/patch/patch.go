// Package patch idempotently inserts a section into agent documents.
//
// A [Patch] names an anchor section, a marker substring and the block to
// insert. [Patcher.Apply] checks for the marker, locates the anchor boundary
// with [section.Locate], splices the block in memory and rewrites the file
// with a single atomic write. [Patcher.Batch] runs that over a list of
// documents and returns a [Report] value; presentation is left to callers.
//
// The marker is the only idempotency guard. It detects that some earlier
// version of the block was inserted, not that the current block is present,
// so changing the block text never re-patches an already patched document.
package patch

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/calvinalkan/agent-patch/internal/fs"
	"github.com/calvinalkan/agent-patch/internal/section"
)

// Patch describes the section to insert.
type Patch struct {
	// Anchor is the heading after whose section the block is inserted.
	Anchor string
	// Marker is a literal substring of Block. A document containing it is
	// considered patched already.
	Marker string
	// Block is inserted verbatim. It should end with a newline so a blank
	// line separates it from the following heading.
	Block string
}

// Validate checks that p can be applied idempotently.
func (p Patch) Validate() error {
	if p.Anchor == "" {
		return ErrAnchorRequired
	}

	err := section.ValidateAnchor(p.Anchor)
	if err != nil {
		return err
	}

	if p.Marker == "" {
		return ErrMarkerRequired
	}

	if p.Block == "" {
		return ErrBlockRequired
	}

	if !strings.Contains(p.Block, p.Marker) {
		return fmt.Errorf("%w: %q", ErrMarkerNotInBlock, p.Marker)
	}

	return nil
}

// Status is the outcome of patching one document.
type Status int

// Status values. [StatusMissing] is a failure where the document does not
// exist. [StatusDeclined] is a skip chosen at a confirmation prompt.
const (
	StatusPending Status = iota
	StatusApplied
	StatusSkipped
	StatusDeclined
	StatusFailed
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApplied:
		return "updated"
	case StatusSkipped:
		return "skipped"
	case StatusDeclined:
		return "declined"
	case StatusFailed:
		return "failed"
	case StatusMissing:
		return "missing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes what happened, or would happen, to one document.
type Result struct {
	Path   string
	Status Status
	// Err is set for StatusFailed and StatusMissing.
	Err error

	// Point, Before and After are set once the anchor was located
	// (StatusPending, StatusApplied, and write failures).
	Point  section.Point
	Before string
	After  string

	mode os.FileMode
}

// Failed reports whether the document could not be patched.
func (r Result) Failed() bool {
	return r.Status == StatusFailed || r.Status == StatusMissing
}

// Patcher applies patches through an [fs.FS].
type Patcher struct {
	fs  fs.FS
	log *zap.Logger
}

// New creates a Patcher. A nil logger disables logging. Panics if fsys is nil.
func New(fsys fs.FS, log *zap.Logger) *Patcher {
	if fsys == nil {
		panic("fs is nil")
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Patcher{fs: fsys, log: log}
}

// Apply patches the document at path. The file is either left untouched or
// fully rewritten once.
func (p *Patcher) Apply(path string, patch Patch) Result {
	return p.Commit(p.Plan(path, patch))
}

// Plan computes the outcome of patching path without writing anything.
// A patchable document yields [StatusPending] with Before and After set.
func (p *Patcher) Plan(path string, patch Patch) Result {
	res := Result{Path: path}

	err := patch.Validate()
	if err != nil {
		return p.fail(res, StatusFailed, err)
	}

	info, err := p.fs.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return p.fail(res, StatusMissing, fmt.Errorf("%w: %s", ErrDocumentMissing, path))
		}

		return p.fail(res, StatusFailed, fmt.Errorf("%w: %w", ErrRead, err))
	}

	res.mode = info.Mode().Perm()

	data, err := p.fs.ReadFile(path)
	if err != nil {
		return p.fail(res, StatusFailed, fmt.Errorf("%w: %w", ErrRead, err))
	}

	text := string(data)

	if strings.Contains(text, patch.Marker) {
		p.log.Debug("marker present", zap.String("path", path), zap.String("marker", patch.Marker))

		res.Status = StatusSkipped

		return res
	}

	pt, err := section.Locate(text, patch.Anchor)
	if err != nil {
		return p.fail(res, StatusFailed, fmt.Errorf("%w: %w", ErrAnchorNotFound, err))
	}

	res.Status = StatusPending
	res.Point = pt
	res.Before = text
	res.After = section.Splice(text, pt, patch.Block)

	p.log.Debug("anchor located",
		zap.String("path", path),
		zap.Int("anchor_line", pt.AnchorLine),
		zap.Int("heading_line", pt.HeadingLine),
		zap.Int("offset", pt.NextHeading),
	)

	return res
}

// Commit writes a pending result. Any other result is returned unchanged.
func (p *Patcher) Commit(res Result) Result {
	if res.Status != StatusPending {
		return res
	}

	err := p.fs.WriteFileAtomic(res.Path, []byte(res.After), res.mode)
	if err != nil {
		return p.fail(res, StatusFailed, fmt.Errorf("%w: %w", ErrWrite, err))
	}

	p.log.Debug("document rewritten",
		zap.String("path", res.Path),
		zap.Int("bytes", len(res.After)),
	)

	res.Status = StatusApplied

	return res
}

func (p *Patcher) fail(res Result, status Status, err error) Result {
	p.log.Debug("patch failed", zap.String("path", res.Path), zap.Stringer("status", status), zap.Error(err))

	res.Status = status
	res.Err = err

	return res
}
