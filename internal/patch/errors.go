package patch

import "errors"

// Error variables for patch operations.
var (
	ErrDocumentMissing  = errors.New("document not found")
	ErrAnchorNotFound   = errors.New("anchor not found")
	ErrRead             = errors.New("cannot read document")
	ErrWrite            = errors.New("cannot write document")
	ErrAnchorRequired   = errors.New("anchor is required")
	ErrMarkerRequired   = errors.New("marker is required")
	ErrBlockRequired    = errors.New("block is required")
	ErrMarkerNotInBlock = errors.New("block does not contain marker")
)
