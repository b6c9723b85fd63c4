package config

import "errors"

// Error variables for config loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDirEmpty           = errors.New("dir cannot be empty")
	ErrNoDocuments        = errors.New("no documents configured")
	ErrDocumentNameEmpty  = errors.New("document name cannot be empty")
	ErrDocumentAbsolute   = errors.New("document name must be relative to dir")
	ErrDocumentDuplicate  = errors.New("duplicate document name")
	ErrBlockConflict      = errors.New("block and block_file are mutually exclusive")
	ErrBlockFileRead      = errors.New("cannot read block file")
)
