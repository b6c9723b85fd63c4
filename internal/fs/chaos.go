package fs

import (
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate  float64 // Fail ReadFile
	WriteFailRate float64 // Fail WriteFileAtomic before anything is written
	StatFailRate  float64 // Fail Stat
}

// DefaultChaosConfig returns a config with reasonable fault rates for testing.
func DefaultChaosConfig() ChaosConfig {
	return ChaosConfig{
		ReadFailRate:  0.05,
		WriteFailRate: 0.1,
		StatFailRate:  0.02,
	}
}

// PathState tracks the fault state of a path for consistent error injection.
type PathState int

const (
	// PathNormal means no persistent fault. This is the zero value, so
	// untracked paths are normal.
	PathNormal PathState = iota
	// PathIOError is sticky: every operation on the path returns EIO.
	PathIOError
	// PathReadOnly is sticky for writes: reads work, writes return EROFS.
	PathReadOnly
	// PathNoPermission makes reads and writes return EACCES. Stat still works.
	PathNoPermission
)

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModeStickyOnly applies only sticky path state. Fault rates are
	// disabled. This is the zero value.
	ChaosModeStickyOnly ChaosMode = iota

	// ChaosModeInject enables fault-rate injection on top of sticky state.
	ChaosModeInject

	// ChaosModePassthrough behaves like the underlying FS and ignores sticky
	// state without clearing it.
	ChaosModePassthrough
)

// Chaos wraps an [FS] and injects failures for testing.
//
// Injected writes fail before the wrapped FS is called, which models a write
// that never reached the rename: the file on disk keeps its old content.
//
// Injected errors are *fs.PathError values with a syscall.Errno, wrapped in
// [InjectedError]. Use [IsInjected] to tell them apart from real errors.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu         sync.Mutex
	rng        *rand.Rand
	pathStates map[string]PathState

	readFails  atomic.Int64
	writeFails atomic.Int64
	statFails  atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	return &Chaos{
		fs:         fs,
		rng:        rand.New(rand.NewSource(seed)),
		config:     config,
		pathStates: make(map[string]PathState),
	}
}

// SetMode updates Chaos behavior. Safe to call concurrently with filesystem
// operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// SetPathState makes path fail consistently. [PathNormal] clears the state.
func (c *Chaos) SetPathState(path string, state PathState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state == PathNormal {
		delete(c.pathStates, path)

		return
	}

	c.pathStates[path] = state
}

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails  int64
	WriteFails int64
	StatFails  int64
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:  c.readFails.Load(),
		WriteFails: c.writeFails.Load(),
		StatFails:  c.statFails.Load(),
	}
}

// ReadFile reads through to the wrapped FS unless a fault is injected.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	mode := c.currentMode()

	switch c.sticky(mode, path) {
	case PathIOError:
		c.readFails.Add(1)

		return nil, injectedPathError("open", path, syscall.EIO)
	case PathNoPermission:
		c.readFails.Add(1)

		return nil, injectedPathError("open", path, syscall.EACCES)
	case PathNormal, PathReadOnly:
	}

	if c.should(mode, c.config.ReadFailRate) {
		c.readFails.Add(1)

		return nil, injectedPathError("read", path, syscall.EIO)
	}

	return c.fs.ReadFile(path)
}

// WriteFileAtomic writes through to the wrapped FS unless a fault is injected.
func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	mode := c.currentMode()

	switch c.sticky(mode, path) {
	case PathIOError:
		c.writeFails.Add(1)

		return injectedPathError("write", path, syscall.EIO)
	case PathReadOnly:
		c.writeFails.Add(1)

		return injectedPathError("write", path, syscall.EROFS)
	case PathNoPermission:
		c.writeFails.Add(1)

		return injectedPathError("write", path, syscall.EACCES)
	case PathNormal:
	}

	if c.should(mode, c.config.WriteFailRate) {
		c.writeFails.Add(1)

		return injectedPathError("write", path, syscall.ENOSPC)
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// Stat reads through to the wrapped FS unless a fault is injected.
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	err := c.statFault(path)
	if err != nil {
		return nil, err
	}

	return c.fs.Stat(path)
}

func (c *Chaos) statFault(path string) error {
	mode := c.currentMode()

	if c.sticky(mode, path) == PathIOError || c.should(mode, c.config.StatFailRate) {
		c.statFails.Add(1)

		return injectedPathError("stat", path, syscall.EIO)
	}

	return nil
}

func (c *Chaos) currentMode() ChaosMode {
	return ChaosMode(c.mode.Load())
}

func (c *Chaos) sticky(mode ChaosMode, path string) PathState {
	if mode == ChaosModePassthrough {
		return PathNormal
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pathStates[path]
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(mode ChaosMode, rate float64) bool {
	if mode != ChaosModeInject {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
