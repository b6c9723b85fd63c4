package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
)

// TestBuilder is the subset of [testing.T] used by [StrictTestFS].
//
// This keeps [StrictTestFS] usable from tests in other packages without
// depending on _test.go files.
type TestBuilder interface {
	// [testing.T.Helper]
	Helper()
	// [testing.T.Cleanup]
	Cleanup(func())
	// [testing.T.Failed]
	Failed() bool
	// [testing.T.Logf]
	Logf(format string, args ...any)
	// [testing.T.Fatalf]
	Fatalf(format string, args ...any)
}

// StrictTestFS wraps an [FS] for tests:
//   - Records a bounded trace of recent FS operations
//   - Fails the test on any real filesystem error that is not expected
//
// Use it around [Chaos] so only injected faults reach the code under test.
type StrictTestFS struct {
	tb    TestBuilder
	fs    FS
	allow func(error) bool
	trace *traceLog
}

// StrictTestFSOptions configures a [StrictTestFS].
type StrictTestFSOptions struct {
	// FS is the underlying filesystem to wrap.
	FS FS
	// TraceCapacity is the max number of operations to keep in the trace log.
	// Defaults to 200. Set to a pointer to 0 to disable tracing.
	TraceCapacity *int
	// Allow reports whether a real error is expected. Defaults to allowing
	// only [iofs.ErrNotExist], which a missing document produces.
	Allow func(error) bool
}

// NewStrictTestFS creates a new [StrictTestFS] wrapping the given [FS].
//
// On test failure, logs the trace of recent FS operations via tb.Cleanup.
func NewStrictTestFS(tb TestBuilder, opts StrictTestFSOptions) *StrictTestFS {
	tb.Helper()

	allow := opts.Allow
	if allow == nil {
		allow = func(err error) bool { return errors.Is(err, iofs.ErrNotExist) }
	}

	s := &StrictTestFS{
		tb:    tb,
		fs:    opts.FS,
		allow: allow,
		trace: newTraceLog(opts.TraceCapacity),
	}

	tb.Cleanup(func() {
		if tb.Failed() {
			if trace := s.Trace(); trace != "" {
				tb.Logf("fs trace:\n%s", trace)
			}
		}
	})

	return s
}

// Trace returns a formatted string of recent FS operations.
func (s *StrictTestFS) Trace() string {
	return s.trace.String()
}

func (s *StrictTestFS) ReadFile(path string) ([]byte, error) {
	s.tb.Helper()
	data, err := s.fs.ReadFile(path)

	return data, s.wrap("readfile", path, err, attr("n", strconv.Itoa(len(data))))
}

func (s *StrictTestFS) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	s.tb.Helper()

	return s.wrap("writeatomic", path, s.fs.WriteFileAtomic(path, data, perm),
		attr("n", strconv.Itoa(len(data))), attr("perm", fmt.Sprintf("%#o", perm)))
}

func (s *StrictTestFS) Stat(path string) (os.FileInfo, error) {
	s.tb.Helper()
	info, err := s.fs.Stat(path)

	return info, s.wrap("stat", path, err)
}

// Interface compliance.
var _ FS = (*StrictTestFS)(nil)

// wrap traces the operation and fatals on unexpected real errors.
func (s *StrictTestFS) wrap(op, path string, err error, attrs ...kv) error {
	s.tb.Helper()

	s.trace.add(op, path, err, attrs...)

	if err != nil && !IsInjected(err) && !s.allow(err) {
		trace := s.Trace()
		if trace != "" {
			trace = "\n" + trace
		}

		s.tb.Fatalf("strictfs: underlying filesystem error: %v%s", err, trace)
	}

	return err
}

// kv is a key-value pair for trace context.
type kv struct {
	k string
	v string
}

func attr(k, v string) kv {
	return kv{k: k, v: v}
}

// traceEvent records a single FS operation.
type traceEvent struct {
	seq      uint64
	op       string
	path     string
	err      error
	injected bool
	attrs    []kv
}

func (e traceEvent) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s", e.seq, e.op)

	if e.path != "" {
		fmt.Fprintf(&b, " path=%q", e.path)
	}

	for _, a := range e.attrs {
		fmt.Fprintf(&b, " %s=%s", a.k, a.v)
	}

	if e.err == nil {
		b.WriteString(" ok")

		return b.String()
	}

	fmt.Fprintf(&b, " err=%v injected=%t", e.err, e.injected)

	return b.String()
}

// traceLog is a bounded circular buffer of [traceEvent].
type traceLog struct {
	mu       sync.Mutex
	capacity int
	events   []traceEvent
	next     int
	seq      uint64
}

func newTraceLog(capacity *int) *traceLog {
	n := 200
	if capacity != nil {
		n = *capacity
	}

	return &traceLog{
		capacity: n,
		events:   make([]traceEvent, 0, n),
	}
}

func (t *traceLog) add(op, path string, err error, attrs ...kv) {
	if t.capacity == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++

	event := traceEvent{
		seq:      t.seq,
		op:       op,
		path:     path,
		err:      err,
		injected: IsInjected(err),
		attrs:    attrs,
	}

	if len(t.events) < t.capacity {
		t.events = append(t.events, event)

		return
	}

	t.events[t.next] = event
	t.next = (t.next + 1) % t.capacity
}

// snapshot returns the events oldest first.
func (t *traceLog) snapshot() []traceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]traceEvent, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	out = append(out, t.events[:t.next]...)

	return out
}

func (t *traceLog) String() string {
	events := t.snapshot()
	if len(events) == 0 {
		return ""
	}

	var b strings.Builder

	for i, e := range events {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString(e.String())
	}

	return b.String()
}
