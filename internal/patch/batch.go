package patch

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// BatchOptions configures [Patcher.Batch].
type BatchOptions struct {
	// DryRun plans every document without writing. Patchable documents are
	// reported as [StatusPending].
	DryRun bool

	// Confirm, if set, is called with each pending result before it is
	// written. Returning false records [StatusDeclined]. An error records
	// [StatusFailed] for that document only.
	Confirm func(name string, res Result) (bool, error)
}

// Record is the outcome for one document of a batch.
type Record struct {
	Name string
	Result
}

// Report is the outcome of a batch, in input order.
type Report struct {
	Records []Record
}

// Tally holds outcome counts of a [Report].
type Tally struct {
	Applied int
	// Skipped includes declined documents.
	Skipped int
	Failed  int
	Missing int
	Pending int
}

// Tally counts the records by outcome.
func (r Report) Tally() Tally {
	var t Tally

	for _, rec := range r.Records {
		switch rec.Status {
		case StatusApplied:
			t.Applied++
		case StatusSkipped, StatusDeclined:
			t.Skipped++
		case StatusFailed:
			t.Failed++
		case StatusMissing:
			t.Missing++
		case StatusPending:
			t.Pending++
		}
	}

	return t
}

// HasFailures reports whether any document failed or was missing.
func (r Report) HasFailures() bool {
	t := r.Tally()

	return t.Failed > 0 || t.Missing > 0
}

// Batch applies patch to each named document in dir, one at a time, in
// order. A failure on one document never stops the others.
func (p *Patcher) Batch(dir string, names []string, patch Patch, opts BatchOptions) Report {
	report := Report{Records: make([]Record, 0, len(names))}

	for _, name := range names {
		path := filepath.Join(dir, name)

		res := p.batchOne(name, path, patch, opts)

		p.log.Info("document processed",
			zap.String("name", name),
			zap.Stringer("status", res.Status),
			zap.Error(res.Err),
		)

		report.Records = append(report.Records, Record{Name: name, Result: res})
	}

	return report
}

func (p *Patcher) batchOne(name, path string, patch Patch, opts BatchOptions) Result {
	res := p.Plan(path, patch)
	if res.Status != StatusPending || opts.DryRun {
		return res
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(name, res)
		if err != nil {
			return p.fail(res, StatusFailed, fmt.Errorf("confirm: %w", err))
		}

		if !ok {
			res.Status = StatusDeclined

			return res
		}
	}

	return p.Commit(res)
}
