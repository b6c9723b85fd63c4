package cli

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/agent-patch/internal/patch"
)

// style selects how transcript lines are rendered.
type style int

const (
	// stylePlain prints a fixed-width status word, for pipes and logs.
	stylePlain style = iota
	// styleGlyph prints emoji status lines, for terminals.
	styleGlyph
)

// outcome is the transcript word for one record. It refines the patch
// status by telling structural mismatches apart from other failures.
func outcome(rec patch.Record) string {
	switch {
	case rec.Status == patch.StatusDeclined:
		return "skipped"
	case rec.Status == patch.StatusFailed && errors.Is(rec.Err, patch.ErrAnchorNotFound):
		return "not-found"
	default:
		return rec.Status.String()
	}
}

// formatRecord renders the transcript line for rec.
func formatRecord(s style, rec patch.Record, p patch.Patch) string {
	if s == styleGlyph {
		return formatGlyph(rec, p)
	}

	word := outcome(rec)

	switch {
	case rec.Status == patch.StatusSkipped:
		return fmt.Sprintf("%-9s  %s (already has %q)", word, rec.Name, p.Marker)
	case rec.Status == patch.StatusDeclined:
		return fmt.Sprintf("%-9s  %s (declined)", word, rec.Name)
	case rec.Status == patch.StatusMissing:
		return fmt.Sprintf("%-9s  %s", word, rec.Name)
	case rec.Err != nil:
		return fmt.Sprintf("%-9s  %s: %v", word, rec.Name, rec.Err)
	default:
		return fmt.Sprintf("%-9s  %s", word, rec.Name)
	}
}

func formatGlyph(rec patch.Record, p patch.Patch) string {
	switch outcome(rec) {
	case "skipped":
		if rec.Status == patch.StatusDeclined {
			return fmt.Sprintf("  ⏭️  Skipping %s - declined", rec.Name)
		}

		return fmt.Sprintf("  ⏭️  Skipping %s - already has %s", rec.Name, p.Marker)
	case "updated":
		return fmt.Sprintf("  ✅ Added %s to %s", p.Marker, rec.Name)
	case "pending":
		return fmt.Sprintf("  📝 Would add %s to %s", p.Marker, rec.Name)
	case "not-found":
		return fmt.Sprintf("  ❌ Could not find %s section in %s", p.Anchor, rec.Name)
	case "missing":
		return fmt.Sprintf("  ⚠️  File not found: %s", rec.Name)
	default:
		return fmt.Sprintf("  ❌ Failed to patch %s: %v", rec.Name, rec.Err)
	}
}

// summaryLines returns the closing lines of a transcript. The first line
// is always present; failures and missing files get a second line only
// when there are any.
func summaryLines(t patch.Tally, dryRun bool) []string {
	lines := []string{fmt.Sprintf("Summary: %d agents updated, %d agents skipped", t.Applied, t.Skipped)}

	if dryRun {
		lines = append(lines, fmt.Sprintf("%d agents would be updated (dry run)", t.Pending))
	}

	if t.Failed > 0 || t.Missing > 0 {
		lines = append(lines, fmt.Sprintf("%d agents failed, %d files missing", t.Failed, t.Missing))
	}

	return lines
}

// printReport prints the transcript for report.
func printReport(o *IO, s style, report patch.Report, p patch.Patch, dryRun bool, diff bool) error {
	for _, rec := range report.Records {
		o.Println(formatRecord(s, rec, p))

		if diff && (rec.Status == patch.StatusPending || rec.Status == patch.StatusApplied) {
			text, err := unifiedDiff(rec.Name, rec.Before, rec.After)
			if err != nil {
				return err
			}

			o.Printf("%s", text)
		}
	}

	o.Println()

	for _, line := range summaryLines(report.Tally(), dryRun) {
		o.Println(line)
	}

	return nil
}

// warnFailures records a warning per failed document.
func warnFailures(o *IO, report patch.Report, p patch.Patch) {
	for _, rec := range report.Records {
		switch outcome(rec) {
		case "missing":
			o.WarnLLM(rec.Name+": file not found", "create it or remove it from the document list")
		case "not-found":
			o.WarnLLM(
				fmt.Sprintf("%s: no %s section followed by a blank line and a heading", rec.Name, p.Anchor),
				"fix the document structure or patch it by hand",
			)
		case "failed":
			o.WarnLLM(fmt.Sprintf("%s: %v", rec.Name, rec.Err), "check file permissions and disk space, then rerun")
		}
	}
}
