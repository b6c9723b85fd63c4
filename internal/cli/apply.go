package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/agent-patch/internal/config"
	"github.com/calvinalkan/agent-patch/internal/fs"
	"github.com/calvinalkan/agent-patch/internal/patch"
)

var (
	errIncomplete    = errors.New("not all documents were patched")
	errConfirmDryRun = errors.New("--confirm and --dry-run cannot be used together")
)

// ApplyCmd returns the apply command.
func ApplyCmd(d *deps) *Command {
	flags := flag.NewFlagSet("apply", flag.ContinueOnError)
	flags.Bool("dry-run", false, "Show what would change without writing")
	flags.Bool("diff", false, "Print a unified diff for each changed document")
	flags.Bool("confirm", false, "Ask before writing each document")
	flags.Bool("strict", false, "Exit 1 if any document failed or is missing")

	return &Command{
		Flags: flags,
		Usage: "apply [flags] [doc...]",
		Short: "Insert the block into every document",
		Long: `Insert the block after the anchor section of each document.

Documents that already contain the marker are skipped. Documents default
to the configured list; names given as arguments replace it. Per-document
failures are reported and do not change the exit code unless --strict
is set.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			dryRun, _ := flags.GetBool("dry-run")
			confirm, _ := flags.GetBool("confirm")

			if dryRun && confirm {
				return errConfirmDryRun
			}

			diff, _ := flags.GetBool("diff")
			strict, _ := flags.GetBool("strict")

			return execApply(io, d, args, applyOptions{dryRun: dryRun, diff: diff, confirm: confirm, strict: strict})
		},
	}
}

// PlanCmd returns the plan command.
func PlanCmd(d *deps) *Command {
	flags := flag.NewFlagSet("plan", flag.ContinueOnError)
	flags.Bool("diff", false, "Print a unified diff for each document that would change")

	return &Command{
		Flags: flags,
		Usage: "plan [flags] [doc...]",
		Short: "Show what apply would do",
		Long:  "Report the outcome for each document without writing anything. Same as apply --dry-run.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			diff, _ := flags.GetBool("diff")

			return execApply(io, d, args, applyOptions{dryRun: true, diff: diff})
		},
	}
}

type applyOptions struct {
	dryRun  bool
	diff    bool
	confirm bool
	strict  bool
}

func execApply(io *IO, d *deps, args []string, opts applyOptions) error {
	cfg, err := selectDocuments(*d.cfg, args)
	if err != nil {
		return err
	}

	p := cfg.Patch()
	patcher := patch.New(fs.NewReal(), d.log)

	batchOpts := patch.BatchOptions{DryRun: opts.dryRun}

	if opts.confirm {
		prompt := newPrompter(d.in, io)
		defer func() { _ = prompt.Close() }()

		batchOpts.Confirm = confirmFunc(prompt)
	}

	if opts.dryRun {
		io.Printf("Planning %s for %d documents in %s...\n", p.Marker, len(cfg.Documents), cfg.DirAbs)
	} else {
		io.Printf("Adding %s to %d documents in %s...\n", p.Marker, len(cfg.Documents), cfg.DirAbs)
	}

	io.Println()

	report := patcher.Batch(cfg.DirAbs, cfg.Documents, p, batchOpts)

	warnFailures(io, report, p)

	err = printReport(io, d.style, report, p, opts.dryRun, opts.diff)
	if err != nil {
		return err
	}

	if opts.strict && report.HasFailures() {
		t := report.Tally()

		return fmt.Errorf("%w: %d failed, %d missing", errIncomplete, t.Failed, t.Missing)
	}

	return nil
}

// selectDocuments replaces the configured documents with names, if any.
func selectDocuments(cfg config.Config, names []string) (config.Config, error) {
	if len(names) == 0 {
		return cfg, nil
	}

	cfg.Documents = names

	err := config.Validate(cfg)
	if err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}
