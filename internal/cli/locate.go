package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/agent-patch/internal/fs"
	"github.com/calvinalkan/agent-patch/internal/section"
)

var errFileRequired = errors.New("file argument is required")

// LocateCmd returns the locate command.
func LocateCmd(d *deps) *Command {
	return &Command{
		Flags: flag.NewFlagSet("locate", flag.ContinueOnError),
		Usage: "locate <file>",
		Short: "Show where the block would be inserted",
		Long: `Find the insertion point after the anchor section of a single file.

Prints the anchor and heading line numbers, the byte offset of the insert,
and every heading in the file. Exits 1 when the anchor section is missing
or malformed. Relative paths resolve against the working directory.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) != 1 {
				return errFileRequired
			}

			return execLocate(io, d, args[0])
		},
	}
}

func execLocate(io *IO, d *deps, file string) error {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.cfg.EffectiveCwd, path)
	}

	data, err := fs.NewReal().ReadFile(path)
	if err != nil {
		return err
	}

	text := string(data)
	anchor := d.cfg.Anchor

	pt, err := section.Locate(text, anchor)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	headings := section.Headings(text)

	io.Println("file=" + path)
	io.Println("anchor=" + anchor)
	io.Printf("anchor_line=%d\n", pt.AnchorLine)
	io.Println("next_heading=" + headingAt(headings, pt.HeadingLine))
	io.Printf("next_heading_line=%d\n", pt.HeadingLine)
	io.Printf("insert_offset=%d\n", pt.NextHeading)
	io.Println("")
	io.Println("# headings")

	for _, h := range headings {
		io.Printf("%d %s\n", h.Line, h.Name)
	}

	return nil
}

func headingAt(headings []section.Heading, line int) string {
	for _, h := range headings {
		if h.Line == line {
			return h.Name
		}
	}

	return ""
}
