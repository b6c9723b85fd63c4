package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(d *deps) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, d)
		},
	}
}

func execPrintConfig(io *IO, d *deps) error {
	cfg := d.cfg

	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("dir=" + cfg.DirAbs)
	io.Println("documents=" + strings.Join(cfg.Documents, ","))
	io.Println("anchor=" + cfg.Anchor)
	io.Println("marker=" + cfg.Marker)
	io.Println("block=" + cfg.Sources.Block)

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.File == "" {
		io.Println("(defaults only)")
	} else {
		io.Println("config=" + cfg.Sources.File)
	}

	return nil
}
