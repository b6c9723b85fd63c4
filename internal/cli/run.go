// Package cli implements the agentpatch command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/calvinalkan/agent-patch/internal/config"
)

// deps carries what commands need beyond their own flags. cfg is filled in
// after global flags are parsed, before any Exec runs.
type deps struct {
	cfg   *config.Config
	log   *zap.Logger
	in    io.Reader
	style style
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string) int {
	globals := newGlobalFlags()

	d := &deps{cfg: &config.Config{}, log: zap.NewNop(), in: in, style: outputStyle(out)}
	commands := []*Command{ApplyCmd(d), PlanCmd(d), LocateCmd(d), PrintConfigCmd(d)}

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.set.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	if *globals.help || globals.set.NArg() == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	name := globals.set.Arg(0)
	cmdArgs := globals.set.Args()[1:]

	cmd := findCommand(commands, name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	o := NewIO(out, errOut)

	if hasHelpFlag(cmdArgs) {
		return cmd.Run(context.Background(), o, cmdArgs)
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *globals.workDir,
		ConfigPath:      *globals.configPath,
		Overrides:       globals.overrides(),
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	log := newLogger(errOut, *globals.verbose)
	defer func() { _ = log.Sync() }()

	*d.cfg = cfg
	d.log = log

	log.Debug("config loaded",
		zap.String("dir", cfg.DirAbs),
		zap.Int("documents", len(cfg.Documents)),
		zap.String("config", cfg.Sources.File),
		zap.String("block", cfg.Sources.Block),
	)

	return cmd.Run(context.Background(), o, cmdArgs)
}

type globalFlags struct {
	set        *flag.FlagSet
	workDir    *string
	configPath *string
	dir        *string
	anchor     *string
	marker     *string
	blockFile  *string
	verbose    *bool
	help       *bool
}

func newGlobalFlags() globalFlags {
	set := flag.NewFlagSet("agentpatch", flag.ContinueOnError)
	set.SetInterspersed(false)
	set.SetOutput(&strings.Builder{}) // discard pflag output

	return globalFlags{
		set:        set,
		workDir:    set.StringP("cwd", "C", "", "Run as if started in `dir`"),
		configPath: set.StringP("config", "c", "", "Use specified config `file` (JSONC, or YAML by extension)"),
		dir:        set.String("dir", "", "Directory containing the documents"),
		anchor:     set.String("anchor", "", "Heading of the section to insert after"),
		marker:     set.String("marker", "", "Text whose presence means a document is already patched"),
		blockFile:  set.String("block-file", "", "Read the block to insert from `file`"),
		verbose:    set.BoolP("verbose", "v", false, "Log each step to stderr"),
		help:       set.BoolP("help", "h", false, "Show help"),
	}
}

// overrides returns the config overrides for flags that were set.
func (g globalFlags) overrides() config.Overrides {
	var o config.Overrides

	if g.set.Changed("dir") {
		o.Dir = g.dir
	}

	if g.set.Changed("anchor") {
		o.Anchor = g.anchor
	}

	if g.set.Changed("marker") {
		o.Marker = g.marker
	}

	if g.set.Changed("block-file") {
		o.BlockFile = g.blockFile
	}

	return o
}

func findCommand(commands []*Command, name string) *Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// newLogger returns a debug console logger on w when verbose, and a no-op
// logger otherwise.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)

	return zap.New(core)
}

// outputStyle picks glyph output for terminals.
func outputStyle(out io.Writer) style {
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		return styleGlyph
	}

	return stylePlain
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}

		if arg == "-h" || arg == "--help" {
			return true
		}
	}

	return false
}

func printUsage(w io.Writer, globals globalFlags, commands []*Command) {
	fprintln(w, `agentpatch - insert a section into agent documents

Usage: agentpatch [global flags] <command> [args]

Commands:`)

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Global flags:")

	var buf strings.Builder

	globals.set.SetOutput(&buf)
	globals.set.PrintDefaults()
	globals.set.SetOutput(&strings.Builder{})

	_, _ = fmt.Fprint(w, buf.String())
}
