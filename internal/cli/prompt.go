package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/calvinalkan/agent-patch/internal/patch"
)

// prompter asks a yes/no question. ok is false for anything but yes.
type prompter interface {
	Ask(question string) (ok bool, err error)
	Close() error
}

// newPrompter returns a line editor prompt when in is a terminal and a
// plain line reader otherwise, so answers can be piped in.
func newPrompter(in io.Reader, o *IO) prompter {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)

		return &linerPrompter{state: state}
	}

	return &readerPrompter{sc: bufio.NewScanner(in), o: o}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Ask(question string) (bool, error) {
	answer, err := p.state.Prompt(question)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, fmt.Errorf("reading answer: %w", err)
	}

	return isYes(answer), nil
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

type readerPrompter struct {
	sc *bufio.Scanner
	o  *IO
}

func (p *readerPrompter) Ask(question string) (bool, error) {
	p.o.Printf("%s", question)

	if !p.sc.Scan() {
		p.o.Println()

		err := p.sc.Err()
		if err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}

		return false, nil
	}

	answer := p.sc.Text()
	p.o.Println(answer)

	return isYes(answer), nil
}

func (*readerPrompter) Close() error { return nil }

func isYes(answer string) bool {
	answer = strings.TrimSpace(strings.ToLower(answer))

	return answer == "yes" || answer == "y"
}

// confirmFunc adapts p to [patch.BatchOptions.Confirm].
func confirmFunc(p prompter) func(name string, res patch.Result) (bool, error) {
	return func(name string, _ patch.Result) (bool, error) {
		return p.Ask(fmt.Sprintf("Patch %s? (yes/no): ", name))
	}
}
