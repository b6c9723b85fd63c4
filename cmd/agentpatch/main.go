// Package main provides agentpatch, which inserts a section into a batch of
// agent documents, once.
package main

import (
	"os"

	"github.com/calvinalkan/agent-patch/internal/cli"
)

func main() {
	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args)

	os.Exit(exitCode)
}
