// Package preset holds the built-in patch: the session harness verification
// protocol inserted after the BOUNDARIES section of the AgileFlow dev agents.
package preset

import (
	_ "embed"
	"slices"

	"github.com/calvinalkan/agent-patch/internal/patch"
)

// Defaults used when no config overrides them.
const (
	Dir    = "agents"
	Anchor = "BOUNDARIES"
	Marker = "SESSION HARNESS & VERIFICATION PROTOCOL"
)

//go:embed verification-protocol.txt
var verificationProtocol string

// devAgents are the agents that write code.
var devAgents = []string{
	"agileflow-ci.md",
	"agileflow-devops.md",
	"agileflow-security.md",
	"agileflow-database.md",
	"agileflow-testing.md",
	"agileflow-performance.md",
	"agileflow-mobile.md",
	"agileflow-integrations.md",
	"agileflow-refactor.md",
	"agileflow-design.md",
	"agileflow-accessibility.md",
	"agileflow-analytics.md",
	"agileflow-datamigration.md",
	"agileflow-monitoring.md",
	"agileflow-compliance.md",
	"agileflow-qa.md",
}

// Documents returns the file names patched by default. The slice is a copy.
func Documents() []string {
	return slices.Clone(devAgents)
}

// Block returns the verification protocol section.
func Block() string {
	return verificationProtocol
}

// Patch returns the built-in patch.
func Patch() patch.Patch {
	return patch.Patch{
		Anchor: Anchor,
		Marker: Marker,
		Block:  verificationProtocol,
	}
}
