package patch_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/agent-patch/internal/fs"
	"github.com/calvinalkan/agent-patch/internal/patch"
	"github.com/calvinalkan/agent-patch/internal/section"
)

const agentDoc = `---
name: agileflow-ci
---

ROLE
- Keep the pipeline green

BOUNDARIES
- Do NOT write to production
- Do NOT skip tests

WORKFLOW
1. Read the story
2. Run the tests
`

var protocol = patch.Patch{
	Anchor: "BOUNDARIES",
	Marker: "VERIFICATION PROTOCOL",
	Block:  "VERIFICATION PROTOCOL\n- Run the tests before review\n",
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)

	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func newPatcher() *patch.Patcher {
	return patch.New(fs.NewReal(), nil)
}

func TestApply_Inserts_Block_After_Anchor_Section(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)

	res := newPatcher().Apply(path, protocol)
	require.NoError(t, res.Err)
	require.Equal(t, patch.StatusApplied, res.Status)

	want := strings.Replace(agentDoc,
		"- Do NOT skip tests\n\nWORKFLOW",
		"- Do NOT skip tests\n\nVERIFICATION PROTOCOL\n- Run the tests before review\n\nWORKFLOW",
		1)

	if diff := cmp.Diff(want, readDoc(t, path)); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Changes_Only_The_Insertion_Point(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)

	res := newPatcher().Apply(path, protocol)
	require.Equal(t, patch.StatusApplied, res.Status)

	k := res.Point.NextHeading
	want := agentDoc[:k] + protocol.Block + "\n" + agentDoc[k:]

	require.Equal(t, want, readDoc(t, path))
	require.Equal(t, agentDoc, res.Before)
	require.Equal(t, want, res.After)
}

func TestApply_Is_Idempotent(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)
	p := newPatcher()

	first := p.Apply(path, protocol)
	require.Equal(t, patch.StatusApplied, first.Status)

	afterFirst := readDoc(t, path)

	second := p.Apply(path, protocol)
	require.Equal(t, patch.StatusSkipped, second.Status)
	require.NoError(t, second.Err)

	require.Equal(t, afterFirst, readDoc(t, path))
}

func TestApply_Skips_When_Marker_Present_Even_If_Block_Changed(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)
	p := newPatcher()

	require.Equal(t, patch.StatusApplied, p.Apply(path, protocol).Status)

	patched := readDoc(t, path)

	revised := protocol
	revised.Block = "VERIFICATION PROTOCOL\n- Run the tests\n- Update status.json\n"

	require.Equal(t, patch.StatusSkipped, p.Apply(path, revised).Status)
	require.Equal(t, patched, readDoc(t, path))
}

func TestApply_Fails_Without_Touching_File_When_Anchor_Missing(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(agentDoc, "BOUNDARIES", "LIMITS", 1)
	path := writeDoc(t, t.TempDir(), "agent.md", doc)

	before, err := os.Stat(path)
	require.NoError(t, err)

	res := newPatcher().Apply(path, protocol)

	require.Equal(t, patch.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, patch.ErrAnchorNotFound)
	require.ErrorIs(t, res.Err, section.ErrAnchorMissing)
	require.Equal(t, doc, readDoc(t, path))

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, before.ModTime(), after.ModTime())
}

func TestApply_Fails_When_Anchor_Is_Last_Section(t *testing.T) {
	t.Parallel()

	doc := "ROLE\n- a\n\nBOUNDARIES\n- Do NOT skip tests\n"
	path := writeDoc(t, t.TempDir(), "agent.md", doc)

	res := newPatcher().Apply(path, protocol)

	require.Equal(t, patch.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, section.ErrLastSection)
	require.Equal(t, doc, readDoc(t, path))
}

func TestApply_Reports_Missing_Document(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.md")

	res := newPatcher().Apply(path, protocol)

	require.Equal(t, patch.StatusMissing, res.Status)
	require.ErrorIs(t, res.Err, patch.ErrDocumentMissing)
	require.True(t, res.Failed())

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "missing document must not be created")
}

func TestApply_Reports_Write_Failure_Distinctly(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{})
	chaos.SetPathState(path, fs.PathReadOnly)

	res := patch.New(chaos, nil).Apply(path, protocol)

	require.Equal(t, patch.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, patch.ErrWrite)
	require.ErrorIs(t, res.Err, syscall.EROFS)
	require.False(t, errors.Is(res.Err, patch.ErrAnchorNotFound))
	require.True(t, fs.IsInjected(res.Err))
	require.Equal(t, agentDoc, readDoc(t, path))
}

func TestApply_Reports_Read_Failure(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{})
	chaos.SetPathState(path, fs.PathNoPermission)

	res := patch.New(chaos, nil).Apply(path, protocol)

	require.Equal(t, patch.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, patch.ErrRead)
}

func TestApply_Keeps_File_Mode(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)
	require.NoError(t, os.Chmod(path, 0o600))

	require.Equal(t, patch.StatusApplied, newPatcher().Apply(path, protocol).Status)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPlan_Does_Not_Write(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)

	res := newPatcher().Plan(path, protocol)

	require.Equal(t, patch.StatusPending, res.Status)
	require.Contains(t, res.After, protocol.Block)
	require.Equal(t, agentDoc, readDoc(t, path))
}

func TestCommit_Ignores_Non_Pending_Results(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, t.TempDir(), "agent.md", agentDoc)
	p := newPatcher()

	res := p.Plan(path, protocol)
	res.Status = patch.StatusSkipped

	require.Equal(t, patch.StatusSkipped, p.Commit(res).Status)
	require.Equal(t, agentDoc, readDoc(t, path))
}

func TestPatch_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patch   patch.Patch
		wantErr error
	}{
		{name: "valid", patch: protocol},
		{
			name:    "missing anchor",
			patch:   patch.Patch{Marker: "M", Block: "M\n"},
			wantErr: patch.ErrAnchorRequired,
		},
		{
			name:    "anchor not a heading",
			patch:   patch.Patch{Anchor: "boundaries", Marker: "M", Block: "M\n"},
			wantErr: section.ErrInvalidAnchor,
		},
		{
			name:    "missing marker",
			patch:   patch.Patch{Anchor: "BOUNDARIES", Block: "M\n"},
			wantErr: patch.ErrMarkerRequired,
		},
		{
			name:    "missing block",
			patch:   patch.Patch{Anchor: "BOUNDARIES", Marker: "M"},
			wantErr: patch.ErrBlockRequired,
		},
		{
			name:    "block without marker",
			patch:   patch.Patch{Anchor: "BOUNDARIES", Marker: "PROTOCOL", Block: "OTHER\n- x\n"},
			wantErr: patch.ErrMarkerNotInBlock,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.patch.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestApply_Fails_For_Invalid_Patch_Without_Reading(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.md")

	res := newPatcher().Apply(path, patch.Patch{Anchor: "BOUNDARIES", Marker: "X", Block: "Y\n"})

	require.Equal(t, patch.StatusFailed, res.Status)
	require.ErrorIs(t, res.Err, patch.ErrMarkerNotInBlock)
}
