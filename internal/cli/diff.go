package cli

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// unifiedDiff renders the change to one document as a unified diff.
func unifiedDiff(name, before, after string) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  diffContext,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}

	return text, nil
}
