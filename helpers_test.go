package yamlupdate

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// assertText fails with a unified diff when the texts differ.
func assertText(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Fatalf("unexpected output:\n%s\nactual:\n%s", unifiedDiff(expected, actual), actual)
	}
}

// mustDecode is DecodeUpdates for fixtures.
func mustDecode(t *testing.T, updatesJSON string) UpdateSet {
	t.Helper()
	updates, err := DecodeUpdates(updatesJSON)
	if err != nil {
		t.Fatalf("DecodeUpdates: %v", err)
	}
	return updates
}
