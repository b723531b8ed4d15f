package domain

import (
	"github.com/pmezard/go-difflib/difflib"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// UnifiedDiff renders the change between the artifact and one of its mutants.
func UnifiedDiff(path m.Path, original, mutated []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(mutated)),
		FromFile: "a/" + string(path),
		ToFile:   "b/" + string(path),
		Context:  3,
	})
}
