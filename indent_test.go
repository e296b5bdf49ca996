package yamlupdate

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIndentUnit(t *testing.T) {
	unit, err := detectIndentUnit("\n# comment\n  - item\n    key: v\n")
	require.NoError(t, err)
	assert.Equal(t, "    ", unit)

	unit, err = detectIndentUnit("  \n  a: 1\n")
	require.NoError(t, err)
	assert.Equal(t, "  ", unit)
}

func TestDetectIndentUnitFails(t *testing.T) {
	_, err := detectIndentUnit("- a\n  - b\n# c\n")
	require.ErrorIs(t, err, ErrMatch)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestUndentReindentRoundTrip(t *testing.T) {
	block := "  a: 1\n# misplaced\n\n    # deeper\n  b:\n    c: 2\n  \n"
	nested, notes := undent(block, "  ")
	assert.Equal(t, "a: 1\n# misplaced\n\n  # deeper\nb:\n  c: 2\n\n", nested)
	assert.Equal(t, block, reindent(nested, "  ", notes))
}

func TestReindentNewLines(t *testing.T) {
	_, notes := undent("  a: 1\n\n  b: 2\n", "  ")
	got := reindent("a: 1\nx: 9\n\nb: 2\ny:\n  z: 1\n", "  ", notes)
	assert.Equal(t, "  a: 1\n  x: 9\n\n  b: 2\n  y:\n    z: 1\n", got)
}

func TestReindentEmpty(t *testing.T) {
	_, notes := undent("  a: 1\n", "  ")
	assert.Equal(t, "", reindent("", "  ", notes))
}

// Matching only moves forward, so a new line whose content also appears
// further down consumes that later annotation and the lines in between are
// treated as new.
func TestReindentGreedyForwardMatch(t *testing.T) {
	_, notes := undent("  b: 1\n# note\n  c:\n    b: 2\n", "  ")
	got := reindent("b: 2\n# note\nc:\n  b: 2\n", "  ", notes)
	assert.Equal(t, "  b: 2\n  # note\n  c:\n    b: 2\n", got)
}
