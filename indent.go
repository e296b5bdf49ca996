package yamlupdate

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// lineAnnotation records one line of a nested block before its indentation
// unit was stripped.
type lineAnnotation struct {
	content  string
	indented bool
}

// detectIndentUnit returns the leading spaces of the first line of block that
// holds mapping content, skipping blank lines, comments and list items.
func detectIndentUnit(block string) (string, error) {
	for _, line := range splitLines(block) {
		ind := leadingSpaces(line)
		if ind == 0 || ind == len(line) {
			continue
		}
		switch line[ind] {
		case '-', '#', '\t', '\r':
			continue
		}
		return line[:ind], nil
	}
	return "", errors.WithHint(
		fmt.Errorf("%w: no indented content in %q", ErrMatch, block),
		"nested mappings must be written in block style with indented keys",
	)
}

// undent strips unit from every line that starts with it and returns the
// annotations needed to restore the layout afterwards. The empty fragment
// after the final newline is annotated like any other line.
func undent(block, unit string) (string, []lineAnnotation) {
	lines := strings.Split(block, "\n")
	notes := make([]lineAnnotation, len(lines))
	for i, line := range lines {
		notes[i] = lineAnnotation{content: line, indented: strings.HasPrefix(line, unit)}
		lines[i] = strings.TrimPrefix(line, unit)
	}
	return strings.Join(lines, "\n"), notes
}

// reindent restores the indentation of an updated block. Each line is matched
// against the annotations by trimmed content, scanning forward only; a match
// is indented iff the original line was, and unmatched lines are indented
// unless blank. The result ends with a newline unless the block is empty.
func reindent(block, unit string, notes []lineAnnotation) string {
	if block == "" {
		return ""
	}
	lines := strings.Split(block, "\n")
	next := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		matched := false
		for j := next; j < len(notes); j++ {
			if strings.TrimSpace(notes[j].content) != trimmed {
				continue
			}
			next = j + 1
			matched = true
			if notes[j].indented {
				lines[i] = unit + line
			}
			break
		}
		if !matched && trimmed != "" {
			lines[i] = unit + line
		}
	}
	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// splitLines splits newline terminated text into lines without the
// terminators. A final unterminated fragment is kept as a line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
