package yamlupdate

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatKey renders a single "key: value" pair as newline terminated YAML.
func FormatKey(key string, value Value, opts ...Option) (string, error) {
	return formatKey(key, value, newOptions(opts))
}

// Format renders value as newline terminated YAML.
func Format(value Value, opts ...Option) (string, error) {
	o := newOptions(opts)
	out, err := encodeNode(valueToNode(value))
	if err != nil {
		b, _ := value.MarshalJSON()
		return "", fmt.Errorf("%w: value %s: %w", ErrSerialize, b, err)
	}
	if !o.keepArrayIndent {
		out = compactSequences(out)
	}
	return out, nil
}

func formatKey(key string, value Value, o options) (string, error) {
	out, err := encodeNode(mappingNode(Field{Key: key, Value: value}))
	if err != nil {
		return "", fmt.Errorf("%w: key %q: %w", ErrSerialize, key, err)
	}
	if !o.keepArrayIndent {
		out = compactSequences(out)
	}
	return out, nil
}

func encodeNode(n *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// compactSequences outdents block sequences that the encoder nests under a
// mapping key, so "key:\n  - a" becomes "key:\n- a". Lines belonging to a
// sequence item (nested mappings, deeper sequences) move with the item.
// Block scalar bodies are shifted as a unit and never inspected.
func compactSequences(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")

	var (
		regions   []int // indent of each outdented sequence, innermost last
		prevKey   = -1  // key column of the previous line when it opens a block, else -1
		scalarCol = -1  // lines indented deeper than this belong to a block scalar
		scalarCut = 0
	)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		ind := leadingSpaces(line)

		if scalarCol >= 0 {
			if ind > scalarCol {
				lines[i] = line[min(scalarCut, ind):]
				continue
			}
			scalarCol = -1
		}

		for len(regions) > 0 && ind < regions[len(regions)-1] {
			regions = regions[:len(regions)-1]
		}
		if isDashLine(line[ind:]) && ind >= 2 && prevKey == ind-2 &&
			(len(regions) == 0 || ind > regions[len(regions)-1]) {
			regions = append(regions, ind)
		}

		cut := min(2*len(regions), ind)
		lines[i] = line[cut:]

		prevKey = -1
		body := strings.TrimRight(line, " ")
		switch {
		case strings.HasSuffix(body, ":"):
			prevKey = keyColumn(line, ind)
		case isBlockScalarHeader(body):
			scalarCol = scalarParentColumn(line, ind)
			scalarCut = cut
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func isDashLine(s string) bool {
	return s == "-" || strings.HasPrefix(s, "- ")
}

// keyColumn is the column of the key on a line such as "  - - key:".
func keyColumn(line string, ind int) int {
	col := ind
	for strings.HasPrefix(line[col:], "- ") {
		col += 2
	}
	return col
}

// scalarParentColumn is the column a block scalar body must be indented
// past: the key for "- k: |", the last dash for "- |".
func scalarParentColumn(line string, ind int) int {
	col := keyColumn(line, ind)
	if col > ind && !strings.Contains(line[col:], ":") {
		col -= 2
	}
	return col
}

// isBlockScalarHeader reports whether a line ends with a literal or folded
// block scalar indicator such as "|", "|-" or ">2+".
func isBlockScalarHeader(line string) bool {
	sp := strings.LastIndexByte(line, ' ')
	tok := line[sp+1:]
	if tok == "" || (tok[0] != '|' && tok[0] != '>') {
		return false
	}
	for _, c := range tok[1:] {
		if c != '-' && c != '+' && (c < '1' || c > '9') {
			return false
		}
	}
	if sp < 0 {
		return true
	}
	before := strings.TrimRight(line[:sp], " ")
	return strings.HasSuffix(before, ":") || strings.TrimLeft(before, "- ") == ""
}

func leadingSpaces(line string) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
