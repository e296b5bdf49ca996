package yamlupdate

import "strings"

// keySpan locates one top-level key of a block. text[start:end] is the whole
// key/value region, text[valueStart:end] the value body. When inline is false
// the value starts on the line after the key and text[start:valueStart] is the
// key line, including any anchor, tag or comment written after the colon.
type keySpan struct {
	start      int
	valueStart int
	end        int
	inline     bool
}

// findKeySpan finds key at column zero of text, which must end with a
// newline. The value extends over the following continuation lines: blank
// lines, indented lines, list items and comments. A trailing run of
// unindented comments is left out of the span since it usually introduces
// whatever comes next.
func findKeySpan(key, text string) (keySpan, bool) {
	for pos := 0; pos < len(text); {
		next := lineEnd(text, pos)
		if colon, ok := matchKeyLine(text[pos:next], key); ok {
			return spanFrom(text, pos, pos+colon, next), true
		}
		pos = next
	}
	return keySpan{}, false
}

// matchKeyLine returns the offset just past the colon when line defines key,
// written plain, single or double quoted.
func matchKeyLine(line, key string) (int, bool) {
	forms := []string{`"` + key + `"`, `'` + key + `'`}
	if key != "" {
		forms = append(forms, key)
	}
	for i, form := range forms {
		if !strings.HasPrefix(line, form) {
			continue
		}
		rest := strings.TrimLeft(line[len(form):], " \t")
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		after := strings.TrimSuffix(rest[1:], "\n")
		plain := i == len(forms)-1 && key != ""
		if plain && after != "" && after[0] != ' ' && after[0] != '\t' && after[0] != '\r' {
			continue
		}
		return len(line) - len(rest) + 1, true
	}
	return 0, false
}

func spanFrom(text string, start, colon, next int) keySpan {
	sp := keySpan{start: start, valueStart: colon, inline: true}
	if isHeaderRemainder(text[colon:next]) {
		sp.valueStart = next
		sp.inline = false
	}

	end := next
	trailing := -1 // first unindented comment after the last content line
	for pos := next; pos < len(text); {
		nl := lineEnd(text, pos)
		line := strings.TrimRight(text[pos:nl], "\r\n")
		switch {
		case strings.TrimSpace(line) == "":
		case line[0] == '#':
			if trailing < 0 {
				trailing = pos
			}
		case isDocumentMarker(line):
			return finishSpan(sp, end, trailing)
		case line[0] == ' ' || line[0] == '-':
			trailing = -1
		default:
			return finishSpan(sp, end, trailing)
		}
		end = nl
		pos = nl
	}
	return finishSpan(sp, end, trailing)
}

func finishSpan(sp keySpan, end, trailing int) keySpan {
	if trailing >= 0 {
		end = trailing
	}
	sp.end = end
	return sp
}

// isHeaderRemainder reports whether the rest of a key line carries no value:
// only whitespace, a comment, or anchor and tag properties.
func isHeaderRemainder(rest string) bool {
	for _, tok := range strings.Fields(rest) {
		if tok[0] == '#' {
			return true
		}
		if tok[0] != '&' && tok[0] != '!' {
			return false
		}
	}
	return true
}

// isFlowBody reports whether a value body written below its key starts with
// a flow collection.
func isFlowBody(body string) bool {
	for _, line := range splitLines(body) {
		t := strings.TrimSpace(line)
		if t == "" || t[0] == '#' {
			continue
		}
		return t[0] == '{' || t[0] == '['
	}
	return false
}

func isDocumentMarker(line string) bool {
	if !strings.HasPrefix(line, "---") && !strings.HasPrefix(line, "...") {
		return false
	}
	return len(line) == 3 || line[3] == ' ' || line[3] == '\t'
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(text string, pos int) int {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(text)
}
