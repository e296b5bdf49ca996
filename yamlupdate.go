// Package yamlupdate edits YAML text in place. Keys are inserted, replaced
// or deleted by rewriting only the lines that belong to them; the rest of
// the document keeps its formatting byte for byte.
// Parsing is only used to decide whether a key exists and whether its value
// already matches.
package yamlupdate

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// UpdateKey sets key to value in the YAML mapping text and returns the new
// text. Only the lines of key itself change: a null value deletes the key,
// an absent key is appended, a mapping is merged into an existing block
// mapping key by key, and anything else replaces the old value. When the
// current value already equals value the input is returned unchanged.
func UpdateKey(key string, value Value, text string, opts ...Option) (string, error) {
	return newUpdater(opts).updateKey(nil, key, value, text)
}

// UpdateDocument applies updates to a single YAML document in order.
func UpdateDocument(updates UpdateSet, text string, opts ...Option) (string, error) {
	return newUpdater(opts).updateDocument(updates, text)
}

// UpdateDocumentJSON decodes updatesJSON, a JSON object, and applies it to a
// single YAML document with UpdateDocument.
func UpdateDocumentJSON(updatesJSON, text string, opts ...Option) (string, error) {
	updates, err := DecodeUpdates(updatesJSON)
	if err != nil {
		return "", err
	}
	return UpdateDocument(updates, text, opts...)
}

type updater struct {
	opts options
}

func newUpdater(opts []Option) updater {
	return updater{opts: newOptions(opts)}
}

func (u updater) updateDocument(updates UpdateSet, text string) (string, error) {
	var err error
	for _, f := range updates {
		text, err = u.updateKey(nil, f.Key, f.Value, text)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

// updateKey updates key inside text. path holds the enclosing keys when text
// is an undented nested block.
func (u updater) updateKey(path []string, key string, value Value, text string) (string, error) {
	keyPath := strings.Join(append(path[:len(path):len(path)], key), ".")
	eol := lineEnding(text)
	kind := Classify(value)

	updated := text
	if !strings.HasSuffix(updated, "\n") {
		updated += eol
	}
	doc, err := parseDocument(updated)
	if err != nil {
		return "", fmt.Errorf("update %s: %w", keyPath, err)
	}

	if doc.empty() {
		if kind == KindDelete {
			u.log(keyPath, "noop")
			return text, nil
		}
		if updated == eol {
			updated = ""
		}
		formatted, err := u.format(key, value.pruned(), eol)
		if err != nil {
			return "", err
		}
		u.log(keyPath, "insert")
		return updated + formatted, nil
	}
	if !doc.root.IsMapping() {
		return "", fmt.Errorf("%w: cannot update %s in a %s document", ErrUnsupportedType, keyPath, doc.root.kind)
	}

	current, present := doc.root.Lookup(key)
	if kind == KindDelete {
		if !present {
			u.log(keyPath, "noop")
			return text, nil
		}
		sp, ok := findKeySpan(key, updated)
		if !ok {
			return "", matchError(keyPath, updated)
		}
		u.log(keyPath, "delete")
		return updated[:sp.start] + updated[sp.end:], nil
	}

	if !present {
		return u.insert(keyPath, key, value, updated, eol)
	}
	if equalValues(current, value) {
		u.log(keyPath, "noop")
		return text, nil
	}

	sp, ok := findKeySpan(key, updated)
	if !ok {
		if !doc.explicit[key] {
			// inherited through a merge key; an explicit key overrides it
			return u.insert(keyPath, key, value, updated, eol)
		}
		return "", matchError(keyPath, updated)
	}

	if kind == KindStructured && Classify(current) == KindStructured {
		if sp.inline || isFlowBody(updated[sp.valueStart:sp.end]) {
			return u.replace(keyPath, key, mergeValues(current, value), updated, sp, eol, "flow-merge")
		}
		return u.merge(path, keyPath, key, value, updated, sp)
	}
	return u.replace(keyPath, key, value.pruned(), updated, sp, eol, "replace")
}

// insert appends key at the end of text. Trailing blank lines stay after the
// new key.
func (u updater) insert(keyPath, key string, value Value, text, eol string) (string, error) {
	formatted, err := u.format(key, value.pruned(), eol)
	if err != nil {
		return "", err
	}
	body := strings.TrimRight(text, "\r\n")
	tail := strings.TrimPrefix(text[len(body):], eol)
	u.log(keyPath, "insert")
	return body + eol + formatted + tail, nil
}

func (u updater) replace(keyPath, key string, value Value, text string, sp keySpan, eol, action string) (string, error) {
	formatted, err := u.format(key, value, eol)
	if err != nil {
		return "", err
	}
	u.log(keyPath, action)
	return text[:sp.start] + formatted + text[sp.end:], nil
}

// merge applies the fields of value to the block mapping under key. The block
// is undented by its own indentation unit, updated key by key and indented
// again, so comments and blank lines between untouched keys survive.
func (u updater) merge(path []string, keyPath, key string, value Value, text string, sp keySpan) (string, error) {
	header := text[sp.start:sp.valueStart]
	body := text[sp.valueStart:sp.end]

	unit, err := detectIndentUnit(body)
	if err != nil {
		return "", fmt.Errorf("update %s: %w", keyPath, err)
	}
	nested, notes := undent(body, unit)

	childPath := append(path[:len(path):len(path)], key)
	for _, f := range value.Fields() {
		nested, err = u.updateKey(childPath, f.Key, f.Value, nested)
		if err != nil {
			return "", err
		}
	}

	u.log(keyPath, "merge")
	return text[:sp.start] + header + reindent(nested, unit, notes) + text[sp.end:], nil
}

// format renders key with the line ending of the text it goes into.
func (u updater) format(key string, value Value, eol string) (string, error) {
	formatted, err := formatKey(key, value, u.opts)
	if err != nil || eol == "\n" {
		return formatted, err
	}
	return strings.ReplaceAll(formatted, "\n", eol), nil
}

// lineEnding returns "\r\n" when the first line of text ends that way.
func lineEnding(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

func (u updater) log(keyPath, action string) {
	u.opts.logger.Debug("yaml key update", "key", keyPath, "action", action)
}

func matchError(keyPath, text string) error {
	return errors.WithHint(
		fmt.Errorf("%w: %s in %q", ErrMatch, keyPath, text),
		"the key must start its own line in block style",
	)
}
