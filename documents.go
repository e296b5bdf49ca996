package yamlupdate

import (
	"fmt"
	"regexp"
	"strings"
)

var documentSeparator = regexp.MustCompile(`(?m)^---(?:[ \t]+.*)?\r?\n`)

// document is one body of a multi-document stream with the separator line
// that preceded it ("" for the first body).
type document struct {
	separator string
	body      string
}

func splitDocuments(text string) []document {
	locs := documentSeparator.FindAllStringIndex(text, -1)
	docs := make([]document, 0, len(locs)+1)
	prev := 0
	sep := ""
	for _, loc := range locs {
		docs = append(docs, document{separator: sep, body: text[prev:loc[0]]})
		sep = text[loc[0]:loc[1]]
		prev = loc[1]
	}
	return append(docs, document{separator: sep, body: text[prev:]})
}

func joinDocuments(docs []document) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.separator)
		b.WriteString(d.body)
	}
	return b.String()
}

// defaultDocument is where keys absent from every document are inserted: the
// first body, unless it is blank and a separator follows it.
func defaultDocument(docs []document) int {
	if len(docs) == 1 || strings.TrimSpace(docs[0].body) != "" {
		return 0
	}
	return 1
}

// UpdateDocuments applies updates to a stream of "---" separated documents.
// Each key goes to the first document that already holds it, or to the first
// non-blank document when none does. WithUpdateAll applies every key to each
// non-empty document instead. Separators and untouched documents are kept
// byte for byte.
func UpdateDocuments(updates UpdateSet, text string, opts ...Option) (string, error) {
	u := newUpdater(opts)
	docs := splitDocuments(text)
	target := defaultDocument(docs)

	for _, f := range updates {
		var (
			selected []int
			err      error
		)
		if u.opts.updateAll {
			selected, err = nonEmptyDocuments(docs)
		} else {
			selected, err = documentHolding(docs, f.Key)
		}
		if err != nil {
			return "", err
		}
		if len(selected) == 0 {
			selected = []int{target}
		}
		for _, i := range selected {
			u.opts.logger.Debug("yaml document selected", "key", f.Key, "document", i)
			docs[i].body, err = u.updateKey(nil, f.Key, f.Value, docs[i].body)
			if err != nil {
				return "", fmt.Errorf("document %d: %w", i, err)
			}
		}
	}
	return joinDocuments(docs), nil
}

// UpdateDocumentsJSON decodes updatesJSON, a JSON object, and applies it with
// UpdateDocuments.
func UpdateDocumentsJSON(updatesJSON, text string, opts ...Option) (string, error) {
	updates, err := DecodeUpdates(updatesJSON)
	if err != nil {
		return "", err
	}
	return UpdateDocuments(updates, text, opts...)
}

func documentHolding(docs []document, key string) ([]int, error) {
	for i, d := range docs {
		pd, err := parseDocument(d.body)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if !pd.root.IsMapping() {
			continue
		}
		if _, ok := pd.root.Lookup(key); ok {
			return []int{i}, nil
		}
	}
	return nil, nil
}

func nonEmptyDocuments(docs []document) ([]int, error) {
	var out []int
	for i, d := range docs {
		pd, err := parseDocument(d.body)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if !pd.empty() {
			out = append(out, i)
		}
	}
	return out, nil
}
