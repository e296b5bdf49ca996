package yamlupdate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// parsedDoc is the parser's view of a document or nested block. The text stays
// authoritative; the tree only answers "is the key there" and "is it equal".
type parsedDoc struct {
	root Value
	// explicit holds the root keys written in the block itself, as opposed to
	// keys inherited through a "<<" merge.
	explicit map[string]bool
}

func (d parsedDoc) empty() bool { return d.root.IsNull() }

func parseDocument(text string) (parsedDoc, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return parsedDoc{}, fmt.Errorf("%w: %q: %w", ErrParse, text, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return parsedDoc{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return parsedDoc{}, nil
	}
	v, err := nodeToValue(root)
	if err != nil {
		return parsedDoc{}, fmt.Errorf("%w: %q: %w", ErrParse, text, err)
	}
	pd := parsedDoc{root: v, explicit: map[string]bool{}}
	if root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			if k := root.Content[i]; !isMergeKey(k) {
				pd.explicit[resolveAlias(k).Value] = true
			}
		}
	}
	return pd, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && n.ShortTag() == "!!merge"
}

// nodeToValue converts a parsed node. Aliases are followed and "<<" merge
// keys are expanded; explicit keys win over merged ones.
func nodeToValue(n *yaml.Node) (Value, error) {
	n = resolveAlias(n)
	if n == nil {
		return Value{}, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return Value{}, err
		}
		return ValueOf(x)

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			iv, err := nodeToValue(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, iv)
		}
		return Seq(items...), nil

	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		var merges []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if isMergeKey(k) {
				merges = append(merges, val)
				continue
			}
			fv, err := nodeToValue(val)
			if err != nil {
				return Value{}, err
			}
			fields = setField(fields, resolveAlias(k).Value, fv)
		}
		for _, m := range merges {
			m = resolveAlias(m)
			sources := []*yaml.Node{m}
			if m.Kind == yaml.SequenceNode {
				sources = m.Content
			}
			for _, src := range sources {
				sv, err := nodeToValue(src)
				if err != nil {
					return Value{}, err
				}
				if !sv.IsMapping() {
					return Value{}, fmt.Errorf("line %d: merge source is not a mapping", src.Line)
				}
				for _, f := range sv.fields {
					if _, ok := lookupField(fields, f.Key); !ok {
						fields = append(fields, f)
					}
				}
			}
		}
		return Map(fields...), nil
	}
	return Value{}, nil
}

func lookupField(fields []Field, key string) (Value, bool) {
	return Value{kind: mapValue, fields: fields}.Lookup(key)
}

// equalValues compares two values the way JSON documents compare: mapping
// order is ignored and numbers compare by value, so 1 equals 1.0.
func equalValues(a, b Value) bool {
	if a.kind == nullValue || b.kind == nullValue {
		return a.kind == b.kind
	}
	if a.kind == seqValue || b.kind == seqValue {
		if a.kind != b.kind || len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !equalValues(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	if a.kind == mapValue || b.kind == mapValue {
		if a.kind != b.kind || len(a.fields) != len(b.fields) {
			return false
		}
		for _, f := range a.fields {
			bv, ok := b.Lookup(f.Key)
			if !ok || !equalValues(f.Value, bv) {
				return false
			}
		}
		return true
	}
	switch {
	case a.kind == stringValue || b.kind == stringValue:
		return a.kind == b.kind && a.str == b.str
	case a.kind == boolValue || b.kind == boolValue:
		return a.kind == b.kind && a.b == b.b
	}
	return equalNumbers(a, b)
}

func equalNumbers(a, b Value) bool {
	if a.kind == floatValue || b.kind == floatValue {
		return a.float() == b.float()
	}
	if a.kind == b.kind {
		return a.i == b.i && a.u == b.u
	}
	i, u := a.i, b.u
	if a.kind == uintValue {
		i, u = b.i, a.u
	}
	return i >= 0 && uint64(i) == u
}
