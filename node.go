package yamlupdate

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// valueToNode builds the yaml.v3 node for v, keeping mapping order. Tags are
// set so the encoder quotes strings that would otherwise resolve to another
// type.
func valueToNode(v Value) *yaml.Node {
	switch v.kind {
	case stringValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case boolValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case intValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.i, 10)}
	case uintValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v.u, 10)}
	case floatValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v.f)}
	case seqValue:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.items {
			seq.Content = append(seq.Content, valueToNode(it))
		}
		return seq
	case mapValue:
		return mappingNode(v.fields...)
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func mappingNode(fields ...Field) *yaml.Node {
	mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		mp.Content = append(mp.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			valueToNode(f.Value),
		)
	}
	return mp
}

// formatFloat renders f so that it reads back as a float: integral values
// keep a ".0" suffix.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
