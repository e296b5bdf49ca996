package yamlupdate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	gyaml "github.com/goccy/go-yaml"
)

// DecodeUpdates decodes a JSON object into an UpdateSet, keeping the key
// order of the document. Numbers with a fraction or exponent become floats,
// all others integers. A repeated key keeps its first position and its last
// value.
func DecodeUpdates(updatesJSON string) (UpdateSet, error) {
	dec := json.NewDecoder(strings.NewReader(updatesJSON))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, updatesJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: %q: trailing data after top-level value", ErrDecode, updatesJSON)
	}
	if !v.IsMapping() {
		return nil, fmt.Errorf("%w: %q: top-level value is a %s, not an object", ErrDecode, updatesJSON, v.kind)
	}
	return UpdateSet(v.Fields()), nil
}

// decodeJSONValue reads one value from the token stream. encoding/json only
// preserves object key order at the token level.
func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			fields := []Field{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", kt)
				}
				fv, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, fmt.Errorf("%s: %w", key, err)
				}
				fields = setField(fields, key, fv)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Map(fields...), nil
		case '[':
			items := []Value{}
			for dec.More() {
				iv, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, fmt.Errorf("[%d]: %w", len(items), err)
				}
				items = append(items, iv)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Seq(items...), nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return ValueOf(t)
	}
}

// DecodeUpdatesYAML decodes a YAML mapping into an UpdateSet, keeping the key
// order of the document. A null or "~" value deletes the key.
func DecodeUpdatesYAML(updatesYAML string) (UpdateSet, error) {
	var ms gyaml.MapSlice
	if err := gyaml.UnmarshalWithOptions([]byte(updatesYAML), &ms, gyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, updatesYAML, err)
	}
	v, err := ValueOf(ms)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, updatesYAML, err)
	}
	return UpdateSet(v.Fields()), nil
}
