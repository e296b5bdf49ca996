package yamlupdate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	gyaml "github.com/goccy/go-yaml"
)

// Kind is the update strategy a desired value selects.
type Kind int

const (
	// KindDelete removes the key.
	KindDelete Kind = iota
	// KindSimple replaces the key's whole value (scalars and sequences).
	KindSimple
	// KindStructured merges a mapping into the existing mapping, key by key.
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindDelete:
		return "delete"
	case KindSimple:
		return "simple"
	case KindStructured:
		return "structured"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type valueKind uint8

const (
	nullValue valueKind = iota
	stringValue
	boolValue
	intValue
	uintValue
	floatValue
	seqValue
	mapValue
)

// Value is a desired or current YAML value. The zero Value is null, which as a
// desired value means "delete the key".
type Value struct {
	kind   valueKind
	str    string
	b      bool
	i      int64
	u      uint64
	f      float64
	items  []Value
	fields []Field
}

// Field is one key of a mapping Value.
type Field struct {
	Key   string
	Value Value
}

// UpdateSet is an ordered set of key updates. Fields are applied in order and
// later fields see the text produced by earlier ones.
type UpdateSet []Field

// Delete returns the null value, which removes a key when used as an update.
func Delete() Value { return Value{} }

// String returns a string scalar.
func String(s string) Value { return Value{kind: stringValue, str: s} }

// Bool returns a boolean scalar.
func Bool(b bool) Value { return Value{kind: boolValue, b: b} }

// Int returns an integer scalar.
func Int(i int64) Value { return Value{kind: intValue, i: i} }

// Uint returns an unsigned integer scalar.
func Uint(u uint64) Value { return Value{kind: uintValue, u: u} }

// Float returns a floating point scalar.
func Float(f float64) Value { return Value{kind: floatValue, f: f} }

// Seq returns a sequence of the given items.
func Seq(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: seqValue, items: items}
}

// Map returns a mapping holding fields in the given order.
func Map(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: mapValue, fields: fields}
}

// Set is shorthand for Field{Key: key, Value: v}.
func Set(key string, v Value) Field { return Field{Key: key, Value: v} }

// Classify reports how an update with v is carried out.
func Classify(v Value) Kind {
	switch v.kind {
	case nullValue:
		return KindDelete
	case mapValue:
		return KindStructured
	default:
		return KindSimple
	}
}

func (k valueKind) String() string {
	switch k {
	case stringValue:
		return "string"
	case boolValue:
		return "bool"
	case intValue, uintValue:
		return "int"
	case floatValue:
		return "float"
	case seqValue:
		return "sequence"
	case mapValue:
		return "mapping"
	default:
		return "null"
	}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == nullValue }

// IsMapping reports whether v is a mapping.
func (v Value) IsMapping() bool { return v.kind == mapValue }

// IsSequence reports whether v is a sequence.
func (v Value) IsSequence() bool { return v.kind == seqValue }

// Fields returns the fields of a mapping, or nil.
func (v Value) Fields() []Field { return v.fields }

// Items returns the items of a sequence, or nil.
func (v Value) Items() []Value { return v.items }

// Lookup returns the value stored under key in a mapping.
func (v Value) Lookup(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Interface converts v into plain Go values: nil, string, bool, int64,
// uint64, float64, []any and gyaml.MapSlice for mappings.
func (v Value) Interface() any {
	switch v.kind {
	case stringValue:
		return v.str
	case boolValue:
		return v.b
	case intValue:
		return v.i
	case uintValue:
		return v.u
	case floatValue:
		return v.f
	case seqValue:
		out := make([]any, 0, len(v.items))
		for _, it := range v.items {
			out = append(out, it.Interface())
		}
		return out
	case mapValue:
		out := make(gyaml.MapSlice, 0, len(v.fields))
		for _, f := range v.fields {
			out = append(out, gyaml.MapItem{Key: f.Key, Value: f.Value.Interface()})
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders v as JSON keeping mapping order. Integral floats below
// 1e21 are written in positional notation.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case nullValue:
		buf.WriteString("null")
	case stringValue:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case boolValue:
		buf.WriteString(strconv.FormatBool(v.b))
	case intValue:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case uintValue:
		buf.WriteString(strconv.FormatUint(v.u, 10))
	case floatValue:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("%v has no JSON representation", v.f)
		}
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e21 {
			buf.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))
		} else {
			buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case seqValue:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case mapValue:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// float returns a numeric scalar as float64.
func (v Value) float() float64 {
	switch v.kind {
	case intValue:
		return float64(v.i)
	case uintValue:
		return float64(v.u)
	default:
		return v.f
	}
}

// ValueOf converts a plain Go value into a Value. Ordered mappings
// (gyaml.MapSlice) keep their order; Go maps are sorted by key.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		return numberValue(string(t)), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, e := range t {
			iv, err := ValueOf(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, iv)
		}
		return Seq(items...), nil
	case gyaml.MapSlice:
		fields := make([]Field, 0, len(t))
		for _, it := range t {
			fv, err := ValueOf(it.Value)
			if err != nil {
				return Value{}, fmt.Errorf("%v: %w", it.Key, err)
			}
			fields = setField(fields, fmt.Sprint(it.Key), fv)
		}
		return Map(fields...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(t))
		for _, k := range keys {
			fv, err := ValueOf(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			fields = append(fields, Field{Key: k, Value: fv})
		}
		return Map(fields...), nil
	case map[any]any:
		keyed := make(map[string]any, len(t))
		for k, e := range t {
			keyed[fmt.Sprint(k)] = e
		}
		return ValueOf(keyed)
	}
	return valueOfReflect(reflect.ValueOf(x))
}

func valueOfReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return ValueOf(items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keyed := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keyed[iter.Key().String()] = iter.Value().Interface()
		}
		return ValueOf(keyed)
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, rv.Interface())
}

// numberValue types a JSON number literal: anything with a fraction or an
// exponent is a float, everything else the narrowest fitting integer.
func numberValue(lit string) Value {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i)
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return Uint(u)
		}
	}
	f, _ := strconv.ParseFloat(lit, 64)
	return Float(f)
}

// setField replaces the value of an existing key in place or appends it.
func setField(fields []Field, key string, v Value) []Field {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = v
			return fields
		}
	}
	return append(fields, Field{Key: key, Value: v})
}

// pruned drops null fields from mappings, recursively. Sequences are literal
// values and are left alone.
func (v Value) pruned() Value {
	if v.kind != mapValue {
		return v
	}
	fields := make([]Field, 0, len(v.fields))
	for _, f := range v.fields {
		if f.Value.IsNull() {
			continue
		}
		fields = append(fields, Field{Key: f.Key, Value: f.Value.pruned()})
	}
	return Map(fields...)
}

// mergeValues merges upd into cur keeping cur's key order. Null fields of upd
// remove keys, nested mappings merge, anything else replaces.
func mergeValues(cur, upd Value) Value {
	if !cur.IsMapping() || !upd.IsMapping() {
		return upd.pruned()
	}
	fields := make([]Field, len(cur.fields))
	copy(fields, cur.fields)
	for _, f := range upd.fields {
		idx := -1
		for i := range fields {
			if fields[i].Key == f.Key {
				idx = i
				break
			}
		}
		switch {
		case f.Value.IsNull():
			if idx >= 0 {
				fields = append(fields[:idx], fields[idx+1:]...)
			}
		case idx >= 0:
			fields[idx].Value = mergeValues(fields[idx].Value, f.Value)
		default:
			fields = append(fields, Field{Key: f.Key, Value: f.Value.pruned()})
		}
	}
	return Map(fields...)
}
