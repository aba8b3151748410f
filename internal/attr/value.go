package attr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind identifies the concrete case of a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindText
	KindList
	KindObject
)

var kindNames = [...]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindText:   "text",
	KindList:   "list",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a sealed interface over the attribute value cases.
type Value interface {
	attrValue()
	Kind() Kind
}

// Absent marks a key that does not exist on a record.
type Absent struct{}

// Null marks a key that exists without a value.
type Null struct{}

// Bool is a boolean attribute value.
type Bool bool

// Number is a numeric attribute value. Integers and decimals share one case.
type Number float64

// Text is a string attribute value.
type Text string

// List is an ordered list of values, typically text (multi-select choices).
type List []Value

// Object is a structured value such as {"value": 99.99, "unit": "USD"}.
type Object map[string]Value

func (Absent) attrValue() {}
func (Null) attrValue()   {}
func (Bool) attrValue()   {}
func (Number) attrValue() {}
func (Text) attrValue()   {}
func (List) attrValue()   {}
func (Object) attrValue() {}

func (Absent) Kind() Kind { return KindAbsent }
func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (Text) Kind() Kind   { return KindText }
func (List) Kind() Kind   { return KindList }
func (Object) Kind() Kind { return KindObject }

// TextList builds a List of Text values.
func TextList(items ...string) List {
	l := make(List, len(items))
	for i, s := range items {
		l[i] = Text(s)
	}
	return l
}

// IsMissing reports whether v is Absent or Null (or a nil interface).
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	k := v.Kind()
	return k == KindAbsent || k == KindNull
}

// KindOf returns the kind of v, treating a nil interface as Absent.
func KindOf(v Value) Kind {
	if v == nil {
		return KindAbsent
	}
	return v.Kind()
}

// FromGo converts a decoded JSON or YAML value into a Value.
// Accepts nil, bool, every Go integer and float type, json.Number, string,
// []any and map[string]any. YAML timestamps (time.Time) become RFC 3339 text.
// Anything else is rejected.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return Text(val), nil
	case float64:
		return number(val)
	case float32:
		return number(float64(val))
	case int:
		return Number(val), nil
	case int8:
		return Number(val), nil
	case int16:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case uint8:
		return Number(val), nil
	case uint16:
		return Number(val), nil
	case uint32:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", val.String(), err)
		}
		return number(f)
	case time.Time:
		return Text(val.UTC().Format(time.RFC3339Nano)), nil
	case []string:
		return TextList(val...), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			item, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = item
		}
		return list, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			item, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = item
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

func number(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number: %v", f)
	}
	return Number(f), nil
}

// ToGo converts v back into plain Go data: nil, bool, float64, string,
// []any or map[string]any. Absent converts to nil.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, Absent, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case Text:
		return string(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}

// Decode parses a single JSON document into a Value.
// Numbers are decoded through json.Number so large integers keep their digits
// until the final float conversion.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromGo(raw)
}

// Marshal encodes v as JSON. Object keys are sorted. Absent cannot be encoded.
func Marshal(v Value) ([]byte, error) {
	if KindOf(v) == KindAbsent {
		return nil, fmt.Errorf("absent value cannot be encoded")
	}
	return MarshalCanonical(v)
}

// MarshalJSON implements json.Marshaler for List.
func (l List) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(l)
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
func (o Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(o)
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (l *List) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	list, ok := v.(List)
	if !ok {
		return fmt.Errorf("expected JSON array, got %s", v.Kind())
	}
	*l = list
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", v.Kind())
	}
	*o = obj
	return nil
}
