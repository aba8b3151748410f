package attr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces deterministic JSON for values and plain Go data.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Numbers use the shortest round-trip decimal form
//
// Saved queries, golden traces and CLI output all go through here so the same
// input always serializes to the same bytes.
func MarshalCanonical(v any) ([]byte, error) {
	return marshal(v, true)
}

// MarshalExact is MarshalCanonical without NFC normalization: strings and
// object keys keep their bytes. Persisted data that must decode back to
// the identical value goes through here.
func MarshalExact(v any) ([]byte, error) {
	return marshal(v, false)
}

func marshal(v any, nfc bool) ([]byte, error) {
	w := &writer{nfc: nfc}
	if err := w.write(v); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// writer accumulates one canonical document. nfc selects whether strings
// are normalized.
type writer struct {
	buf bytes.Buffer
	nfc bool
}

func (w *writer) write(v any) error {
	buf := &w.buf
	switch val := v.(type) {
	case Absent:
		return fmt.Errorf("absent value cannot be encoded")
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		writeBool(buf, bool(val))
	case bool:
		writeBool(buf, val)
	case Number:
		return writeNumber(buf, float64(val))
	case Text:
		return w.writeString(string(val))
	case string:
		return w.writeString(val)
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := w.write(elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := w.write(elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []string:
		return w.write(TextList(val...))
	case Object:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			m[k] = elem
		}
		return w.writeObject(m)
	case map[string]any:
		return w.writeObject(val)
	default:
		converted, err := FromGo(v)
		if err != nil {
			return fmt.Errorf("unsupported type for canonical JSON: %T", v)
		}
		return w.write(converted)
	}
	return nil
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteString("true")
		return
	}
	buf.WriteString("false")
}

func writeNumber(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number: %v", f)
	}
	if f == 0 {
		buf.WriteByte('0')
		return nil
	}
	if math.Abs(f) < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
	return nil
}

// writeString writes a JSON string without HTML escaping.
func (w *writer) writeString(s string) error {
	if w.nfc {
		s = norm.NFC.String(s)
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encoder appends a newline.
	w.buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

func (w *writer) writeObject(m map[string]any) error {
	buf := &w.buf
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := w.writeString(k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := w.write(m[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareKeysUTF16 orders strings by UTF-16 code units.
// Go string comparison uses UTF-8 bytes, which differs above the BMP.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
