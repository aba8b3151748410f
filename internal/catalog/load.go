package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/skuquery/internal/attr"
)

// LoadFile reads a snapshot from a .json, .yaml or .yml file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err = DecodeJSON(data)
	case ".yaml", ".yml":
		records, err = DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q (expected .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	snap, err := NewSnapshot(records)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}

// DecodeJSON parses records from JSON. The document is either an array of
// records or an object with a "records" array.
func DecodeJSON(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

// DecodeYAML parses records from YAML in the same shapes DecodeJSON accepts.
func DecodeYAML(data []byte) ([]Record, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

// DecodeData converts already-decoded JSON or YAML data in the shapes
// DecodeJSON accepts.
func DecodeData(raw any) ([]Record, error) {
	return decodeDocument(raw)
}

func decodeDocument(raw any) ([]Record, error) {
	var items []any
	switch doc := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		items = doc
	case map[string]any:
		list, ok := doc["records"]
		if !ok {
			return nil, fmt.Errorf("expected top-level array or \"records\" key")
		}
		if list == nil {
			return nil, nil
		}
		items, ok = list.([]any)
		if !ok {
			return nil, fmt.Errorf("\"records\" must be an array, got %T", list)
		}
	default:
		return nil, fmt.Errorf("expected top-level array or object, got %T", raw)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		r, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(raw any) (Record, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("expected object, got %T", raw)
	}

	var r Record
	var err error
	if r.ID, err = stringField(m, FieldID); err != nil {
		return Record{}, err
	}
	if r.SKU, err = stringField(m, FieldSKU); err != nil {
		return Record{}, err
	}
	if r.CreatedAt, err = millisField(m, FieldCreatedAt); err != nil {
		return Record{}, err
	}
	if r.UpdatedAt, err = millisField(m, FieldUpdatedAt); err != nil {
		return Record{}, err
	}
	if r.Attributes, err = decodeAttributes(m["attributes"]); err != nil {
		return Record{}, err
	}
	return r, nil
}

// decodeAttributes accepts a list of {key, value} pairs, which keeps file
// order, or a key -> value map, which is ordered by key.
func decodeAttributes(raw any) ([]Attribute, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		attrs := make([]Attribute, 0, len(v))
		for i, item := range v {
			pair, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("attributes[%d]: expected {key, value}, got %T", i, item)
			}
			key, ok := pair["key"].(string)
			if !ok {
				return nil, fmt.Errorf("attributes[%d]: key must be a string", i)
			}
			val, err := attr.FromGo(pair["value"])
			if err != nil {
				return nil, fmt.Errorf("attributes[%d] %q: %w", i, key, err)
			}
			attrs = append(attrs, Attribute{Key: key, Value: val})
		}
		return attrs, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make([]Attribute, 0, len(keys))
		for _, k := range keys {
			val, err := attr.FromGo(v[k])
			if err != nil {
				return nil, fmt.Errorf("attributes %q: %w", k, err)
			}
			attrs = append(attrs, Attribute{Key: k, Value: val})
		}
		return attrs, nil
	default:
		return nil, fmt.Errorf("attributes: expected list or map, got %T", raw)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case int:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
}

func millisField(m map[string]any, key string) (int64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, nil
	}
	v, err := attr.FromGo(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	n, ok := v.(attr.Number)
	if !ok {
		return 0, fmt.Errorf("%s: expected milliseconds, got %s", key, v.Kind())
	}
	return int64(n), nil
}
