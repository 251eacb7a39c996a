package vectorstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// EncodeMetadata flattens metadata into engine-safe scalars. Strings, bools
// and numbers pass through (integers as int64, floats as float64); slices,
// arrays and maps become their JSON encoding; anything else is stringified
// with fmt.Sprint. DecodeMetadataValue is the inverse for the JSON case.
func EncodeMetadata(metadata map[string]any) map[string]any {
	flat := make(map[string]any, len(metadata))
	for key, value := range metadata {
		flat[key] = encodeValue(value)
	}
	return flat
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string, bool, int64, float64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return unsignedValue(uint64(v))
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return unsignedValue(v)
	case float32:
		return float64(v)
	case json.Number:
		return numberValue(v)
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(raw)
	}
	return fmt.Sprint(value)
}

// unsignedValue keeps integers that fit as int64 and widens the rest to
// float64 instead of letting them wrap negative.
func unsignedValue(v uint64) any {
	if v > math.MaxInt64 {
		return float64(v)
	}
	return int64(v)
}

// DecodeMetadataValue reverses the JSON encoding applied by EncodeMetadata
// to structured values. Strings that are not a JSON array or object, and
// non-string values, are returned unchanged.
func DecodeMetadataValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return value
	}
	if !(trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']') &&
		!(trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}') {
		return value
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return value
	}
	return decoded
}

// MarshalMetadata serializes flattened metadata for engines that store it
// as a JSON document.
func MarshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return json.Marshal(metadata)
}

// UnmarshalMetadata reads metadata written by MarshalMetadata, restoring
// integral numbers as int64 and others as float64.
func UnmarshalMetadata(raw []byte) (map[string]any, error) {
	metadata := map[string]any{}
	if len(raw) == 0 {
		return metadata, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&metadata); err != nil {
		return nil, err
	}
	for key, value := range metadata {
		if n, ok := value.(json.Number); ok {
			metadata[key] = numberValue(n)
		}
	}
	return metadata, nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func scalarEqual(a, b any) bool {
	a, b = encodeValue(a), encodeValue(b)
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
