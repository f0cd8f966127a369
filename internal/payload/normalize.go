// Package payload turns backend list responses of uncertain shape into record slices.
//
// The backend answers list endpoints either with a wrapped object such as
// {"orders": [...]} or with a bare JSON array. Normalize accepts both and
// degrades to an empty list with a diagnostic for anything else.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Result carries the extracted records and, when extraction failed, a
// human-readable description of what was received instead.
type Result struct {
	Records    []json.RawMessage
	Diagnostic string
}

// OK reports whether the payload had one of the recognised shapes.
func (r Result) OK() bool {
	return r.Diagnostic == ""
}

// Normalize extracts the record list from raw. The lookup order is raw[key]
// when it is an array, then raw itself when it is an array. Any other shape
// yields an empty list and a diagnostic naming the top-level keys found.
func Normalize(raw []byte, key string) Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return failure(key, "payload is empty")
	}

	switch trimmed[0] {
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return failure(key, "payload is not valid JSON: "+err.Error())
		}
		if value, ok := object[key]; ok {
			if records, ok := asArray(value); ok {
				return Result{Records: records}
			}
		}
		return failure(key, "top-level keys: ["+strings.Join(sortedKeys(object), ", ")+"]")
	case '[':
		records, ok := asArray(trimmed)
		if !ok {
			return failure(key, "payload is not a valid JSON array")
		}
		return Result{Records: records}
	default:
		var scalar any
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return failure(key, "payload is not valid JSON: "+err.Error())
		}
		return failure(key, "payload is a JSON "+kindOf(scalar))
	}
}

// Decode normalizes raw and decodes every record into T. Records that do not
// decode are skipped and noted in the returned diagnostic.
func Decode[T any](raw []byte, key string) ([]T, string) {
	result := Normalize(raw, key)
	items := make([]T, 0, len(result.Records))
	var skipped []string
	for i, record := range result.Records {
		var item T
		if err := json.Unmarshal(record, &item); err != nil {
			skipped = append(skipped, fmt.Sprintf("#%d: %v", i, err))
			continue
		}
		items = append(items, item)
	}

	diagnostic := result.Diagnostic
	if len(skipped) > 0 {
		note := fmt.Sprintf("skipped %d of %d %s records (%s)", len(skipped), len(result.Records), key, strings.Join(skipped, "; "))
		if diagnostic != "" {
			diagnostic += "; "
		}
		diagnostic += note
	}
	return items, diagnostic
}

func asArray(value json.RawMessage) ([]json.RawMessage, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || value[0] != '[' {
		return nil, false
	}
	var records []json.RawMessage
	if err := json.Unmarshal(value, &records); err != nil {
		return nil, false
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, true
}

func failure(key, detail string) Result {
	return Result{
		Records:    []json.RawMessage{},
		Diagnostic: fmt.Sprintf("expected %q array or a bare array; %s", key, detail),
	}
}

func sortedKeys(object map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(object))
	for k := range object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
