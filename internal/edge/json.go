package edge

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Object is one JSON object from an API response. The Akamai APIs are
// schema-loose, so fetchers read fields through the typed getters below
// instead of decoding into rigid structs.
type Object map[string]any

// Str returns the first key whose value is a non-empty string.
func (o Object) Str(keys ...string) string {
	for _, k := range keys {
		if s, ok := o[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first key holding a usable integer. JSON numbers decode as
// float64; some endpoints return versions as strings.
func (o Object) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		switch v := o[k].(type) {
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// Obj returns a nested object, or an empty Object when absent.
func (o Object) Obj(key string) Object {
	if m, ok := o[key].(map[string]any); ok {
		return Object(m)
	}
	return Object{}
}

// List returns a nested array of objects; non-object elements are skipped.
func (o Object) List(key string) []Object {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}

// Strings returns a nested array of strings; non-string elements are skipped.
func (o Object) Strings(key string) []string {
	arr, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Field returns the string form of an arbitrary scalar field, for CSV cells.
func (o Object) Field(key string) string {
	switch v := o[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// DecodeList normalizes a response body into a flat object list. The Akamai
// APIs wrap lists inconsistently: sometimes the body is the list itself,
// sometimes {"key": [...]}, sometimes {"key": {"items": [...]}}, sometimes a
// bare {"items": [...]}. Resolution order:
//
//  1. list-shaped body → the body itself
//  2. each envelope key in order: a direct array, or an object's "items"
//  3. top-level "items"
//  4. otherwise empty
func DecodeList(body []byte, envelopes ...string) ([]Object, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var arr []Object
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}

	var root Object
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}

	for _, key := range envelopes {
		if items := root.List(key); items != nil {
			return items, nil
		}
		if inner := root.Obj(key); len(inner) > 0 {
			if items := inner.List("items"); items != nil {
				return items, nil
			}
		}
	}
	if items := root.List("items"); items != nil {
		return items, nil
	}
	return nil, nil
}

// DecodeStrings is DecodeList for endpoints that return plain string lists
// (GTM domain names), with the same envelope fallback rule.
func DecodeStrings(body []byte, envelopes ...string) ([]string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}

	var root Object
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, err
	}
	for _, key := range envelopes {
		if vals := root.Strings(key); vals != nil {
			return vals, nil
		}
	}
	if vals := root.Strings("items"); vals != nil {
		return vals, nil
	}
	return nil, nil
}
