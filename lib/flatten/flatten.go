// Package flatten reduces arbitrarily nested catalog records into
// single-level key to value mappings with deterministic compound keys.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const sep = "_"

// Record is one nested product or variant payload as decoded from JSON.
// Decode with json.Decoder.UseNumber so numeric leaves keep their source
// text, product ids overflow float64.
type Record map[string]any

// Flat maps compound keys to rendered scalar values. No value is itself
// a nested structure.
type Flat map[string]string

// Flatten walks the record recursively.
//
// Nested records extend the key path with "_". A list whose first element
// is a record becomes one key family per positional index ("images_0_src",
// "images_1_src", ...). A list of scalars collapses to a single
// "|"-joined value, the empty list to "". Keys containing "_" themselves
// can collide with path-built keys; that ambiguity is inherent to the
// naming scheme and left to the caller to detect.
func Flatten(r Record) Flat {
	out := Flat{}
	flattenInto(out, "", r)
	return out
}

func flattenInto(out Flat, prefix string, r Record) {
	for k, v := range r {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		if rec, ok := asRecord(v); ok {
			flattenInto(out, key, rec)
			continue
		}
		if list, ok := v.([]any); ok {
			flattenList(out, key, list)
			continue
		}
		out[key] = renderScalar(v)
	}
}

func flattenList(out Flat, key string, list []any) {
	if len(list) == 0 {
		out[key] = ""
		return
	}
	// only the first element decides whether this is a record list,
	// matching how heterogeneous catalogs are interpreted downstream
	if _, ok := asRecord(list[0]); ok {
		for i, item := range list {
			indexed := key + sep + strconv.Itoa(i)
			if rec, ok := asRecord(item); ok {
				flattenInto(out, indexed, rec)
			} else {
				out[indexed] = renderScalar(item)
			}
		}
		return
	}

	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = renderScalar(item)
	}
	out[key] = strings.Join(parts, "|")
}

func asRecord(v any) (Record, bool) {
	switch rec := v.(type) {
	case Record:
		return rec, true
	case map[string]any:
		return Record(rec), true
	}
	return nil, false
}

func renderScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
