// Package payload normalizes the unstable JSON shapes returned by workflow
// webhooks into flat record lists.
package payload

import (
	"encoding/json"
	"strings"
)

// Record is one decoded JSON object.
type Record = map[string]any

// MaxDepth bounds recursion into nested wrappers. Anything nested deeper is
// dropped.
const MaxDepth = 32

// idKeys mark a record as a ticket rather than a response envelope.
var idKeys = []string{"ticket_id", "ticket-id", "ticketId", "id"}

// Flatten unwraps arrays, ragged nested arrays and single-key object wrappers
// into a flat sequence of records. Objects with more than one key are terminal
// and scalar leaves are dropped.
func Flatten(node any) []Record {
	return flatten(node, 0)
}

func flatten(node any, depth int) []Record {
	if depth > MaxDepth {
		return nil
	}
	switch v := node.(type) {
	case []any:
		var out []Record
		for _, child := range v {
			out = append(out, flatten(child, depth+1)...)
		}
		return out
	case []Record:
		var out []Record
		for _, child := range v {
			out = append(out, flatten(child, depth+1)...)
		}
		return out
	case Record:
		if v == nil {
			return nil
		}
		if len(v) == 1 {
			for _, inner := range v {
				if isContainer(inner) {
					return flatten(inner, depth+1)
				}
			}
		}
		return []Record{v}
	default:
		return nil
	}
}

// Records flattens node and additionally replaces response envelopes, records
// that carry a "data" container but no ticket identifier, with their contents.
func Records(node any) []Record {
	return records(node, 0)
}

func records(node any, depth int) []Record {
	if depth > MaxDepth {
		return nil
	}
	flat := flatten(node, depth)
	out := make([]Record, 0, len(flat))
	for _, rec := range flat {
		if inner, ok := envelopeData(rec); ok {
			out = append(out, records(inner, depth+1)...)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Unwrap returns the first record of node, descending through "data"
// envelopes. It returns an empty record when nothing usable is present.
func Unwrap(node any) Record {
	current := node
	for depth := 0; depth <= MaxDepth; depth++ {
		switch v := current.(type) {
		case []any:
			current = firstNonNil(v)
			continue
		case []Record:
			if len(v) == 0 {
				return Record{}
			}
			current = v[0]
			continue
		case Record:
			if v == nil {
				return Record{}
			}
			if inner, ok := envelopeData(v); ok {
				current = inner
				continue
			}
			return v
		}
		break
	}
	return Record{}
}

// Options collects the non-empty "option" values of every record.
func Options(node any) []string {
	var out []string
	for _, rec := range Records(node) {
		if s, ok := rec["option"].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Decode parses a raw body into a generic JSON value.
func Decode(raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	return node, nil
}

func envelopeData(rec Record) (any, bool) {
	inner, ok := rec["data"]
	if !ok || !isContainer(inner) {
		return nil, false
	}
	for _, key := range idKeys {
		if _, has := rec[key]; has {
			return nil, false
		}
	}
	return inner, true
}

func isContainer(v any) bool {
	switch v.(type) {
	case []any, []Record, Record:
		return true
	}
	return false
}

func firstNonNil(items []any) any {
	for _, item := range items {
		if item != nil {
			return item
		}
	}
	return nil
}
