// Package extjson decodes Mongo-style extended JSON values: identifiers that
// may be bare or wrapped as {"$oid": ...} and timestamps that may be wrapped
// as {"$date": ...}, a bare epoch number, or a bare ISO-8601 string.
// Both encodings of a value normalize to the same logical result
package extjson

import (
	"encoding/json"
	"strconv"
	"time"

	perr "chatlake/internal/platform/errors"
)

// Object is one decoded candidate or reference entry
type Object = map[string]any

// Decode parses raw candidate text into an Object
func Decode(raw string) (Object, error) {
	var obj Object
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "candidate decode failed")
	}
	return obj, nil
}

// Lookup is one extraction attempt in an ordered chain
type Lookup func() (string, bool)

// FirstNonEmpty runs attempts in order and returns the first non-empty value.
// Used for message ids, foreign keys, and phone extraction alike
func FirstNonEmpty(attempts ...Lookup) (string, bool) {
	for _, at := range attempts {
		if v, ok := at(); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Identifier unwraps an id value: {"$oid": "..."} yields the inner string,
// a bare string is returned as is, a bare number is formatted without exponent
func Identifier(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case map[string]any:
		if oid, ok := t["$oid"].(string); ok && oid != "" {
			return oid, true
		}
		return "", false
	default:
		return "", false
	}
}

// ID extracts the object's own identifier from the given key (usually "_id")
func ID(obj Object, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	return Identifier(v)
}

// ForeignKey extracts a reference identifier from the first of keys that
// yields a non-empty value, accepting either identifier encoding
func ForeignKey(obj Object, keys ...string) (string, bool) {
	if obj == nil {
		return "", false
	}
	attempts := make([]Lookup, 0, len(keys))
	for _, k := range keys {
		k := k
		attempts = append(attempts, func() (string, bool) {
			v, ok := obj[k]
			if !ok {
				return "", false
			}
			return Identifier(v)
		})
	}
	return FirstNonEmpty(attempts...)
}

// epochMillisCutoff disambiguates seconds from milliseconds
const epochMillisCutoff = 1e12

// isoLayouts are tried in order for bare and wrapped ISO strings
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes any of the three timestamp encodings to UTC.
// A failed decode yields ok=false, never an error
func Timestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case map[string]any:
		inner, ok := t["$date"]
		if !ok {
			return time.Time{}, false
		}
		switch d := inner.(type) {
		case string:
			return parseISO(d)
		case float64:
			return fromEpoch(d), true
		}
		return time.Time{}, false
	case float64:
		return fromEpoch(t), true
	case string:
		return parseISO(t)
	default:
		return time.Time{}, false
	}
}

// fromEpoch treats values above 1e12 as milliseconds, otherwise seconds
func fromEpoch(v float64) time.Time {
	if v > epochMillisCutoff {
		ms := int64(v)
		return time.UnixMilli(ms).UTC()
	}
	sec := int64(v)
	return time.Unix(sec, 0).UTC()
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// Str returns obj[key] as a string, "" when missing or not a string
func Str(obj Object, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

// Flag returns obj[key] as a bool, false when missing or not a bool
func Flag(obj Object, key string) bool {
	if obj == nil {
		return false
	}
	b, _ := obj[key].(bool)
	return b
}

// Sub returns obj[key] as a nested Object, nil when missing or not an object
func Sub(obj Object, key string) Object {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]any)
	return m
}

// Scalar returns obj[key] rendered as a string for loosely-typed fields
// (strings pass through, numbers are formatted); "" when absent or structured
func Scalar(obj Object, key string) string {
	if obj == nil {
		return ""
	}
	switch t := obj[key].(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
