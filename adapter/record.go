package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/peoplesearch/domain"
)

// Record is a raw backend object decoded from JSON with json.Number for numbers.
// Lookups take several alias keys and return the first present, non-null value.
type Record map[string]any

// envelopeKeys are the wrapper keys backends use around a payload.
var envelopeKeys = []string{"data", "user", "results", "person"}

// DecodeValue decodes JSON keeping numbers as json.Number.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "malformed backend payload", err)
	}
	return v, nil
}

// DecodeRecord decodes a JSON object.
func DecodeRecord(data []byte) (Record, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	rec, ok := asRecord(v)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeInvalid, "backend payload is not an object")
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of objects, optionally wrapped in an envelope key.
func DecodeRecords(data []byte) ([]Record, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	for depth := 0; depth < 3; depth++ {
		if list, ok := v.([]any); ok {
			return toRecords(list), nil
		}
		rec, ok := asRecord(v)
		if !ok {
			break
		}
		next, found := rec.value(envelopeKeys...)
		if !found {
			break
		}
		v = next
	}
	if v == nil {
		return []Record{}, nil
	}
	return nil, domain.NewError(domain.ErrCodeInvalid, "backend payload is not a list")
}

// FromValue converts any JSON-serialisable value into a Record through its wire form.
func FromValue(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return DecodeRecord(data)
}

// FromValues converts a JSON-serialisable list into Records through its wire form.
func FromValues(v any) ([]Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return DecodeRecords(data)
}

// Unwrap descends into the first envelope key holding an object, repeatedly.
// A record without an envelope is returned unchanged.
func (r Record) Unwrap(keys ...string) Record {
	if len(keys) == 0 {
		keys = envelopeKeys
	}
	cur := r
	for depth := 0; depth < 3; depth++ {
		v, ok := cur.value(keys...)
		if !ok {
			return cur
		}
		next, ok := asRecord(v)
		if !ok {
			return cur
		}
		cur = next
	}
	return cur
}

func (r Record) value(keys ...string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any of the keys holds a non-null value.
func (r Record) Has(keys ...string) bool {
	_, ok := r.value(keys...)
	return ok
}

// String returns the value as a trimmed string. Numbers and booleans are formatted.
func (r Record) String(keys ...string) string {
	v, ok := r.value(keys...)
	if !ok {
		return ""
	}
	s, _ := toString(v)
	return s
}

// Int returns the value as an int, truncated toward zero and saturated at the
// int bounds. Strings holding numbers are accepted.
func (r Record) Int(keys ...string) (int, bool) {
	f, ok := r.Float(keys...)
	if !ok {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// Float returns the value as a finite float64. Strings holding numbers are
// accepted; NaN and infinities are not.
func (r Record) Float(keys ...string) (float64, bool) {
	f, ok := r.number(keys...)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (r Record) number(keys ...string) (float64, bool) {
	v, ok := r.value(keys...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns the value as a bool. "true", "1" and non-zero numbers are true.
func (r Record) Bool(keys ...string) (bool, bool) {
	v, ok := r.value(keys...)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		f, ok := r.Float(keys...)
		return f != 0, ok
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Time parses the value as a timestamp. present is false when no key holds a value;
// err is set when a value is present but cannot be parsed.
func (r Record) Time(keys ...string) (t time.Time, present bool, err error) {
	v, ok := r.value(keys...)
	if !ok {
		return time.Time{}, false, nil
	}
	switch tv := v.(type) {
	case time.Time:
		return tv, true, nil
	case *time.Time:
		if tv == nil {
			return time.Time{}, false, nil
		}
		return *tv, true, nil
	case string:
		s := strings.TrimSpace(tv)
		if s == "" {
			return time.Time{}, false, nil
		}
		parsed, perr := ParseTime(s)
		return parsed, true, perr
	default:
		return time.Time{}, true, fmt.Errorf("unsupported timestamp %T", v)
	}
}

// TimePtr returns the parsed timestamp or nil when absent or unparseable.
func (r Record) TimePtr(keys ...string) *time.Time {
	t, present, err := r.Time(keys...)
	if !present || err != nil {
		return nil
	}
	return &t
}

// ParseTime accepts RFC3339 and the common SQL timestamp layouts. Zone-less values are UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Child returns the nested object under the first present key, or nil.
func (r Record) Child(keys ...string) Record {
	v, ok := r.value(keys...)
	if !ok {
		return nil
	}
	if rec, ok := asRecord(v); ok {
		return rec
	}
	if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "{") {
		if rec, err := DecodeRecord([]byte(s)); err == nil {
			return rec
		}
	}
	return nil
}

// Children returns the nested objects under the first present key. Never nil.
func (r Record) Children(keys ...string) []Record {
	v, ok := r.value(keys...)
	if !ok {
		return []Record{}
	}
	switch list := v.(type) {
	case []any:
		return toRecords(list)
	case []Record:
		return list
	case []map[string]any:
		out := make([]Record, 0, len(list))
		for _, m := range list {
			out = append(out, Record(m))
		}
		return out
	case string:
		if decoded, err := DecodeRecords([]byte(list)); err == nil {
			return decoded
		}
	}
	return []Record{}
}

// Strings returns a list of non-empty strings. A comma separated string is split.
// Never nil.
func (r Record) Strings(keys ...string) []string {
	v, ok := r.value(keys...)
	if !ok {
		return []string{}
	}
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			if s, ok := toString(item); ok && s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	default:
		return nil, false
	}
}

func toRecords(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if rec, ok := asRecord(item); ok {
			out = append(out, rec)
		}
	}
	return out
}
