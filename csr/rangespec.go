package csr

import (
	"fmt"
	"math"
	"regexp"
)

// MalformedRangeError reports a location value that matches none of the
// recognized bit-range encodings. It carries the raw schema value so
// diagnostics can show what was actually in the document.
type MalformedRangeError struct {
	// Raw is the original schema value that failed to normalize.
	Raw any
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed bit-range spec: %v (%T)", e.Raw, e.Raw)
}

// rangeKind identifies which of the recognized encodings a raw schema
// value uses. Classification is exhaustive: anything that is not one of
// these variants is malformed.
type rangeKind uint8

const (
	rangeMalformed rangeKind = iota
	rangeScalar              // a single integer: 7
	rangePair                // an ordered sequence: [31, 12]
	rangeKeyedPair           // a mapping: {msb: 31, lsb: 12}
	rangeScalarText          // a single integer as text: "7"
	rangeDelimitedText       // two integers as text: "31..12", "31:12", "31-12"
)

// highKeys and lowKeys are the recognized mapping keys for the high and
// low bit of a keyed-pair encoding, in priority order.
var (
	highKeys = []string{"msb", "hi", "from", "high"}
	lowKeys  = []string{"lsb", "lo", "to", "low"}
)

var (
	delimitedTextRE = regexp.MustCompile(`^(\d+)\s*(?:\.\.|:|-)\s*(\d+)$`)
	scalarTextRE    = regexp.MustCompile(`^(\d+)$`)
)

// ParseRange normalizes any of the recognized bit-range encodings into a
// canonical BitRange with High >= Low. It is pure and idempotent:
// normalizing a value that already describes a canonical pair returns
// that pair unchanged.
//
// Recognized encodings, in priority order:
//  1. a single integer n -> (n, n)
//  2. a sequence of two or more integers -> (max, min) of the first two
//  3. a mapping with a high key (msb/hi/from/high) and a low key
//     (lsb/lo/to/low) -> (max, min)
//  4. text of two integers separated by "..", ":" or "-" -> (max, min)
//  5. text of a single integer -> (n, n)
//
// Anything else fails with a *MalformedRangeError carrying the raw value.
func ParseRange(raw any) (BitRange, error) {
	if r, ok := raw.(BitRange); ok {
		return orderedRange(r.High, r.Low), nil
	}

	switch classifyRange(raw) {
	case rangeScalar:
		n, _ := asInt(raw)
		return BitRange{High: n, Low: n}, nil

	case rangePair:
		seq := asSlice(raw)
		a, okA := asInt(seq[0])
		b, okB := asInt(seq[1])
		if !okA || !okB {
			return BitRange{}, &MalformedRangeError{Raw: raw}
		}
		return orderedRange(a, b), nil

	case rangeKeyedPair:
		m := asMap(raw)
		hi, okHi := lookupKeyed(m, highKeys)
		lo, okLo := lookupKeyed(m, lowKeys)
		if !okHi || !okLo {
			return BitRange{}, &MalformedRangeError{Raw: raw}
		}
		return orderedRange(hi, lo), nil

	case rangeDelimitedText:
		parts := delimitedTextRE.FindStringSubmatch(rawText(raw))
		a, _ := asInt(parts[1])
		b, _ := asInt(parts[2])
		return orderedRange(a, b), nil

	case rangeScalarText:
		n, _ := asInt(rawText(raw))
		return BitRange{High: n, Low: n}, nil

	default:
		return BitRange{}, &MalformedRangeError{Raw: raw}
	}
}

// classifyRange assigns a raw schema value to exactly one encoding
// variant, in the priority order documented on ParseRange.
func classifyRange(raw any) rangeKind {
	if raw == nil {
		return rangeMalformed
	}
	if _, ok := asInt(raw); ok {
		if _, isText := raw.(string); !isText {
			return rangeScalar
		}
	}
	if seq := asSlice(raw); len(seq) >= 2 {
		return rangePair
	}
	if m := asMap(raw); m != nil {
		return rangeKeyedPair
	}
	if s, ok := raw.(string); ok {
		text := trimText(s)
		if delimitedTextRE.MatchString(text) {
			return rangeDelimitedText
		}
		if scalarTextRE.MatchString(text) {
			return rangeScalarText
		}
	}
	return rangeMalformed
}

func orderedRange(a, b int) BitRange {
	if a >= b {
		return BitRange{High: a, Low: b}
	}
	return BitRange{High: b, Low: a}
}

func rawText(raw any) string {
	s, _ := raw.(string)
	return trimText(s)
}

func trimText(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

// asInt coerces the numeric representations the YAML, JSON and TOML
// decoders produce (and decimal text) into an int. JSON numbers arrive
// as float64 and are accepted only when integral.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
		return 0, false
	case float32:
		return asInt(float64(n))
	case string:
		var out int
		if _, err := fmt.Sscanf(trimText(n), "%d", &out); err == nil {
			return out, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// asSlice returns the value as a generic slice, or nil.
func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []int:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	case []int64:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	default:
		return nil
	}
}

// asMap returns the value as a string-keyed map, or nil. YAML documents
// may decode mappings with interface keys; those keys are stringified.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out
	default:
		return nil
	}
}

// lookupKeyed finds the first present key from keys and coerces its
// value to an int.
func lookupKeyed(m map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return asInt(v)
		}
	}
	return 0, false
}
