package extraction

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType is the declared type of a field in an expected shape.
type FieldType int

const (
	String FieldType = iota
	StringList
	Number
	Bool
	// Confidence is a number clamped to [0,100]. It is implicitly optional:
	// when absent it is 0 and never forces a fallback.
	Confidence
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case StringList:
		return "string[]"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Confidence:
		return "confidence"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// DefaultPolicy computes a field value from the model's text when the field
// could not be parsed. It receives the trimmed response, unwrapped only when
// a single code fence surrounds the whole reply.
// Returning nil selects the zero value of the field type.
type DefaultPolicy func(text string) any

// Field declares one named, typed value the caller expects back.
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
	Default  DefaultPolicy
}

// Shape is the ordered set of fields a request expects.
type Shape []Field

func (s Shape) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: shape declares no fields", ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidRequest)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidRequest, f.Name)
		}
		if f.Type < String || f.Type > Confidence {
			return fmt.Errorf("%w: field %q has unknown type", ErrInvalidRequest, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// SplitLines splits the text into trimmed, non-empty lines, dropping list
// bullets and code fence markers.
func SplitLines(text string) any {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// SplitComma splits the text on commas and newlines into trimmed, non-empty items.
func SplitComma(text string) any {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RawText passes the trimmed text through verbatim.
func RawText(text string) any {
	return strings.TrimSpace(text)
}

// Empty always yields the zero value of the field type.
func Empty(string) any {
	return nil
}

// Const always yields v.
func Const(v any) DefaultPolicy {
	return func(string) any { return v }
}

func zeroValue(t FieldType) any {
	switch t {
	case StringList:
		return []string{}
	case Number, Confidence:
		return float64(0)
	case Bool:
		return false
	default:
		return ""
	}
}

// coerce converts a decoded JSON value, or a policy result, to the Go type of t.
// The second return is false when v is ill-typed for t.
func coerce(t FieldType, v any) (any, bool) {
	switch t {
	case String:
		s, ok := v.(string)
		return s, ok
	case StringList:
		return coerceList(v)
	case Number:
		return coerceNumber(v)
	case Confidence:
		n, ok := coerceNumber(v)
		if !ok {
			return nil, false
		}
		return clamp(n.(float64), 0, 100), true
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			return parsed, err == nil
		}
	}
	return nil, false
}

func coerceList(v any) (any, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case string:
		if s := strings.TrimSpace(items); s != "" {
			return []string{s}, true
		}
		return []string{}, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

func coerceNumber(v any) (any, bool) {
	switch n := v.(type) {
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
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
