package extraction

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Result is the outcome of an extraction.
type Result struct {
	// Fields is nil when Status is Rejected. Otherwise it has a value for
	// every declared field: string, []string, float64, or bool.
	Fields map[string]any
	// Raw is the unmodified provider reply.
	Raw    string
	Status Status
	Model  string
	// Defaulted names the fields filled by their default policy.
	Defaulted []string
}

// IsDefaulted reports whether the named field came from its default policy.
func (r *Result) IsDefaulted(name string) bool {
	return slices.Contains(r.Defaulted, name)
}

// String returns a String field, or "" if absent.
func (r *Result) String(name string) string {
	s, _ := r.Fields[name].(string)
	return s
}

// Strings returns a StringList field, or nil if absent.
func (r *Result) Strings(name string) []string {
	s, _ := r.Fields[name].([]string)
	return s
}

// Number returns a Number or Confidence field, or 0 if absent.
func (r *Result) Number(name string) float64 {
	n, _ := r.Fields[name].(float64)
	return n
}

// Bool returns a Bool field, or false if absent.
func (r *Result) Bool(name string) bool {
	b, _ := r.Fields[name].(bool)
	return b
}

// Decode copies Fields into v through JSON, so v can be a struct with json tags.
func (r *Result) Decode(v any) error {
	if r.Fields == nil {
		return fmt.Errorf("extraction.Result.Decode: no fields (status %s)", r.Status)
	}
	b, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("extraction.Result.Decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("extraction.Result.Decode: %w", err)
	}
	return nil
}
