// Package features turns a raw prediction request into the fixed-order
// numeric vector a trained classifier expects.
package features

import (
	"fmt"
	"strings"
)

// Schema is the ordered list of feature names a classifier was trained on.
// It is immutable once constructed.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema validates names and returns a Schema. The slice is copied.
func NewSchema(names []string) (Schema, error) {
	if len(names) == 0 {
		return Schema{}, &SchemaMismatchError{Reason: "feature list is empty"}
	}
	s := Schema{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return Schema{}, &SchemaMismatchError{Reason: fmt.Sprintf("feature %d has a blank name", i)}
		}
		if _, dup := s.index[n]; dup {
			return Schema{}, &SchemaMismatchError{Reason: fmt.Sprintf("duplicate feature %q", n)}
		}
		s.names[i] = n
		s.index[n] = i
	}
	return s, nil
}

// Names returns a copy of the slot names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of slots.
func (s Schema) Len() int { return len(s.names) }

// Index returns the position of name, or false when it is not a slot.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Vector is a feature vector: one float64 per schema slot, in schema order.
type Vector struct {
	schema Schema
	values []float64
}

// NewVector pairs values with schema. len(values) must equal schema.Len().
func NewVector(schema Schema, values []float64) (Vector, error) {
	if len(values) != schema.Len() {
		return Vector{}, &SchemaMismatchError{
			Reason: fmt.Sprintf("vector has %d values, schema has %d features", len(values), schema.Len()),
		}
	}
	v := Vector{schema: schema, values: make([]float64, len(values))}
	copy(v.values, values)
	return v, nil
}

// Names returns the slot names in order.
func (v Vector) Names() []string { return v.schema.Names() }

// Values returns a copy of the values in schema order.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Len returns the number of slots.
func (v Vector) Len() int { return len(v.values) }

// At returns the value at position i.
func (v Vector) At(i int) float64 { return v.values[i] }

// Get returns the value for a slot name.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Map returns the vector as a name -> value map, for logging and debugging.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.values))
	for i, n := range v.schema.names {
		m[n] = v.values[i]
	}
	return m
}
