package features

import (
	"sort"
	"strings"
)

// Raw is a loosely populated request: numeric fields and categorical fields.
// It may miss fields the schema uses and may carry fields the schema ignores.
type Raw struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// MissingPolicy decides how an absent categorical field is treated.
type MissingPolicy string

const (
	// MissingAsZero leaves one-hot slots of an absent field at 0.
	MissingAsZero MissingPolicy = "zero"
	// MissingStrict fails with MissingFieldError.
	MissingStrict MissingPolicy = "strict"
)

// ParseMissingPolicy maps a configuration string to a MissingPolicy.
func ParseMissingPolicy(s string) (MissingPolicy, bool) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingAsZero:
		return MissingAsZero, true
	case MissingStrict:
		return MissingStrict, true
	}
	return "", false
}

// DefaultCategoricalFields are the categorical columns of the bank
// marketing dataset.
var DefaultCategoricalFields = []string{
	"job", "marital", "education", "default", "housing",
	"loan", "contact", "month", "poutcome",
}

// Builder maps Raw requests onto a Schema. A Builder is immutable and safe
// for concurrent use.
type Builder struct {
	categorical []string // longest first so the longest prefix wins
	policy      MissingPolicy
}

// NewBuilder creates a Builder. Defaults: bank categorical fields, MissingAsZero.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{policy: MissingAsZero}
	WithCategoricalFields(DefaultCategoricalFields...)(b)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the configured missing-field policy.
func (b *Builder) Policy() MissingPolicy { return b.policy }

// Build produces the feature vector for raw. Every slot starts at 0; a slot
// named after a numeric field present in raw copies its value; a slot named
// <field>_<value> for a categorical field is 1 when the request value equals
// <value> ignoring case. Other slots stay 0.
func (b *Builder) Build(schema Schema, raw Raw) (Vector, error) {
	if schema.Len() == 0 {
		return Vector{}, &SchemaMismatchError{Reason: "feature list is empty"}
	}
	values := make([]float64, schema.Len())
	for i, slot := range schema.names {
		if v, ok := raw.Numeric[slot]; ok {
			values[i] = v
			continue
		}
		field, want, ok := b.splitOneHot(slot)
		if !ok {
			continue
		}
		got, present := raw.Categorical[field]
		if !present {
			if b.policy == MissingStrict {
				return Vector{}, &MissingFieldError{Field: field, Slot: slot}
			}
			continue
		}
		if strings.ToLower(got) == strings.ToLower(want) {
			values[i] = 1
		}
	}
	return Vector{schema: schema, values: values}, nil
}

// splitOneHot splits "marital_married" into ("marital", "married").
func (b *Builder) splitOneHot(slot string) (field, value string, ok bool) {
	for _, f := range b.categorical {
		if len(slot) > len(f)+1 && strings.HasPrefix(slot, f) && slot[len(f)] == '_' {
			return f, slot[len(f)+1:], true
		}
	}
	return "", "", false
}

func sortLongestFirst(fields []string) []string {
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
