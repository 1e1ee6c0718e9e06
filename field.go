package sieve

import "time"

// Kind defines a field kind in the sieve type system. The kind of a field
// decides which value grammar applies to it in a filter expression and how
// item values are coerced before matching. The set of kinds is closed;
// extensibility comes from registering new fields, not new kinds.
type Kind interface {
	// Implements the stringer interface
	String() string

	// Zero returns the value an item yields for a missing or absent field
	// of this kind.
	Zero() any
}

// String defines a sieve string field. Values are glob patterns, /regex/
// patterns or {{ template }} expressions.
type String struct{}

// Number defines a sieve numeric field. Values are +N, -N or N, with
// optional human byte-size suffixes (340M, 1.5GiB).
type Number struct{}

// Time defines a sieve timestamp field. Values are relative deltas (1m2w3d),
// absolute dates, or UNIX epoch seconds.
type Time struct{}

// List defines a sieve tag-set field. Values are whitespace-separated
// required tags.
type List struct{}

// Bool defines a sieve true/false field.
type Bool struct{}

func (String) String() string { return "string" }
func (Number) String() string { return "number" }
func (Time) String() string   { return "time" }
func (List) String() string   { return "list" }
func (Bool) String() string   { return "bool" }

// Zero methods
func (String) Zero() any { return "" }
func (Number) Zero() any { return float64(0) }
func (Time) Zero() any   { return time.Unix(0, 0) }
func (List) Zero() any   { return []string{} }
func (Bool) Zero() any   { return false }

// Field describes a single queryable attribute of an item: its canonical
// name, its kind, and an accessor that extracts the attribute's value from
// an item record. Accessors must be pure and must tolerate missing values
// (the matcher coerces whatever they return, with nil becoming the kind's
// zero value).
type Field struct {
	// Canonical field name, as written in filter expressions. (required)
	Name string

	// The value grammar and coercion applied to this field. (required)
	Kind Kind

	// Get extracts the field's value from an item. (required)
	Get func(Item) any

	// Optional one-line description, e.g. for a --help listing.
	Help string
}
