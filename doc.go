// Package sieve provides a filter/query language for selecting a subset of
// torrent items out of a large collection.
//
// A filter is a compact, shell-friendly boolean expression made of
// field=value atoms:
//
//	name=*.iso size=+4G OR ( tagged=archive NOT is_open=yes )
//
// Juxtaposition means AND, OR is the only infix operator (and binds loosest),
// NOT negates the following atom or parenthesized group. How a value is
// interpreted depends on the field's kind: string fields take glob patterns,
// /regex/ values or {{ template }} expressions; number fields take +N / -N /
// N comparisons with optional byte-size suffixes; time fields take relative
// deltas (1m2w3d), absolute dates or UNIX timestamps; list fields take
// whitespace-separated required tags.
//
// Typical use is as follows:
//
//  1. Build a Registry, optionally registering custom fields and
//     configuration-supplied aliases, and create an Engine with it
//  2. Compile one or more condition strings into a Predicate
//  3. Apply the Predicate to a sequence of items
//
// For example:
//
//	eng := sieve.NewEngine(sieve.NewRegistry())
//	pred, err := eng.Compile("name=*.iso", "name=!*sample*")
//	if err != nil { ... }
//	for item := range pred.Apply(items) { ... }
//
// # Lifecycle and Concurrency
//
// The Registry has two phases: registration and consumption. Registration
// (RegisterField, RegisterAlias) must complete before the first Compile;
// compiling seals the registry and later registrations fail. A sealed
// Registry and a compiled Predicate are immutable, so any number of
// evaluation passes may share them across goroutines without locking,
// provided the passes only read the items they are given.
//
// All value parsing happens at compile time: regular expressions and glob
// patterns are compiled once, time deltas are resolved against a single
// reference instant, and a malformed value fails Compile rather than the
// first match. The one exception is a template atom ({{ ... }}), whose
// pattern can only be produced per item; see Renderer.
package sieve
