// Package signature owns the named bundle of relations and functions built
// over a single carrier.Carrier, mirroring the shallow "declare by name,
// look up by name" registry of spec.md §3.
//
// Grounded on original_source/src/platform/signature.hpp (the declare/
// replace/accessor shape and the LESS/NLESS negate convention) and on
// core.Graph's "one struct owns every map, thin read-only accessors"
// idiom for the Go expression of it.
package signature
