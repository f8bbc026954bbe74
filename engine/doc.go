// Package engine wires one Carrier's Signature, Scheduler, Cleanup
// generator, and Sampler into a single value, resolving spec.md §9's
// "global mutable state" note: multiple Engine values may coexist, each
// owning its own structure.
//
// Grounded on core.Graph's shape (one struct, functional options, RWMutex
// per concern) generalized from a single-graph value to the saturation
// engine's tuple of collaborating components.
package engine
