package engine

import (
	"context"

	"github.com/pomagma/atlas/signature"
)

// Dumper persists a Signature's tables to an opaque byte stream. Real
// implementations (HDF5, protobuf) are out of scope per spec.md §1's
// Non-goals; this interface exists so the core can be exercised by a
// round-trip test double without the real persistence stack.
type Dumper interface {
	Dump(*signature.Signature) ([]byte, error)
}

// Loader reconstructs a Signature from a Dumper's output.
type Loader interface {
	Load([]byte) (*signature.Signature, error)
}

// Server drives the engine from network requests. The wire protocol itself
// is out of scope per spec.md §1's Non-goals; Serve need only respect ctx
// cancellation.
type Server interface {
	Serve(ctx context.Context) error
}
