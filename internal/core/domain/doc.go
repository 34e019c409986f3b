// Package domain defines the core retrieval entities for loreweave.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrievable fragment of text plus its matching metadata
//   - Collection: A scoped, named set of chunks with activation metadata
//   - Candidate: An ephemeral scored chunk produced during one query
//   - RankedResult: The public output of a retrieval
//   - RetrievalSettings: Tuning knobs for the ranking pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
