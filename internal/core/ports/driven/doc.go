// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CollectionStore: Collection and chunk persistence
//   - ConfigStore: Application configuration
//   - VectorService: Vector-similarity search by text
//
// # Optional Interfaces
//
//   - ChunkPipeline: Ingestion-time enrichment. Without it, chunks are stored as given.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
