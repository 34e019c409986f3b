package mcp

import (
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks chunks for a query.
	Retrieval driving.RetrievalService

	// Collection exposes collections as resources. Optional.
	Collection driving.CollectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
