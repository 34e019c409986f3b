package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for loreweave resources.
	uriScheme = "loreweave://"
)

// collectionInfo is the resource view of a collection.
type collectionInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Scope        string   `json:"scope"`
	Library      string   `json:"library,omitempty"`
	Triggers     []string `json:"triggers,omitempty"`
	AlwaysActive bool     `json:"always_active,omitempty"`
	Chunks       int      `json:"chunks,omitempty"`
}

// chunkInfo is the resource view of a chunk inside a collection listing.
type chunkInfo struct {
	Hash     int64    `json:"hash"`
	Section  string   `json:"section,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing global collections.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Global lore collections",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	// Template for one collection with its chunk index.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collectionId}",
		Name:        "collection",
		Description: "A collection's metadata and chunk index",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)

	// Template for chunk text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{collectionId}/chunks/{hash}",
		Name:        "chunk-text",
		Description: "Text of a single chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkResource)
}

// handleCollectionsResource returns every globally visible collection.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Collection == nil {
		return textResult(req.Params.URI, "application/json", "[]"), nil
	}

	colls, err := s.ports.Collection.List(ctx, domain.ScopeContext{})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	infos := make([]collectionInfo, len(colls))
	for i := range colls {
		infos[i] = infoOf(&colls[i])
	}

	return jsonResult(req.Params.URI, infos)
}

// handleCollectionResource returns one collection with its chunk index.
func (s *Server) handleCollectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Collection == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract collectionId from URI: loreweave://collections/{collectionId}
	id := extractCollectionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	coll, err := s.ports.Collection.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	view := struct {
		collectionInfo
		Index []chunkInfo `json:"index"`
	}{collectionInfo: infoOf(coll)}
	for _, h := range coll.Hashes() {
		c := coll.Chunks[h]
		view.Index = append(view.Index, chunkInfo{
			Hash:     h,
			Section:  c.Section,
			Keywords: c.ActiveKeywords(),
			Disabled: c.Disabled,
		})
	}

	return jsonResult(req.Params.URI, view)
}

// handleChunkResource returns the text of one chunk.
func (s *Server) handleChunkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Collection == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract from URI: loreweave://collections/{collectionId}/chunks/{hash}
	id, hash, ok := extractChunkRef(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	coll, err := s.ports.Collection.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	c, found := coll.Chunks[hash]
	if !found {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return textResult(req.Params.URI, "text/plain", c.Text), nil
}

func infoOf(c *domain.Collection) collectionInfo {
	return collectionInfo{
		ID:           c.ID,
		Name:         c.Name,
		Scope:        c.Scope.Key(),
		Library:      c.Library,
		Triggers:     c.ActivationTriggers,
		AlwaysActive: c.AlwaysActive,
		Chunks:       c.ChunkCount(),
	}
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return textResult(uri, "application/json", string(data)), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractCollectionID extracts the ID from a URI like loreweave://collections/{collectionId}.
func extractCollectionID(uri string) string {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractChunkRef extracts the collection ID and hash from a URI like
// loreweave://collections/{collectionId}/chunks/{hash}.
func extractChunkRef(uri string) (string, int64, bool) {
	const prefix = uriScheme + "collections/"
	const middle = "/chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return "", 0, false
	}

	rest := strings.TrimPrefix(uri, prefix)
	i := strings.Index(rest, middle)
	if i <= 0 {
		return "", 0, false
	}

	hash, err := strconv.ParseInt(rest[i+len(middle):], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:i], hash, true
}
