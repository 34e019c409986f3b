package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query       string   `json:"query" jsonschema:"the conversation text to retrieve lore for"`
	CharacterID string   `json:"character_id,omitempty" jsonschema:"character whose private collections are visible"`
	SessionID   string   `json:"session_id,omitempty" jsonschema:"chat session whose collections are visible"`
	Libraries   []string `json:"libraries,omitempty" jsonschema:"restrict retrieval to these libraries"`
	Explain     bool     `json:"explain,omitempty" jsonschema:"include provenance for every result"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput represents a single ranked chunk.
type ResultOutput struct {
	Hash         int64    `json:"hash"`
	CollectionID string   `json:"collection_id"`
	Text         string   `json:"text"`
	Score        float64  `json:"score"`
	Inferred     bool     `json:"inferred"`
	Provenance   []string `json:"provenance,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve ranked lore chunks to inject into a prompt",
	}, s.handleRetrieve)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	scope := domain.ScopeContext{
		CharacterID: strings.TrimSpace(input.CharacterID),
		SessionID:   strings.TrimSpace(input.SessionID),
		Libraries:   input.Libraries,
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, scope)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]ResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		out := ResultOutput{
			Hash:         results[i].Hash,
			CollectionID: results[i].CollectionID,
			Text:         results[i].Text,
			Score:        results[i].FinalScore,
			Inferred:     results[i].Inferred,
		}
		if input.Explain {
			for _, p := range results[i].Provenance {
				out.Provenance = append(out.Provenance, p.String())
			}
		}
		output.Results[i] = out
	}

	return nil, output, nil
}
