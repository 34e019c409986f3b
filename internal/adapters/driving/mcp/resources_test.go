package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func testCollection() *domain.Collection {
	coll := domain.NewCollection("lore", "World Lore")
	coll.Library = "north"
	coll.ActivationTriggers = []string{"dragon"}
	coll.Chunks[2] = &domain.Chunk{Hash: 2, Text: "Dragons nest here.", Section: "Dragons", SystemKeywords: []string{"dragon"}}
	coll.Chunks[1] = &domain.Chunk{Hash: 1, Text: "The ember keep.", Section: "Ember Keep"}
	return coll
}

func TestServer_handleCollectionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists collections", func(t *testing.T) {
		coll := testCollection()
		coll.Chunks = nil
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collections: []domain.Collection{*coll}},
		})
		require.NoError(t, err)

		result, err := server.handleCollectionsResource(ctx, makeReadResourceRequest("loreweave://collections"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []collectionInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "lore", infos[0].ID)
		assert.Equal(t, "global", infos[0].Scope)
		assert.Equal(t, "north", infos[0].Library)
	})

	t.Run("no collection service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleCollectionsResource(ctx, makeReadResourceRequest("loreweave://collections"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("service error", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{err: errors.New("db locked")},
		})
		require.NoError(t, err)

		_, err = server.handleCollectionsResource(ctx, makeReadResourceRequest("loreweave://collections"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

func TestServer_handleCollectionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns metadata and index", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collection: testCollection()},
		})
		require.NoError(t, err)

		result, err := server.handleCollectionResource(ctx, makeReadResourceRequest("loreweave://collections/lore"))

		require.NoError(t, err)
		var view struct {
			ID     string      `json:"id"`
			Chunks int         `json:"chunks"`
			Index  []chunkInfo `json:"index"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &view))
		assert.Equal(t, "lore", view.ID)
		assert.Equal(t, 2, view.Chunks)
		require.Len(t, view.Index, 2)
		assert.Equal(t, int64(1), view.Index[0].Hash, "index in hash order")
		assert.Equal(t, "Dragons", view.Index[1].Section)
	})

	t.Run("invalid uri", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collection: testCollection()},
		})
		require.NoError(t, err)

		_, err = server.handleCollectionResource(ctx, makeReadResourceRequest("loreweave://other/lore"))
		require.Error(t, err)
	})

	t.Run("no collection service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleCollectionResource(ctx, makeReadResourceRequest("loreweave://collections/lore"))
		require.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{err: domain.ErrNotFound},
		})
		require.NoError(t, err)

		_, err = server.handleCollectionResource(ctx, makeReadResourceRequest("loreweave://collections/missing"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleChunkResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunk text", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collection: testCollection()},
		})
		require.NoError(t, err)

		result, err := server.handleChunkResource(ctx, makeReadResourceRequest("loreweave://collections/lore/chunks/2"))

		require.NoError(t, err)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, "Dragons nest here.", result.Contents[0].Text)
	})

	t.Run("unknown hash", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collection: testCollection()},
		})
		require.NoError(t, err)

		_, err = server.handleChunkResource(ctx, makeReadResourceRequest("loreweave://collections/lore/chunks/99"))
		require.Error(t, err)
	})

	t.Run("malformed hash", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Collection: &mockCollectionService{collection: testCollection()},
		})
		require.NoError(t, err)

		_, err = server.handleChunkResource(ctx, makeReadResourceRequest("loreweave://collections/lore/chunks/abc"))
		require.Error(t, err)
	})
}

func TestExtractCollectionID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"loreweave://collections/lore", "lore"},
		{"loreweave://collections/lore/chunks/1", ""},
		{"loreweave://collections/", ""},
		{"other://collections/lore", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCollectionID(tt.uri))
		})
	}
}

func TestExtractChunkRef(t *testing.T) {
	tests := []struct {
		uri    string
		wantID string
		want   int64
		ok     bool
	}{
		{"loreweave://collections/lore/chunks/12", "lore", 12, true},
		{"loreweave://collections/lore/chunks/x", "", 0, false},
		{"loreweave://collections//chunks/1", "", 0, false},
		{"loreweave://collections/lore", "", 0, false},
		{"http://collections/lore/chunks/1", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			id, hash, ok := extractChunkRef(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.want, hash)
		})
	}
}
