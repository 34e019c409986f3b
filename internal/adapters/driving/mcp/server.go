// Package mcp is the Model Context Protocol adapter: it lets an AI host
// retrieve ranked lore chunks for a live conversation.
//
// The server registers one tool and three resources:
//
//	retrieve                                              tool, ranked lore for a query
//	loreweave://collections                               resource, global collections
//	loreweave://collections/{collectionId}                resource, one collection with its chunk index
//	loreweave://collections/{collectionId}/chunks/{hash}  resource, raw chunk text
//
// The resources need Ports.Collection; without it they answer with an empty
// list or not found.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loreweave/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	instructions = "Call retrieve with the conversation's latest message to get lore chunks " +
		"ranked for it. Pass scope to see scoped collections. Read loreweave:// resources " +
		"to browse collections and chunk text."

	shutdownTimeout = 5 * time.Second
)

// Server serves the retrieve tool and the collection resources over stdio
// or streamable HTTP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer validates ports and registers the tool and resources.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "loreweave", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled. Every request shares the one server, so sessions see the same
// tool and resources.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve mcp http: %w", err)
	}
	return nil
}
