// Package mcp exposes graph inspection over the Model Context Protocol,
// so editor agents can resolve paths and preview context windows while
// authoring sequences.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rvielma/cultivar"
	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/resolver"
	"github.com/rvielma/cultivar/internal/window"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

// Server wraps the resolver stack and exposes it as an MCP server.
type Server struct {
	index     *index.Index
	resolver  *resolver.Resolver
	window    *window.Builder
	loader    ports.SequenceLoader
	corpus    ports.CorpusStore
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the given collaborators.
func NewServer(ix *index.Index, res *resolver.Resolver, win *window.Builder, loader ports.SequenceLoader, corpus ports.CorpusStore) *Server {
	s := &Server{
		index:     ix,
		resolver:  res,
		window:    win,
		loader:    loader,
		corpus:    corpus,
		mcpServer: server.NewMCPServer("cultivar-mcp", strings.TrimSpace(cultivar.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: resolve_path
	s.mcpServer.AddTool(mcp.NewTool("resolve_path",
		mcp.WithDescription("Resolve a conversation path from a sequence entry to a target node."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target as sequence-id:message-id, e.g. morning:4")),
		mcp.WithString("vars", mcp.Description("JSON object of state variables for branch conditions (optional)")),
		mcp.WithString("mode", mcp.Description("Branch mode: resolve (default) or default")),
	), s.handleResolve)

	// TOOL: preview_context
	s.mcpServer.AddTool(mcp.NewTool("preview_context",
		mcp.WithDescription("Build the context window a generation run would see for a target node."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target as sequence-id:message-id")),
		mcp.WithString("vars", mcp.Description("JSON object of state variables (optional)")),
	), s.handlePreview)

	// TOOL: list_sequences
	s.mcpServer.AddTool(mcp.NewTool("list_sequences",
		mcp.WithDescription("List all known sequence documents."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.loader.ListSequences()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: corpus_lines
	s.mcpServer.AddTool(mcp.NewTool("corpus_lines",
		mcp.WithDescription("Read the existing phrasings stored for a content key."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Content key, e.g. bot.greet.morning")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key := request.GetString("key", "")
		lines, err := s.corpus.Lines(key)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("corpus read failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(lines)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, state, err := s.targetState(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, found, err := s.resolver.Resolve(state, target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]any{
		"target": target.String(),
		"found":  found,
		"path":   path.Addresses(),
	})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, state, err := s.targetState(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, found, err := s.resolver.Resolve(state, target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]any{
		"target":  target.String(),
		"found":   found,
		"context": s.window.Build(path, 0),
	})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) targetState(request mcp.CallToolRequest) (domain.NodeAddress, domain.StateSpec, error) {
	target, err := config.ParseAddress(request.GetString("target", ""), "")
	if err != nil {
		return domain.NodeAddress{}, domain.StateSpec{}, err
	}

	state := domain.NewStateSpec(target.Sequence)
	if varsStr := request.GetString("vars", ""); varsStr != "" {
		if err := json.Unmarshal([]byte(varsStr), &state.Vars); err != nil {
			return domain.NodeAddress{}, domain.StateSpec{}, fmt.Errorf("vars must be a JSON object: %w", err)
		}
	}
	if request.GetString("mode", "") == string(domain.BranchAlwaysDefault) {
		state.Mode = domain.BranchAlwaysDefault
	}
	return target, state, nil
}
