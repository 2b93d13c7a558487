// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcpserver serves the TVDB search tool over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/tvdbtool"
	"github.com/kadirpekel/moviesbuddy/pkg/tvdb"
)

const (
	ServerName    = "tvdb-mcp"
	ServerVersion = "1.0.0"
)

// NewTVDBServer returns an MCP server exposing search_tv_series_tvdb.
// Search failures are reported as tool error results, not protocol errors.
func NewTVDBServer(search *tvdb.SearchTool) (*server.MCPServer, error) {
	searchTool, err := tvdbtool.New(search)
	if err != nil {
		return nil, err
	}

	srv := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	if err := AddTool(srv, searchTool); err != nil {
		return nil, err
	}
	return srv, nil
}

// AddTool registers a CallableTool on srv, reusing its schema.
func AddTool(srv *server.MCPServer, t tool.CallableTool) error {
	schema, err := json.Marshal(t.Schema())
	if err != nil {
		return fmt.Errorf("failed to encode schema for %s: %w", t.Name(), err)
	}

	srv.AddTool(
		mcp.NewToolWithRawSchema(t.Name(), t.Description(), schema),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			out, err := t.Call(ctx, req.GetArguments())
			observability.RecordToolExecution(ctx, t.Name(), time.Since(start), err)
			if err != nil {
				slog.Warn("MCP tool call failed", "tool", t.Name(), "error", err)
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(out), nil
		},
	)
	return nil
}

// ServeStdio serves srv over the given streams until ctx is cancelled or
// the input is closed.
func ServeStdio(ctx context.Context, srv *server.MCPServer, in io.Reader, out io.Writer) error {
	slog.Info("Starting MCP server on stdio", "name", ServerName)
	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}
