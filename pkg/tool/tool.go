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

// Package tool defines the tools an agent can invoke.
//
// A tool is registered under a unique name together with a JSON schema for
// its arguments. The agent runtime exposes every registered tool to the
// model and dispatches the model's tool calls through the Registry.
//
// # Creating Tools
//
//	// Typed function tool
//	t, err := functiontool.New(functiontool.Config{...}, fn)
//
//	// Tools served by an MCP server
//	ts, err := mcptoolset.New(mcptoolset.Config{...})
package tool

import (
	"context"
)

// Tool defines the base interface for a tool.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description is shown to the model to decide when to use the tool.
	Description() string
}

// CallableTool extends Tool with synchronous execution.
type CallableTool interface {
	Tool

	// Call executes the tool with decoded JSON arguments and returns the
	// text handed back to the model.
	Call(ctx context.Context, args map[string]any) (string, error)

	// Schema returns the JSON schema for the tool's parameters.
	// Returns nil if the tool takes no parameters.
	Schema() map[string]any
}

// Toolset groups tools resolved from a single source.
type Toolset interface {
	Name() string
	Tools(ctx context.Context) ([]Tool, error)
}

// Definition represents a tool definition for LLM function calling.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToDefinition converts a tool to a Definition.
func ToDefinition(t Tool) Definition {
	def := Definition{
		Name:        t.Name(),
		Description: t.Description(),
	}
	if ct, ok := t.(CallableTool); ok {
		def.Parameters = ct.Schema()
	}
	return def
}

// ToolCall represents an LLM's request to invoke a tool.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"arguments"`
}
