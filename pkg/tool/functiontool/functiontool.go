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

// Package functiontool creates tools from typed Go functions.
//
// The parameter schema is generated from the json and jsonschema struct
// tags of the argument type, and call arguments are decoded into it before
// the function runs.
//
//	type SummaryArgs struct {
//	    Title string `json:"title" jsonschema:"required,description=Exact title"`
//	}
//
//	summaryTool, err := functiontool.New(
//	    functiontool.Config{Name: "get_summary", Description: "Fetch a summary"},
//	    func(ctx context.Context, args SummaryArgs) (string, error) {
//	        return lookup(ctx, args.Title)
//	    },
//	)
package functiontool

import (
	"context"
	"fmt"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

// Config defines the configuration for a function tool.
type Config struct {
	// Name is the unique identifier for this tool (required).
	Name string

	// Description explains what the tool does (required).
	Description string
}

// New creates a CallableTool from a typed function.
func New[Args any](cfg Config, fn func(context.Context, Args) (string, error)) (tool.CallableTool, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %s: function is required", cfg.Name)
	}

	schema, err := generateSchema[Args]()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", cfg.Name, err)
	}

	return &functionTool[Args]{
		config: cfg,
		fn:     fn,
		schema: schema,
	}, nil
}

type functionTool[Args any] struct {
	config Config
	fn     func(context.Context, Args) (string, error)
	schema map[string]any
}

func (t *functionTool[Args]) Name() string {
	return t.config.Name
}

func (t *functionTool[Args]) Description() string {
	return t.config.Description
}

func (t *functionTool[Args]) Schema() map[string]any {
	return t.schema
}

func (t *functionTool[Args]) decode(args map[string]any) (Args, error) {
	var typedArgs Args
	if err := mapToStruct(args, &typedArgs); err != nil {
		return typedArgs, fmt.Errorf("invalid arguments for %s: %w", t.config.Name, err)
	}
	return typedArgs, nil
}

func (t *functionTool[Args]) Call(ctx context.Context, args map[string]any) (string, error) {
	typedArgs, err := t.decode(args)
	if err != nil {
		return "", err
	}
	return t.fn(ctx, typedArgs)
}
