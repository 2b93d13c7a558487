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

// Package wikitool exposes Wikipedia page summaries as an agent tool.
package wikitool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/functiontool"
	"github.com/kadirpekel/moviesbuddy/pkg/wikipedia"
)

const (
	Name        = "get_series_movies_summary"
	Description = "Retrieve the Wikipedia summary for the TV series or movie with the given title."
)

// Summarizer is the part of wikipedia.Client the tool depends on.
type Summarizer interface {
	Summary(ctx context.Context, title string) (*wikipedia.Page, error)
}

// Args is the tool's argument contract.
type Args struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"Exact title of the TV series or movie to summarize."`
}

type result struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// NotFoundMessage is returned when no page or summary exists for title.
func NotFoundMessage(title string) string {
	return fmt.Sprintf("No Wikipedia summary found for '%s'.", title)
}

// Fetch returns the page summary as a JSON object with title and summary
// keys. A missing page keeps the requested title and carries
// NotFoundMessage as its summary rather than an error.
func Fetch(ctx context.Context, client Summarizer, title string) (string, error) {
	page, err := client.Summary(ctx, title)
	if errors.Is(err, wikipedia.ErrPageNotFound) {
		slog.Info("Wikipedia page not found", "title", title)
		return encode(result{Title: title, Summary: NotFoundMessage(title)})
	}
	if err != nil {
		return "", fmt.Errorf("wikipedia summary retrieval failed: %w", err)
	}
	return encode(result{Title: page.Title, Summary: page.Summary})
}

func encode(r result) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("wikipedia summary retrieval failed: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// New returns the get_series_movies_summary tool backed by client.
func New(client Summarizer) (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{Name: Name, Description: Description},
		func(ctx context.Context, args Args) (string, error) {
			return Fetch(ctx, client, args.Title)
		},
	)
}
