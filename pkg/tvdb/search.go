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

package tvdb

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/kadirpekel/moviesbuddy/pkg/config"
)

const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 20
)

// ValidContentTypes are the content types TVDB documents for search.
var ValidContentTypes = []string{"series", "movie", "person", "company"}

// SearchRequest is the caller-facing search contract.
type SearchRequest struct {
	Query       string
	ContentType string
	Year        *int
	Company     string
	Limit       int
}

// Searcher is the part of Client the facade depends on.
type Searcher interface {
	Search(ctx context.Context, params Params) (Response, error)
}

// ClientFactory returns an authenticated Searcher.
type ClientFactory func(ctx context.Context) (Searcher, error)

// DefaultClientFactory resolves credentials from sources and authenticates
// a new Client on every call. Sessions are not reused, so a stale token
// never outlives the call that obtained it.
func DefaultClientFactory(sources []config.Source, opts ...Option) ClientFactory {
	return func(ctx context.Context) (Searcher, error) {
		creds, err := LoadCredentials(sources...)
		if err != nil {
			return nil, err
		}
		client := New(creds, opts...)
		if err := client.Authenticate(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
}

// SearchTool validates search requests and renders the results.
type SearchTool struct {
	factory ClientFactory
}

func NewSearchTool(factory ClientFactory) *SearchTool {
	return &SearchTool{factory: factory}
}

// Search validates req, queries TVDB through a fresh client and returns
// the formatted report. Invalid requests are rejected before any I/O.
func (t *SearchTool) Search(ctx context.Context, req SearchRequest) (string, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", &ValidationError{Field: "query", Msg: "query is required and cannot be empty"}
	}
	if req.Limit < MinLimit || req.Limit > MaxLimit {
		return "", &ValidationError{Field: "limit", Msg: "limit must be between 1 and 20"}
	}

	params := Params{"query": query, "limit": req.Limit}

	if req.ContentType != "" {
		contentType := strings.ToLower(req.ContentType)
		if !slices.Contains(ValidContentTypes, contentType) {
			slog.Warn("Invalid content type, proceeding anyway", "content_type", req.ContentType)
		}
		params["type"] = contentType
	}
	if req.Year != nil {
		params["year"] = *req.Year
	}
	if company := strings.TrimSpace(req.Company); company != "" {
		params["company"] = company
	}

	client, err := t.factory(ctx)
	if err != nil {
		return "", err
	}

	slog.Info("Searching TVDB", "params", params)
	resp, err := client.Search(ctx, params)
	if err != nil {
		return "", err
	}

	formatted := FormatSearchResults(resp)
	slog.Debug("TVDB formatted search output", "output", formatted)
	slog.Info("TVDB search completed", "query", query)
	return formatted, nil
}
