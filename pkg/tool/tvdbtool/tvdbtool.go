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

// Package tvdbtool exposes the TVDB search facade as an agent tool.
package tvdbtool

import (
	"context"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/functiontool"
	"github.com/kadirpekel/moviesbuddy/pkg/tvdb"
)

const (
	Name        = "search_tv_series_tvdb"
	Description = "Search The TV Database (TVDB) for TV and movie information."
)

// Args is the argument contract shared by the inline tool and the MCP server.
type Args struct {
	Query       string  `json:"query" jsonschema:"required" jsonschema_description:"Main search term for TV series, movies, or other entertainment content."`
	ContentType *string `json:"content_type,omitempty" jsonschema_description:"Optional filter: 'series', 'movie', 'person', or 'company'."`
	Year        *int    `json:"year,omitempty" jsonschema_description:"Filter results by release/premiere year."`
	Company     *string `json:"company,omitempty" jsonschema_description:"Restrict results to a specific production company or network."`
	Limit       *int    `json:"limit,omitempty" jsonschema:"default=10" jsonschema_description:"Maximum number of results (1-20). Defaults to 10."`
}

// Request converts Args to a search request, applying the default limit.
func (a Args) Request() tvdb.SearchRequest {
	req := tvdb.SearchRequest{
		Query: a.Query,
		Year:  a.Year,
		Limit: tvdb.DefaultLimit,
	}
	if a.ContentType != nil {
		req.ContentType = *a.ContentType
	}
	if a.Company != nil {
		req.Company = *a.Company
	}
	if a.Limit != nil {
		req.Limit = *a.Limit
	}
	return req
}

// New returns the search_tv_series_tvdb tool backed by search.
func New(search *tvdb.SearchTool) (tool.CallableTool, error) {
	return functiontool.New(
		functiontool.Config{Name: Name, Description: Description},
		func(ctx context.Context, args Args) (string, error) {
			return search.Search(ctx, args.Request())
		},
	)
}
