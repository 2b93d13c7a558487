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

// Package wikipedia fetches introductory page summaries from the MediaWiki
// action API.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/moviesbuddy/pkg/httpclient"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
)

const (
	DefaultLanguage  = "en"
	DefaultUserAgent = "MoviesBuddyAgent/1.0 (https://example.com/contact)"
	DefaultTimeout   = 15 * time.Second
)

// ErrPageNotFound is returned when the page is missing or has no summary.
var ErrPageNotFound = errors.New("wikipedia page not found")

// Page is a resolved page summary.
type Page struct {
	Title   string
	Summary string
}

type Client struct {
	language   string
	userAgent  string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	http       *httpclient.Client
}

type Option func(*Client)

func WithLanguage(language string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithBaseURL overrides the API endpoint, e.g. "http://127.0.0.1:8080/w/api.php".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		language:  DefaultLanguage,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", c.language)
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		copied := *c.httpClient
		hc = &copied
	}
	hc.Timeout = c.timeout

	c.http = httpclient.New(
		httpclient.WithHTTPClient(hc),
		httpclient.WithName("wikipedia"),
	)
	return c
}

type queryResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Summary returns the plain-text introduction of the page with the given
// (trimmed) title. Redirects are followed and the returned Page carries the
// canonical title of the target page.
func (c *Client) Summary(ctx context.Context, title string) (*Page, error) {
	title = strings.TrimSpace(title)

	ctx, span := observability.GetTracer("moviesbuddy.wikipedia").Start(ctx, observability.SpanWikipediaSummary,
		trace.WithAttributes(attribute.String(observability.AttrWikiTitle, title)),
	)
	defer span.End()

	page, err := c.summary(ctx, title)
	switch {
	case errors.Is(err, ErrPageNotFound):
		span.SetStatus(codes.Ok, "not found")
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	default:
		span.SetStatus(codes.Ok, "success")
	}
	return page, err
}

func (c *Client) summary(ctx context.Context, title string) (*Page, error) {
	if title == "" {
		return nil, ErrPageNotFound
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", decoded.Error.Code, decoded.Error.Info)
	}

	if len(decoded.Query.Pages) == 0 {
		return nil, ErrPageNotFound
	}
	p := decoded.Query.Pages[0]
	if p.Missing || p.Invalid || strings.TrimSpace(p.Extract) == "" {
		return nil, ErrPageNotFound
	}

	return &Page{Title: p.Title, Summary: strings.TrimSpace(p.Extract)}, nil
}
