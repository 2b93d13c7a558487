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

// Package tvdb is a client for The TV Database v4 API.
//
// A Client starts unauthenticated; Authenticate exchanges the API key and
// PIN for a bearer token which every Search then carries. There is no
// automatic transition back: a rejected token surfaces as a RequestError.
package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/moviesbuddy/pkg/config"
	"github.com/kadirpekel/moviesbuddy/pkg/httpclient"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
)

const (
	DefaultBaseURL = config.DefaultTVDBBaseURL
	DefaultTimeout = 10 * time.Second
)

// Credentials authenticate against the TVDB login endpoint.
type Credentials struct {
	APIKey string
	PIN    string
}

// LoadCredentials resolves TVDB_API_KEY and TVDB_PIN from sources.
func LoadCredentials(sources ...config.Source) (Credentials, error) {
	apiKey, err := config.ResolveCredential(config.TVDBAPIKeySpec, sources...)
	if err != nil {
		return Credentials{}, err
	}
	pin, err := config.ResolveCredential(config.TVDBPinSpec, sources...)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{APIKey: apiKey, PIN: pin}, nil
}

// Params are search query parameters. Nil values are dropped.
type Params map[string]any

// Response is the decoded search response body.
type Response map[string]any

type Client struct {
	creds      Credentials
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	http       *httpclient.Client
	token      string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
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

func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:   creds,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	hc := &http.Client{}
	if c.httpClient != nil {
		copied := *c.httpClient
		hc = &copied
	}
	hc.Timeout = c.timeout
	c.http = httpclient.New(
		httpclient.WithHTTPClient(hc),
		httpclient.WithName("tvdb"),
	)

	return c
}

// Authenticated reports whether a token is held.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

type loginRequest struct {
	APIKey string `json:"apikey"`
	PIN    string `json:"pin"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Authenticate logs in and stores the bearer token, replacing any previous one.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx, span := observability.GetTracer("moviesbuddy.tvdb").Start(ctx, observability.SpanTVDBLogin)
	defer span.End()

	fail := func(err *AuthenticationError) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Msg)
		slog.Error("TVDB authentication failed", "error", err)
		return err
	}

	body, err := json.Marshal(loginRequest{APIKey: c.creds.APIKey, PIN: c.creds.PIN})
	if err != nil {
		return fail(&AuthenticationError{Msg: "failed to encode login payload", Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fail(&AuthenticationError{Msg: "failed to create login request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if resp != nil {
		defer resp.Body.Close()
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
	}
	if err != nil {
		return fail(&AuthenticationError{Msg: "login request failed", Err: err})
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fail(&AuthenticationError{Msg: "failed to decode login response", Err: err})
	}
	if decoded.Data.Token == "" {
		return fail(&AuthenticationError{Msg: "token missing in response"})
	}

	c.token = decoded.Data.Token
	span.SetStatus(codes.Ok, "authenticated")
	slog.Info("TVDB authentication successful")
	return nil
}

// Search queries the /search endpoint and returns the raw decoded body.
func (c *Client) Search(ctx context.Context, params Params) (Response, error) {
	if !c.Authenticated() {
		return nil, &AuthenticationError{Msg: "not authenticated", Err: ErrNotAuthenticated}
	}

	query := encodeParams(params)

	ctx, span := observability.GetTracer("moviesbuddy.tvdb").Start(ctx, observability.SpanTVDBSearch,
		trace.WithAttributes(attribute.String(observability.AttrQuery, query.Get("query"))),
	)
	defer span.End()

	fail := func(err *RequestError) (Response, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Msg)
		slog.Error("TVDB search failed", "error", err)
		return nil, err
	}

	endpoint := c.baseURL + "/search"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(&RequestError{Msg: "failed to create search request", Err: err})
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if resp != nil {
		defer resp.Body.Close()
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
	}
	if err != nil {
		if resp != nil {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			slog.Debug("TVDB error body", "status", resp.StatusCode, "body", string(snippet))
		}
		return fail(&RequestError{Msg: "search request failed", Err: err})
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fail(&RequestError{Msg: "failed to decode search response", Err: err})
	}

	if data, ok := decoded["data"].([]any); ok {
		span.SetAttributes(attribute.Int(observability.AttrResultCount, len(data)))
	}
	span.SetStatus(codes.Ok, "success")
	return decoded, nil
}

func encodeParams(params Params) url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s, ok := paramString(params[k]); ok {
			values.Set(k, s)
		}
	}
	return values
}

func paramString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	case int:
		return strconv.Itoa(x), true
	case *int:
		if x == nil {
			return "", false
		}
		return strconv.Itoa(*x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return formatNumber(x), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return fmt.Sprint(x), true
	}
}
