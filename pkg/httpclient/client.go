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

// Package httpclient wraps net/http with status-aware error reporting.
package httpclient

import (
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	client *http.Client
	name   string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.client == nil {
			c.client = &http.Client{}
		}
		c.client.Timeout = timeout
	}
}

// WithName labels log lines with the upstream service name.
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client: &http.Client{Timeout: 60 * time.Second},
		name:   "http",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends req once.
//
// For non-2xx responses both the response and a *StatusError are returned so
// the caller can inspect the status and body. The caller owns resp.Body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("Upstream returned error status",
			"service", c.name, "method", req.Method, "status", resp.StatusCode)
		return resp, &StatusError{StatusCode: resp.StatusCode}
	}

	return resp, nil
}
