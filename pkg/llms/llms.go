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

// Package llms provides agent.Model implementations for chat endpoints.
//
// Two providers are available:
//   - openai: any OpenAI-compatible chat-completions endpoint, including
//     Gemini's compatibility layer
//   - genai: the native Gemini API through google.golang.org/genai
package llms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
)

const (
	ProviderOpenAI = "openai"
	ProviderGenAI  = "genai"

	DefaultTimeout = 60 * time.Second
)

// Config describes a model endpoint.
type Config struct {
	// Provider selects the implementation (default: openai).
	Provider string

	APIKey string

	// BaseURL overrides the provider's endpoint.
	BaseURL string

	Model string

	Temperature *float64
	MaxTokens   int

	// Timeout bounds a single HTTP request (default: 60s).
	Timeout time.Duration

	// HTTPClient replaces the default transport.
	HTTPClient *http.Client
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// New creates the model selected by cfg.Provider.
func New(ctx context.Context, cfg Config) (agent.Model, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case ProviderGenAI:
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: %s, %s)", cfg.Provider, ProviderOpenAI, ProviderGenAI)
	}
}
