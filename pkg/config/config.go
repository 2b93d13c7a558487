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

// Package config loads Movies Buddy settings and resolves credentials.
//
// Settings come from the process environment, optionally pre-populated from
// .env files that never override variables which are already set.
// Credentials are resolved separately through ResolveCredential so callers
// can pass an explicit ordered list of sources.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	DefaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGeminiModel       = "gemini-2.5-pro"
	DefaultTVDBBaseURL       = "https://api4.thetvdb.com/v4"
	DefaultWikipediaLanguage = "en"
	DefaultMaxTurns          = 10
)

// LLM transports for the Gemini endpoint.
const (
	GeminiProviderOpenAI = "openai"
	GeminiProviderGenAI  = "genai"
)

// TVDB tool attachment modes.
const (
	TVDBToolInline = "inline"
	TVDBToolMCP    = "mcp"
	TVDBToolOff    = "off"
)

// Config holds the non-secret runtime settings.
type Config struct {
	GeminiBaseURL     string `mapstructure:"GEMINI_BASE_URL"`
	GeminiModel       string `mapstructure:"GEMINI_MODEL"`
	GeminiProvider    string `mapstructure:"GEMINI_PROVIDER"`
	AgentTracing      bool   `mapstructure:"AGENT_TRACING"`
	TVDBBaseURL       string `mapstructure:"TVDB_BASE_URL"`
	WikipediaLanguage string `mapstructure:"WIKIPEDIA_LANGUAGE"`
	TVDBTool          string `mapstructure:"MOVIES_BUDDY_TVDB_TOOL"`
	MaxTurns          int    `mapstructure:"MOVIES_BUDDY_MAX_TURNS"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = DefaultGeminiBaseURL
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.GeminiProvider == "" {
		c.GeminiProvider = GeminiProviderOpenAI
	}
	if c.TVDBBaseURL == "" {
		c.TVDBBaseURL = DefaultTVDBBaseURL
	}
	if c.WikipediaLanguage == "" {
		c.WikipediaLanguage = DefaultWikipediaLanguage
	}
	if c.TVDBTool == "" {
		c.TVDBTool = TVDBToolInline
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = DefaultMaxTurns
	}
}

// Validate checks the settings after defaults are applied.
func (c *Config) Validate() error {
	switch c.GeminiProvider {
	case GeminiProviderOpenAI, GeminiProviderGenAI:
	default:
		return fmt.Errorf("invalid GEMINI_PROVIDER %q: must be one of %s, %s",
			c.GeminiProvider, GeminiProviderOpenAI, GeminiProviderGenAI)
	}
	switch c.TVDBTool {
	case TVDBToolInline, TVDBToolMCP, TVDBToolOff:
	default:
		return fmt.Errorf("invalid MOVIES_BUDDY_TVDB_TOOL %q: must be one of %s, %s, %s",
			c.TVDBTool, TVDBToolInline, TVDBToolMCP, TVDBToolOff)
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("invalid MOVIES_BUDDY_MAX_TURNS %d: must be positive", c.MaxTurns)
	}
	return nil
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// Load decodes settings from an environment map.
func Load(env map[string]string) (Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(truthyHook),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if err := decoder.Decode(env); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.TVDBTool = strings.ToLower(strings.TrimSpace(cfg.TVDBTool))
	cfg.GeminiProvider = strings.ToLower(strings.TrimSpace(cfg.GeminiProvider))
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnvironment loads .env files and decodes the process environment.
func LoadFromEnvironment(dotenvPaths ...string) (Config, error) {
	return Load(LoadEnvironment(dotenvPaths...))
}

// ParseBool interprets boolean-ish strings ("1", "true", "yes", "on").
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y", "t":
		return true
	default:
		return false
	}
}

// truthyHook lets string values such as "yes" decode into bool fields.
func truthyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return ParseBool(reflect.ValueOf(data).String()), nil
}
