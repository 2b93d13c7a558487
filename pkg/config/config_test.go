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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultGeminiBaseURL, cfg.GeminiBaseURL)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, GeminiProviderOpenAI, cfg.GeminiProvider)
	assert.Equal(t, DefaultTVDBBaseURL, cfg.TVDBBaseURL)
	assert.Equal(t, DefaultWikipediaLanguage, cfg.WikipediaLanguage)
	assert.Equal(t, TVDBToolInline, cfg.TVDBTool)
	assert.Equal(t, DefaultMaxTurns, cfg.MaxTurns)
	assert.False(t, cfg.AgentTracing)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(map[string]string{
		"GEMINI_BASE_URL":        "http://localhost:9999/v1",
		"GEMINI_MODEL":           "gemini-2.5-flash",
		"GEMINI_PROVIDER":        "GenAI",
		"AGENT_TRACING":          "yes",
		"MOVIES_BUDDY_TVDB_TOOL": " MCP ",
		"MOVIES_BUDDY_MAX_TURNS": "4",
		"UNRELATED":              "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v1", cfg.GeminiBaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, GeminiProviderGenAI, cfg.GeminiProvider)
	assert.True(t, cfg.AgentTracing)
	assert.Equal(t, TVDBToolMCP, cfg.TVDBTool)
	assert.Equal(t, 4, cfg.MaxTurns)
}

func TestLoad_TracingFlagValues(t *testing.T) {
	for value, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, "on": true,
		"0": false, "false": false, "no": false, "": false,
	} {
		cfg, err := Load(map[string]string{"AGENT_TRACING": value})
		require.NoError(t, err, value)
		assert.Equal(t, want, cfg.AgentTracing, value)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(map[string]string{"MOVIES_BUDDY_TVDB_TOOL": "carrier-pigeon"})
	assert.ErrorContains(t, err, "MOVIES_BUDDY_TVDB_TOOL")

	_, err = Load(map[string]string{"GEMINI_PROVIDER": "anthropic"})
	assert.ErrorContains(t, err, "GEMINI_PROVIDER")

	_, err = Load(map[string]string{"MOVIES_BUDDY_MAX_TURNS": "-1"})
	assert.ErrorContains(t, err, "MOVIES_BUDDY_MAX_TURNS")

	_, err = Load(map[string]string{"MOVIES_BUDDY_MAX_TURNS": "many"})
	assert.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MB_TEST_EXISTING=override\nMB_TEST_NEW=fresh\n"), 0o600))

	t.Setenv("MB_TEST_EXISTING", "keep")
	t.Cleanup(func() { os.Unsetenv("MB_TEST_NEW") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "keep", os.Getenv("MB_TEST_EXISTING"))
	assert.Equal(t, "fresh", os.Getenv("MB_TEST_NEW"))
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestEnviron(t *testing.T) {
	t.Setenv("MB_TEST_ENVIRON", "a=b")
	assert.Equal(t, "a=b", Environ()["MB_TEST_ENVIRON"])
}
