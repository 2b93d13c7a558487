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

package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	schema map[string]any
}

func (s *stubTool) Name() string           { return s.name }
func (s *stubTool) Description() string    { return "stub " + s.name }
func (s *stubTool) Schema() map[string]any { return s.schema }
func (s *stubTool) Call(context.Context, map[string]any) (string, error) {
	return s.name, nil
}

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "b"}, &stubTool{name: "a"}))
	require.NoError(t, r.Register(&stubTool{name: "c"}))

	assert.Equal(t, []string{"b", "a", "c"}, r.Names())
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get("a")
	require.True(t, ok)
	out, err := got.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "search"}))

	assert.ErrorContains(t, r.Register(&stubTool{name: "search"}), "already registered")
	assert.ErrorContains(t, r.Register(&stubTool{name: ""}), "name is required")
	assert.Error(t, r.Register(nil))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Definitions(t *testing.T) {
	schema := map[string]any{"type": "object"}
	r := NewRegistry()
	require.NoError(t, r.RegisterTools([]Tool{&stubTool{name: "x", schema: schema}}))

	assert.Equal(t, []Definition{{Name: "x", Description: "stub x", Parameters: schema}}, r.Definitions())
}

func TestRegistry_NilLen(t *testing.T) {
	var r *Registry
	assert.Zero(t, r.Len())
}
