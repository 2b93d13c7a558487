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

package functiontool_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/moviesbuddy/pkg/tool/functiontool"
)

type lookupArgs struct {
	Title string `json:"title" jsonschema:"required,description=Exact title"`
	Year  *int   `json:"year,omitempty" jsonschema:"description=Release year"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=20,default=10"`
}

func TestNew_Schema(t *testing.T) {
	lookup, err := functiontool.New(
		functiontool.Config{Name: "lookup", Description: "Look up a title"},
		func(ctx context.Context, args lookupArgs) (string, error) { return args.Title, nil },
	)
	require.NoError(t, err)

	assert.Equal(t, "lookup", lookup.Name())
	assert.Equal(t, "Look up a title", lookup.Description())

	schema := lookup.Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"title"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "title")
	require.Contains(t, props, "year")
	require.Contains(t, props, "limit")

	title := props["title"].(map[string]any)
	assert.Equal(t, "string", title["type"])
	assert.Equal(t, "Exact title", title["description"])

	limit := props["limit"].(map[string]any)
	assert.Equal(t, "integer", limit["type"])
	assert.EqualValues(t, 1, limit["minimum"])
	assert.EqualValues(t, 20, limit["maximum"])
}

func TestNew_CallDecodesArguments(t *testing.T) {
	var calls []lookupArgs
	lookup, err := functiontool.New(
		functiontool.Config{Name: "lookup", Description: "Look up a title"},
		func(ctx context.Context, args lookupArgs) (string, error) {
			calls = append(calls, args)
			return fmt.Sprintf("%s/%d", args.Title, args.Limit), nil
		},
	)
	require.NoError(t, err)

	out, err := lookup.Call(context.Background(), map[string]any{
		"title": "Dark",
		"year":  float64(2017),
		"limit": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dark/3", out)
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Year)
	assert.Equal(t, 2017, *calls[0].Year)

	out, err = lookup.Call(context.Background(), map[string]any{"title": "Dark"})
	require.NoError(t, err)
	assert.Equal(t, "Dark/0", out)
	assert.Nil(t, calls[1].Year)
}

func TestNew_InvalidArguments(t *testing.T) {
	lookup, err := functiontool.New(
		functiontool.Config{Name: "lookup", Description: "Look up a title"},
		func(ctx context.Context, args lookupArgs) (string, error) { return "unreachable", nil },
	)
	require.NoError(t, err)

	_, err = lookup.Call(context.Background(), map[string]any{"title": 42})
	assert.ErrorContains(t, err, "invalid arguments for lookup")
}

func TestNew_FunctionError(t *testing.T) {
	boom := errors.New("boom")
	lookup, err := functiontool.New(
		functiontool.Config{Name: "lookup", Description: "Look up a title"},
		func(ctx context.Context, args lookupArgs) (string, error) { return "", boom },
	)
	require.NoError(t, err)

	_, err = lookup.Call(context.Background(), map[string]any{"title": "x"})
	assert.ErrorIs(t, err, boom)
}

func TestNew_ConfigValidation(t *testing.T) {
	fn := func(ctx context.Context, args lookupArgs) (string, error) { return "", nil }

	_, err := functiontool.New(functiontool.Config{Description: "d"}, fn)
	assert.ErrorContains(t, err, "name is required")

	_, err = functiontool.New(functiontool.Config{Name: "n"}, fn)
	assert.ErrorContains(t, err, "description is required")

	_, err = functiontool.New[lookupArgs](functiontool.Config{Name: "n", Description: "d"}, nil)
	assert.Error(t, err)
}
