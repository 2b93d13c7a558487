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

package moviesbuddy

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/config"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/wikitool"
)

func runOptions(model agent.Model, extra ...Option) []Option {
	return testOptions(model, append([]Option{WithConfig(config.Default())}, extra...)...)
}

func TestRun_Answer(t *testing.T) {
	model := funcModel(func(_ context.Context, req *agent.Request) (*agent.Response, error) {
		last, _ := req.Messages.Last()
		if last.Role == agent.RoleUser {
			return &agent.Response{Message: agent.Message{
				ToolCalls: []tool.ToolCall{{ID: "c1", Name: wikitool.Name, Args: map[string]any{"title": "Foundation"}}},
			}}, nil
		}
		return &agent.Response{Message: agent.AssistantMessage("Summary (Wikipedia): " + last.Content.String())}, nil
	})

	conv, out, err := Run(context.Background(), "Tell me about Foundation", runOptions(model)...)
	require.NoError(t, err)

	const summary = `{"title":"Foundation","summary":"An American science fiction series."}`
	assert.Equal(t, "Summary (Wikipedia): "+summary, out)
	require.Len(t, conv, 4)
	assert.Equal(t, agent.UserMessage("Tell me about Foundation"), conv[0])
	assert.Equal(t, agent.RoleTool, conv[2].Role)
	assert.Equal(t, summary, conv[2].Content.String())
}

func TestRun_KeepsHistory(t *testing.T) {
	var seen agent.Conversation
	model := funcModel(func(_ context.Context, req *agent.Request) (*agent.Response, error) {
		seen = req.Messages.Clone()
		return &agent.Response{Message: agent.AssistantMessage("Sure.")}, nil
	})

	history := agent.Conversation{agent.UserMessage("Hi"), agent.AssistantMessage("Hello!")}
	snapshot := history.Clone()

	conv, out, err := Run(context.Background(), "Any sci-fi?", runOptions(model, WithHistory(history))...)
	require.NoError(t, err)

	assert.Equal(t, "Sure.", out)
	assert.Equal(t, snapshot, history)
	require.Len(t, seen, 3)
	assert.Equal(t, agent.UserMessage("Any sci-fi?"), seen[2])
	assert.Len(t, conv, 4)
}

func TestRun_IndependentWorkingLists(t *testing.T) {
	model := answer("Done.")

	first, _, err := Run(context.Background(), "Foundation", runOptions(model)...)
	require.NoError(t, err)
	second, _, err := Run(context.Background(), "Foundation", runOptions(model)...)
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, first, second)

	first[0] = agent.UserMessage("changed")
	assert.Equal(t, agent.UserMessage("Foundation"), second[0])
}

func TestRun_Timeout(t *testing.T) {
	model := funcModel(func(ctx context.Context, _ *agent.Request) (*agent.Response, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return &agent.Response{Message: agent.AssistantMessage("too late")}, nil
		}
	})

	history := agent.Conversation{agent.UserMessage("Hi"), agent.AssistantMessage("Hello!")}
	snapshot := history.Clone()

	conv, out, err := Run(context.Background(), "Foundation?", runOptions(model,
		WithHistory(history),
		WithTimeout(20*time.Millisecond),
	)...)
	require.NoError(t, err)

	assert.Equal(t, TimeoutMessage, out)
	assert.Equal(t, snapshot, conv)
	assert.Equal(t, snapshot, history)
}

func TestRun_Failure(t *testing.T) {
	model := funcModel(func(context.Context, *agent.Request) (*agent.Response, error) {
		return nil, errors.New("upstream unavailable")
	})

	conv, out, err := Run(context.Background(), "Foundation?", runOptions(model)...)
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, out)
	assert.NotNil(t, conv)
	assert.Empty(t, conv)

	history := agent.Conversation{agent.UserMessage("Hi")}
	conv, out, err = Run(context.Background(), "Foundation?", runOptions(model, WithHistory(history))...)
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, out)
	assert.Equal(t, history, conv)
}

func TestRun_InvalidConfigIsFailure(t *testing.T) {
	cfg := config.Default()
	cfg.TVDBTool = "smoke-signals"

	_, out, err := Run(context.Background(), "Foundation?", testOptions(answer("ok"), WithConfig(cfg))...)
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, out)
}

func TestRun_MissingAPIKey(t *testing.T) {
	conv, out, err := Run(context.Background(), "Foundation?",
		WithConfig(config.Default()),
		keySource(map[string]string{}),
	)
	var missing *MissingAPIKeyError
	require.ErrorAs(t, err, &missing)
	assert.Nil(t, conv)
	assert.Empty(t, out)
}

func TestRun_Tracing(t *testing.T) {
	cfg := config.Default()
	cfg.AgentTracing = true

	var buf bytes.Buffer
	_, out, err := Run(context.Background(), "Foundation?",
		testOptions(answer("Done."), WithConfig(cfg), WithTracerOutput(&buf))...)
	require.NoError(t, err)

	assert.Equal(t, "Done.", out)
	assert.Contains(t, buf.String(), "agent.run")
}

func TestRun_TracingDisabled(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := Run(context.Background(), "Foundation?", runOptions(answer("Done."), WithTracerOutput(&buf))...)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestExtractFinalOutput(t *testing.T) {
	tests := []struct {
		name     string
		conv     agent.Conversation
		fallback string
		want     string
	}{
		{"fallback wins", agent.Conversation{agent.AssistantMessage("last")}, "final", "final"},
		{"empty conversation", nil, "", ""},
		{"plain text", agent.Conversation{agent.AssistantMessage("  verbatim \n")}, "", "  verbatim \n"},
		{
			"text parts",
			agent.Conversation{{Role: agent.RoleAssistant, Content: agent.Parts(
				agent.ContentPart{Type: agent.PartTypeText, Text: "first"},
				agent.ContentPart{Type: "image", Text: "ignored"},
				agent.ContentPart{Type: agent.PartTypeText},
				agent.ContentPart{Type: agent.PartTypeText, Text: "second"},
			)}},
			"",
			"first\nsecond",
		},
		{"no text parts", agent.Conversation{{Role: agent.RoleAssistant, Content: agent.Parts()}}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFinalOutput(tt.conv, tt.fallback))
		})
	}
}
