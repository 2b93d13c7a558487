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

package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

func TestContent_JSON(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{"text", Text("hello"), `"hello"`},
		{"empty text", Text(""), `""`},
		{"parts", Parts(ContentPart{Type: "text", Text: "a"}, ContentPart{Type: "image"}), `[{"type":"text","text":"a"},{"type":"image"}]`},
		{"empty parts", Parts(), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.content)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var decoded Content
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.content.IsParts(), decoded.IsParts())
			assert.Equal(t, tt.content.String(), decoded.String())
		})
	}
}

func TestContent_UnmarshalRejectsObjects(t *testing.T) {
	var c Content
	assert.Error(t, json.Unmarshal([]byte(`{"text":"x"}`), &c))

	require.NoError(t, json.Unmarshal([]byte(`null`), &c))
	assert.False(t, c.IsParts())
	assert.Empty(t, c.String())
}

func TestContent_String(t *testing.T) {
	assert.Equal(t, "plain", Text("plain").String())

	parts := Parts(
		ContentPart{Type: "text", Text: "first"},
		ContentPart{Type: "image", Text: "ignored"},
		ContentPart{Type: "text", Text: ""},
		ContentPart{Type: "text", Text: "second"},
	)
	assert.Equal(t, "first\nsecond", parts.String())
	assert.Empty(t, parts.PlainText())
	assert.Len(t, parts.PartList(), 4)
}

func TestMessage_JSON(t *testing.T) {
	raw := `[
		{"role":"user","content":"Who directed Dune?"},
		{"role":"assistant","content":"","tool_calls":[{"id":"c1","name":"get_series_movies_summary","arguments":{"title":"Dune"}}]},
		{"role":"tool","content":"{}","tool_call_id":"c1","name":"get_series_movies_summary"},
		{"role":"assistant","content":[{"type":"text","text":"Denis Villeneuve."}]}
	]`

	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))
	require.Len(t, conv, 4)

	assert.Equal(t, RoleUser, conv[0].Role)
	assert.Equal(t, "Dune", conv[1].ToolCalls[0].Args["title"])
	assert.Equal(t, "c1", conv[2].ToolCallID)
	assert.True(t, conv[3].Content.IsParts())
	assert.Equal(t, "Denis Villeneuve.", conv[3].Content.String())

	data, err := json.Marshal(conv)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))
}

func TestConversation_CloneIsDeep(t *testing.T) {
	orig := Conversation{
		UserMessage("hi"),
		{
			Role:      RoleAssistant,
			Content:   Parts(ContentPart{Type: "text", Text: "a"}),
			ToolCalls: []tool.ToolCall{{ID: "1", Name: "t", Args: map[string]any{"k": "v"}}},
		},
	}

	clone := orig.Clone()
	clone[0].Content = Text("changed")
	clone[1].Content.PartList()[0].Text = "changed"
	clone[1].ToolCalls[0].Args["k"] = "changed"
	clone[1].ToolCalls[0].ID = "2"

	assert.Equal(t, "hi", orig[0].Content.String())
	assert.Equal(t, "a", orig[1].Content.String())
	assert.Equal(t, "v", orig[1].ToolCalls[0].Args["k"])
	assert.Equal(t, "1", orig[1].ToolCalls[0].ID)

	assert.Nil(t, Conversation(nil).Clone())
}

func TestConversation_Append(t *testing.T) {
	history := make(Conversation, 1, 4)
	history[0] = UserMessage("first")

	a := history.Append(UserMessage("second"))
	b := history.Append(UserMessage("other"))

	assert.Len(t, history, 1)
	assert.Equal(t, "second", a[1].Content.String())
	assert.Equal(t, "other", b[1].Content.String())

	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, "second", last.Content.String())

	_, ok = Conversation{}.Last()
	assert.False(t, ok)
}
