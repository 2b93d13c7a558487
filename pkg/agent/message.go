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
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartTypeText marks a content part carrying text.
const PartTypeText = "text"

// ContentPart is one typed element of a multi-part message.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Content is either plain text or a list of typed parts.
// It encodes as a JSON string or a JSON array accordingly.
type Content struct {
	text  string
	parts []ContentPart
}

// Text returns plain text content.
func Text(s string) Content {
	return Content{text: s}
}

// Parts returns multi-part content. A nil list still encodes as an array.
func Parts(parts ...ContentPart) Content {
	if parts == nil {
		parts = []ContentPart{}
	}
	return Content{parts: parts}
}

// IsParts reports whether the content is a list of parts.
func (c Content) IsParts() bool {
	return c.parts != nil
}

// PlainText returns the text of plain content, or "" for parts.
func (c Content) PlainText() string {
	return c.text
}

// PartList returns the parts of multi-part content.
func (c Content) PartList() []ContentPart {
	return c.parts
}

// String renders the content as text. Parts contribute their non-empty
// text parts joined by newlines.
func (c Content) String() string {
	if !c.IsParts() {
		return c.text
	}
	var texts []string
	for _, p := range c.parts {
		if p.Type == PartTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func (c Content) clone() Content {
	if c.parts == nil {
		return c
	}
	return Content{parts: append([]ContentPart{}, c.parts...)}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsParts() {
		return json.Marshal(c.parts)
	}
	return json.Marshal(c.text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Content{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	case data[0] == '[':
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = Parts(parts...)
		return nil
	default:
		return fmt.Errorf("message content must be a string or a list of parts")
	}
}

// Message is one entry of a conversation.
type Message struct {
	Role       Role            `json:"role"`
	Content    Content         `json:"content"`
	ToolCalls  []tool.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Name       string          `json:"name,omitempty"`
}

// UserMessage builds a plain-text user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: Text(text)}
}

// AssistantMessage builds a plain-text assistant message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: Text(text)}
}

// ToolMessage builds the result message for a tool call.
func ToolMessage(callID, name, output string) Message {
	return Message{Role: RoleTool, Content: Text(output), ToolCallID: callID, Name: name}
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	out := m
	out.Content = m.Content.clone()
	if m.ToolCalls != nil {
		out.ToolCalls = make([]tool.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			tc.Args = maps.Clone(tc.Args)
			out.ToolCalls[i] = tc
		}
	}
	return out
}

// Conversation is an ordered list of messages.
type Conversation []Message

// Clone returns a deep copy; the result never aliases c.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	for i, m := range c {
		out[i] = m.Clone()
	}
	return out
}

// Append returns a copy of c extended with msgs.
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, c.Clone()...)
	return append(out, msgs...)
}

// Last returns the final message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c) == 0 {
		return Message{}, false
	}
	return c[len(c)-1], true
}
