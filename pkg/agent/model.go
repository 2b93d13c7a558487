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
	"context"

	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

// Model is a chat model able to request tool calls.
type Model interface {
	// Name returns the model identifier.
	Name() string

	// Generate produces the next assistant message for req.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request contains the input for one model call.
type Request struct {
	// Instructions is the system prompt, sent ahead of Messages.
	Instructions string

	// Messages is the conversation so far.
	Messages Conversation

	// Tools the model may call.
	Tools []tool.Definition
}

// Response is one model turn.
type Response struct {
	// Message is the assistant message, possibly carrying tool calls.
	Message Message

	FinishReason string
	Usage        Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
