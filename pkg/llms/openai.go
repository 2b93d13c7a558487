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

package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/httpclient"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIProvider struct {
	config     Config
	httpClient *httpclient.Client
}

type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	Tools       []OpenAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
}

type OpenAIResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
	Error   *Error   `json:"error,omitempty"`
}

type OpenAIMessage struct {
	Role       string           `json:"role"`
	Content    any              `json:"content"` // string, []OpenAIContentPart or nil
	ToolCalls  []OpenAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type OpenAIContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Choice struct {
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type OpenAITool struct {
	Type     string             `json:"type"`
	Function OpenAIToolFunction `json:"function"`
}

type OpenAIToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type OpenAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function OpenAIFunctionCall `json:"function"`
}

type OpenAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewOpenAIProvider creates a provider from cfg.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}

	base := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		base = &copied
	}
	base.Timeout = cfg.Timeout

	return &OpenAIProvider{
		config: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(base),
			httpclient.WithName("llm"),
		),
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return p.config.Model
}

// Generate sends one chat-completions request.
func (p *OpenAIProvider) Generate(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	ctx, span := observability.GetTracer("moviesbuddy.llm").Start(ctx, observability.SpanLLMRequest,
		trace.WithAttributes(
			attribute.String(observability.AttrLLMModel, p.config.Model),
			attribute.String("provider", ProviderOpenAI),
		),
	)
	defer span.End()

	request, err := p.buildRequest(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if response.Error != nil {
		apiErr := fmt.Errorf("OpenAI API error: %s", response.Error.Message)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, response.Error.Message)
		return nil, apiErr
	}

	if len(response.Choices) == 0 {
		noChoiceErr := fmt.Errorf("no response choices returned")
		span.RecordError(noChoiceErr)
		span.SetStatus(codes.Error, "no choices")
		return nil, noChoiceErr
	}

	choice := response.Choices[0]
	toolCalls, err := parseToolCalls(choice.Message.ToolCalls)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int(observability.AttrLLMTokensIn, response.Usage.PromptTokens),
		attribute.Int(observability.AttrLLMTokensOut, response.Usage.CompletionTokens),
		attribute.Int("llm.tool_calls", len(toolCalls)),
	)
	span.SetStatus(codes.Ok, "success")

	return &agent.Response{
		Message: agent.Message{
			Role:      agent.RoleAssistant,
			Content:   parseContent(choice.Message.Content),
			ToolCalls: toolCalls,
		},
		FinishReason: choice.FinishReason,
		Usage: agent.Usage{
			PromptTokens:     response.Usage.PromptTokens,
			CompletionTokens: response.Usage.CompletionTokens,
			TotalTokens:      response.Usage.TotalTokens,
		},
	}, nil
}

func (p *OpenAIProvider) buildRequest(req *agent.Request) (OpenAIRequest, error) {
	request := OpenAIRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		Tools:       convertToOpenAITools(req.Tools),
	}
	if p.config.MaxTokens > 0 {
		maxTokens := p.config.MaxTokens
		request.MaxTokens = &maxTokens
	}
	if len(request.Tools) > 0 {
		request.ToolChoice = "auto"
	}

	if req.Instructions != "" {
		request.Messages = append(request.Messages, OpenAIMessage{Role: "system", Content: req.Instructions})
	}

	for _, msg := range req.Messages {
		converted, err := convertMessage(msg)
		if err != nil {
			return OpenAIRequest{}, err
		}
		request.Messages = append(request.Messages, converted)
	}
	return request, nil
}

func convertMessage(msg agent.Message) (OpenAIMessage, error) {
	out := OpenAIMessage{
		Role:       string(msg.Role),
		ToolCallID: msg.ToolCallID,
	}
	if msg.Role == agent.RoleTool {
		out.Name = msg.Name
	}

	if msg.Content.IsParts() {
		parts := make([]OpenAIContentPart, 0, len(msg.Content.PartList()))
		for _, part := range msg.Content.PartList() {
			parts = append(parts, OpenAIContentPart{Type: part.Type, Text: part.Text})
		}
		out.Content = parts
	} else {
		out.Content = msg.Content.PlainText()
	}

	for _, tc := range msg.ToolCalls {
		args, err := json.Marshal(tc.Args)
		if err != nil {
			return OpenAIMessage{}, fmt.Errorf("failed to encode arguments for %s: %w", tc.Name, err)
		}
		out.ToolCalls = append(out.ToolCalls, OpenAIToolCall{
			ID:       tc.ID,
			Type:     "function",
			Function: OpenAIFunctionCall{Name: tc.Name, Arguments: string(args)},
		})
	}
	if len(out.ToolCalls) > 0 && out.Content == "" {
		out.Content = nil
	}
	return out, nil
}

func convertToOpenAITools(defs []tool.Definition) []OpenAITool {
	if len(defs) == 0 {
		return nil
	}
	result := make([]OpenAITool, len(defs))
	for i, def := range defs {
		result[i] = OpenAITool{
			Type: "function",
			Function: OpenAIToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}
	return result
}

func parseToolCalls(openaiToolCalls []OpenAIToolCall) ([]tool.ToolCall, error) {
	if len(openaiToolCalls) == 0 {
		return nil, nil
	}
	result := make([]tool.ToolCall, len(openaiToolCalls))

	for i, tc := range openaiToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(tc.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
			}
		}

		result[i] = tool.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		}
	}
	return result, nil
}

// parseContent accepts string or part-list message content.
func parseContent(content any) agent.Content {
	switch c := content.(type) {
	case string:
		return agent.Text(c)
	case []any:
		parts := make([]agent.ContentPart, 0, len(c))
		for _, raw := range c {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			partType, _ := m["type"].(string)
			text, _ := m["text"].(string)
			parts = append(parts, agent.ContentPart{Type: partType, Text: text})
		}
		return agent.Parts(parts...)
	default:
		return agent.Text("")
	}
}

// parseErrorResponse extracts error information from OpenAI API error responses
func parseErrorResponse(body []byte) *Error {
	if len(body) == 0 {
		return nil
	}

	// Gemini's compatibility layer wraps errors in a list.
	var wrapped []struct {
		Error Error `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped) > 0 && wrapped[0].Error.Message != "" {
		return &wrapped[0].Error
	}

	var errorResp struct {
		Error Error `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		return &errorResp.Error
	}
	return nil
}

func (p *OpenAIProvider) endpoint() string {
	return strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, request OpenAIRequest) (*OpenAIResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		// Non-2xx responses come back with the body still readable.
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			if apiErr := parseErrorResponse(body); apiErr != nil {
				return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, apiErr.Message)
			}
			if len(body) > 0 {
				return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response OpenAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &response, nil
}

var _ agent.Model = (*OpenAIProvider)(nil)
