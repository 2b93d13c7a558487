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
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

const DefaultGeminiAPIVersion = "v1beta"

// GeminiProvider calls the native Gemini API through the genai SDK.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a provider from cfg. An empty BaseURL uses
// the SDK's default endpoint.
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	httpClient.Timeout = cfg.Timeout

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: DefaultGeminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: cfg}, nil
}

func (p *GeminiProvider) Name() string {
	return p.config.Model
}

// Generate performs one non-streaming generateContent call.
func (p *GeminiProvider) Generate(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	ctx, span := observability.GetTracer("moviesbuddy.llm").Start(ctx, observability.SpanLLMRequest,
		trace.WithAttributes(
			attribute.String(observability.AttrLLMModel, p.config.Model),
			attribute.String("provider", ProviderGenAI),
		),
	)
	defer span.End()

	genResp, err := p.client.Models.GenerateContent(ctx, p.config.Model, buildContents(req.Messages), p.buildConfig(req))
	if err != nil {
		err = fmt.Errorf("Gemini generation failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp, err := parseGeminiResponse(genResp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int(observability.AttrLLMTokensIn, resp.Usage.PromptTokens),
		attribute.Int(observability.AttrLLMTokensOut, resp.Usage.CompletionTokens),
		attribute.Int("llm.tool_calls", len(resp.Message.ToolCalls)),
	)
	span.SetStatus(codes.Ok, "success")
	return resp, nil
}

func (p *GeminiProvider) buildConfig(req *agent.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
			Role:  genai.RoleUser,
		}
	}
	if p.config.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*p.config.Temperature))
	}
	if p.config.MaxTokens > 0 {
		config.MaxOutputTokens = int32(p.config.MaxTokens)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: buildDeclarations(req.Tools)}}
	}
	return config
}

func buildDeclarations(defs []tool.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}
		if def.Parameters != nil {
			decl.ParametersJsonSchema = def.Parameters
		}
		decls = append(decls, decl)
	}
	return decls
}

// buildContents maps the conversation onto Gemini roles. Tool results are
// sent as function responses under the user role.
func buildContents(messages agent.Conversation) []*genai.Content {
	var contents []*genai.Content

	for _, msg := range messages {
		var parts []*genai.Part
		role := genai.RoleUser

		switch msg.Role {
		case agent.RoleTool:
			parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       msg.ToolCallID,
				Name:     msg.Name,
				Response: toolResponse(msg.Content.String()),
			}})
		case agent.RoleAssistant:
			role = genai.RoleModel
			if text := msg.Content.String(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: tc.Args,
				}})
			}
		default:
			if text := msg.Content.String(); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
		}

		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Parts: parts, Role: role})
	}
	return contents
}

// toolResponse wraps a tool output as a function response object. JSON
// object outputs are passed through as structured data.
func toolResponse(output string) map[string]any {
	var structured map[string]any
	if err := json.Unmarshal([]byte(output), &structured); err == nil && structured != nil {
		return structured
	}
	return map[string]any{"result": output}
}

func parseGeminiResponse(genResp *genai.GenerateContentResponse) (*agent.Response, error) {
	if genResp == nil || len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	candidate := genResp.Candidates[0]

	msg := agent.Message{Role: agent.RoleAssistant}
	if candidate.Content != nil {
		var text string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				text += part.Text
			}
			if part.FunctionCall != nil {
				msg.ToolCalls = append(msg.ToolCalls, tool.ToolCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			}
		}
		msg.Content = agent.Text(text)
	}

	resp := &agent.Response{
		Message:      msg,
		FinishReason: string(candidate.FinishReason),
	}
	if genResp.UsageMetadata != nil {
		resp.Usage = agent.Usage{
			PromptTokens:     int(genResp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(genResp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(genResp.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

var _ agent.Model = (*GeminiProvider)(nil)
