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

// Package agent runs a model/tool loop over a conversation.
//
// An Agent pairs a Model with instructions and a tool registry. Run sends
// the conversation to the model, executes any tool calls it requests,
// feeds the results back and repeats until the model answers without
// calling tools.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
)

const DefaultMaxTurns = 10

// ErrMaxTurnsExceeded is returned when the model keeps calling tools past
// the configured turn limit.
var ErrMaxTurnsExceeded = errors.New("max turns exceeded")

// RunConfig controls a run.
type RunConfig struct {
	// TracingEnabled requests span export for the run. Spans are always
	// created through the global provider; this flag is read by the caller
	// that installs it.
	TracingEnabled bool

	// MaxTurns bounds the number of model calls (default: 10).
	MaxTurns int
}

// Agent is a named model with instructions and tools.
type Agent struct {
	Name         string
	Instructions string
	Model        Model
	Tools        *tool.Registry
	Config       RunConfig
}

// Result is the outcome of a run.
type Result struct {
	// Messages is the input conversation followed by every message the
	// run produced.
	Messages Conversation

	// FinalOutput is the text of the last assistant message.
	FinalOutput string

	Usage Usage
	Turns int
}

// Run executes the agent loop on input. input is never modified.
func (a *Agent) Run(ctx context.Context, input Conversation) (*Result, error) {
	if a.Model == nil {
		return nil, fmt.Errorf("agent %s: model is required", a.Name)
	}
	maxTurns := a.Config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	ctx, span := observability.GetTracer("moviesbuddy.agent").Start(ctx, observability.SpanAgentRun,
		trace.WithAttributes(
			attribute.String(observability.AttrAgentName, a.Name),
			attribute.String(observability.AttrLLMModel, a.Model.Name()),
			attribute.Int("agent.input_messages", len(input)),
		),
	)
	defer span.End()

	result := &Result{Messages: input.Clone()}
	defs := a.Tools.Definitions()

	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, recordError(span, err)
		}

		start := time.Now()
		resp, err := a.Model.Generate(ctx, &Request{
			Instructions: a.Instructions,
			Messages:     result.Messages,
			Tools:        defs,
		})
		if err != nil {
			observability.RecordLLMCall(ctx, a.Model.Name(), time.Since(start), 0, 0, err)
			return nil, recordError(span, fmt.Errorf("model call failed: %w", err))
		}
		observability.RecordLLMCall(ctx, a.Model.Name(), time.Since(start),
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)
		result.Turns++
		result.Usage.Add(resp.Usage)

		msg := resp.Message
		msg.Role = RoleAssistant
		for i := range msg.ToolCalls {
			if msg.ToolCalls[i].ID == "" {
				msg.ToolCalls[i].ID = "call_" + uuid.NewString()
			}
		}
		result.Messages = append(result.Messages, msg)

		if len(msg.ToolCalls) == 0 {
			result.FinalOutput = msg.Content.String()
			span.SetAttributes(attribute.Int("agent.turns", result.Turns))
			span.SetStatus(codes.Ok, "completed")
			slog.Debug("Agent run completed", "agent", a.Name, "turns", result.Turns)
			return result, nil
		}

		for _, call := range msg.ToolCalls {
			output := a.callTool(ctx, call)
			result.Messages = append(result.Messages, ToolMessage(call.ID, call.Name, output))
		}
	}

	return nil, recordError(span, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, maxTurns))
}

// callTool executes one tool call. Failures are reported to the model as
// the tool output rather than aborting the run.
func (a *Agent) callTool(ctx context.Context, call tool.ToolCall) string {
	ctx, span := observability.GetTracer("moviesbuddy.agent").Start(ctx, observability.SpanToolExecution,
		trace.WithAttributes(
			attribute.String(observability.AttrToolName, call.Name),
			attribute.String("tool.call_id", call.ID),
		),
	)
	defer span.End()

	t, ok := a.Tools.Get(call.Name)
	if !ok {
		err := fmt.Errorf("tool %q not found", call.Name)
		recordError(span, err)
		slog.Warn("Model requested unknown tool", "tool", call.Name, "callID", call.ID)
		return "Error: " + err.Error()
	}

	slog.Info("Executing tool", "tool", call.Name, "callID", call.ID, "args", call.Args)
	start := time.Now()
	output, err := t.Call(ctx, call.Args)
	observability.RecordToolExecution(ctx, call.Name, time.Since(start), err)
	if err != nil {
		recordError(span, err)
		slog.Warn("Tool execution failed", "tool", call.Name, "callID", call.ID, "error", err)
		return "Error: " + err.Error()
	}

	span.SetStatus(codes.Ok, "success")
	slog.Debug("Tool execution completed", "tool", call.Name, "callID", call.ID)
	return output
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
