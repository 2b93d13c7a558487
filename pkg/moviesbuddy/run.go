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
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/config"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/version"
)

const (
	TimeoutMessage = "Request timed out."
	FailureMessage = "The agent failed to run."

	tracerShutdownTimeout = 5 * time.Second
)

type runOutcome struct {
	result *agent.Result
	err    error
}

// Run sends userInput to a freshly assembled agent, after the history set
// with WithHistory, and returns the resulting conversation and final answer.
//
// A missing LLM API key is returned as *MissingAPIKeyError. Every other
// failure is logged and reported through the returned message: on timeout
// the prior history is returned unchanged with TimeoutMessage, otherwise
// with FailureMessage. The in-flight run is cancelled but not awaited when
// the timeout elapses.
func Run(ctx context.Context, userInput string, opts ...Option) (agent.Conversation, string, error) {
	o := newOptions(opts)

	cfg, err := runConfig(o)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return priorHistory(o.history), FailureMessage, nil
	}

	asm, err := createAgent(ctx, cfg, o)
	if err != nil {
		var missing *MissingAPIKeyError
		if errors.As(err, &missing) {
			return nil, "", err
		}
		slog.Error("Movies Buddy agent run failed", "error", err)
		return priorHistory(o.history), FailureMessage, nil
	}
	defer func() {
		if err := asm.Close(); err != nil {
			slog.Warn("Failed to release agent resources", "error", err)
		}
	}()

	tracer, err := observability.InitGlobalTracer(ctx, observability.TracerConfig{
		Enabled:        asm.RunConfig.TracingEnabled,
		ServiceVersion: version.Version,
		Output:         o.tracerOutput,
	})
	if err != nil {
		slog.Warn("Failed to initialize tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
			defer cancel()
			if err := tracer.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Failed to flush traces", "error", err)
			}
		}()
	}

	messages := o.history.Append(agent.UserMessage(userInput))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan runOutcome, 1)
	go func() {
		result, err := asm.Agent.Run(runCtx, messages)
		done <- runOutcome{result: result, err: err}
	}()

	var expired <-chan time.Time
	if o.timeout > 0 {
		timer := time.NewTimer(o.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case out := <-done:
		if out.err != nil {
			slog.Error("Movies Buddy agent run failed", "error", out.err)
			return priorHistory(o.history), FailureMessage, nil
		}
		slog.Info("Movies Buddy agent run completed",
			"turns", out.result.Turns,
			"tokens", out.result.Usage.TotalTokens,
		)
		return out.result.Messages, ExtractFinalOutput(out.result.Messages, out.result.FinalOutput), nil

	case <-expired:
		slog.Warn("Movies Buddy agent run timed out", "timeout", o.timeout)
		return priorHistory(o.history), TimeoutMessage, nil

	case <-ctx.Done():
		slog.Error("Movies Buddy agent run failed", "error", ctx.Err())
		return priorHistory(o.history), FailureMessage, nil
	}
}

func runConfig(o *options) (config.Config, error) {
	if o.cfg != nil {
		cfg := *o.cfg
		cfg.SetDefaults()
		return cfg, cfg.Validate()
	}
	return config.LoadFromEnvironment()
}

// priorHistory returns history as given, or an empty conversation.
func priorHistory(history agent.Conversation) agent.Conversation {
	if history == nil {
		return agent.Conversation{}
	}
	return history
}

// ExtractFinalOutput returns fallback when set, otherwise the text of the
// last message: plain text verbatim, or the non-empty text parts joined by
// newlines.
func ExtractFinalOutput(conv agent.Conversation, fallback string) string {
	if fallback != "" {
		return fallback
	}
	last, ok := conv.Last()
	if !ok {
		return ""
	}
	return last.Content.String()
}
