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

// Package moviesbuddy assembles the Movies Buddy agent and runs
// conversations against it.
//
// CreateAgent wires the model endpoint, the Wikipedia summary tool and the
// TVDB search tool into an agent. Run drives a single conversation turn with
// an optional bounded wait and converts every failure except a missing API
// key into a user-facing message.
package moviesbuddy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/config"
	"github.com/kadirpekel/moviesbuddy/pkg/llms"
	"github.com/kadirpekel/moviesbuddy/pkg/tool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/mcptoolset"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/tvdbtool"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/wikitool"
	"github.com/kadirpekel/moviesbuddy/pkg/tvdb"
	"github.com/kadirpekel/moviesbuddy/pkg/wikipedia"
)

const (
	AgentName = "Movies Buddy"

	// MCPServerName names the stdio toolset serving the TVDB search tool.
	MCPServerName = "tvdb-stdio"

	// MCPCommand is the subcommand of this binary that serves TVDB over MCP.
	MCPCommand = "tvdb-mcp"
)

// MissingAPIKeyError reports that no LLM API key could be resolved.
// It is the only error Run returns.
type MissingAPIKeyError struct {
	Err *config.MissingCredentialError
}

func (e *MissingAPIKeyError) Error() string {
	return "Set GEMINI_API_KEY or GOOGLE_API_KEY before running."
}

func (e *MissingAPIKeyError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// ModelFactory builds the model for an llms.Config.
type ModelFactory func(ctx context.Context, cfg llms.Config) (agent.Model, error)

// Option customises CreateAgent and Run. History, timeout, config and
// tracer output only affect Run.
type Option func(*options)

type options struct {
	sources      []config.Source
	cfg          *config.Config
	history      agent.Conversation
	timeout      time.Duration
	modelFactory ModelFactory
	tracerOutput io.Writer
	tvdbFactory  tvdb.ClientFactory
	summarizer   wikitool.Summarizer
	mcpClient    *client.Client
	mcpCommand   string
	mcpArgs      []string
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.sources == nil {
		o.sources = config.DefaultSources(nil)
	}
	if o.modelFactory == nil {
		o.modelFactory = func(ctx context.Context, cfg llms.Config) (agent.Model, error) {
			return llms.New(ctx, cfg)
		}
	}
	return o
}

// WithSources sets the ordered credential sources (default: process environment).
func WithSources(sources ...config.Source) Option {
	return func(o *options) {
		o.sources = sources
	}
}

// WithConfig skips loading settings from .env files and the environment.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = &cfg
	}
}

// WithHistory sets the prior conversation. It is copied, never modified.
func WithHistory(history agent.Conversation) Option {
	return func(o *options) {
		o.history = history
	}
}

// WithTimeout bounds the wait for the agent. Zero waits indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func WithModelFactory(factory ModelFactory) Option {
	return func(o *options) {
		o.modelFactory = factory
	}
}

// WithTracerOutput sets where spans are written when tracing is enabled.
func WithTracerOutput(w io.Writer) Option {
	return func(o *options) {
		o.tracerOutput = w
	}
}

// WithTVDBClientFactory replaces the client factory of the inline TVDB tool.
func WithTVDBClientFactory(factory tvdb.ClientFactory) Option {
	return func(o *options) {
		o.tvdbFactory = factory
	}
}

// WithSummarizer replaces the Wikipedia client of the summary tool.
func WithSummarizer(s wikitool.Summarizer) Option {
	return func(o *options) {
		o.summarizer = s
	}
}

// WithMCPClient uses an existing MCP client for the TVDB toolset.
func WithMCPClient(c *client.Client) Option {
	return func(o *options) {
		o.mcpClient = c
	}
}

// WithMCPCommand overrides the command launched for the TVDB toolset
// (default: this executable with the tvdb-mcp subcommand).
func WithMCPCommand(command string, args ...string) Option {
	return func(o *options) {
		o.mcpCommand = command
		o.mcpArgs = args
	}
}

// Assembly is a ready-to-run agent and the resources it holds.
type Assembly struct {
	Agent     *agent.Agent
	RunConfig agent.RunConfig

	closers []func() error
}

// Close releases the resources held by the assembly, such as the MCP
// connection. Safe to call more than once.
func (a *Assembly) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// CreateAgent resolves the LLM API key, builds the model binding and
// registers the tools selected by cfg.
func CreateAgent(ctx context.Context, cfg config.Config, opts ...Option) (*Assembly, error) {
	return createAgent(ctx, cfg, newOptions(opts))
}

func createAgent(ctx context.Context, cfg config.Config, o *options) (*Assembly, error) {
	cfg.SetDefaults()

	apiKey, err := config.ResolveCredential(config.GeminiAPIKeySpec, o.sources...)
	if err != nil {
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			return nil, &MissingAPIKeyError{Err: missing}
		}
		return nil, err
	}

	model, err := o.modelFactory(ctx, modelConfig(cfg, apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	asm := &Assembly{}
	registry, err := buildTools(ctx, cfg, o, asm)
	if err != nil {
		_ = asm.Close()
		return nil, err
	}

	asm.RunConfig = agent.RunConfig{
		TracingEnabled: cfg.AgentTracing,
		MaxTurns:       cfg.MaxTurns,
	}
	asm.Agent = &agent.Agent{
		Name:         AgentName,
		Instructions: MainInstructions,
		Model:        model,
		Tools:        registry,
		Config:       asm.RunConfig,
	}

	slog.Info("Created Movies Buddy agent",
		"model", cfg.GeminiModel,
		"provider", cfg.GeminiProvider,
		"tools", registry.Names(),
	)
	return asm, nil
}

func modelConfig(cfg config.Config, apiKey string) llms.Config {
	llmCfg := llms.Config{
		Provider: cfg.GeminiProvider,
		APIKey:   apiKey,
		BaseURL:  cfg.GeminiBaseURL,
		Model:    cfg.GeminiModel,
	}
	// The default base URL is the OpenAI-compatible layer; the native
	// client picks its own endpoint.
	if cfg.GeminiProvider == config.GeminiProviderGenAI && cfg.GeminiBaseURL == config.DefaultGeminiBaseURL {
		llmCfg.BaseURL = ""
	}
	return llmCfg
}

func buildTools(ctx context.Context, cfg config.Config, o *options, asm *Assembly) (*tool.Registry, error) {
	registry := tool.NewRegistry()

	summarizer := o.summarizer
	if summarizer == nil {
		summarizer = wikipedia.New(wikipedia.WithLanguage(cfg.WikipediaLanguage))
	}
	summaryTool, err := wikitool.New(summarizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary tool: %w", err)
	}
	if err := registry.Register(summaryTool); err != nil {
		return nil, err
	}

	switch cfg.TVDBTool {
	case config.TVDBToolInline:
		factory := o.tvdbFactory
		if factory == nil {
			factory = tvdb.DefaultClientFactory(o.sources, tvdb.WithBaseURL(cfg.TVDBBaseURL))
		}
		searchTool, err := tvdbtool.New(tvdb.NewSearchTool(factory))
		if err != nil {
			return nil, fmt.Errorf("failed to create TVDB tool: %w", err)
		}
		if err := registry.Register(searchTool); err != nil {
			return nil, err
		}

	case config.TVDBToolMCP:
		toolset, err := newMCPToolset(cfg, o)
		if err != nil {
			return nil, err
		}
		asm.closers = append(asm.closers, toolset.Close)

		tools, err := toolset.Tools(ctx)
		if err != nil {
			return nil, err
		}
		if err := registry.RegisterTools(tools); err != nil {
			return nil, err
		}

	case config.TVDBToolOff:
		slog.Debug("TVDB tool disabled")
	}

	return registry, nil
}

func newMCPToolset(cfg config.Config, o *options) (*mcptoolset.Toolset, error) {
	tsCfg := mcptoolset.Config{
		Name:   MCPServerName,
		Filter: []string{tvdbtool.Name},
		Client: o.mcpClient,
	}
	if o.mcpClient == nil {
		command, args := o.mcpCommand, o.mcpArgs
		if command == "" {
			exe, err := os.Executable()
			if err != nil {
				return nil, fmt.Errorf("failed to locate executable for MCP server: %w", err)
			}
			command, args = exe, []string{MCPCommand}
		}
		tsCfg.Command = command
		tsCfg.Args = args
		tsCfg.Env = mcpEnv(cfg, o.sources)
	}
	return mcptoolset.New(tsCfg)
}

// mcpEnv forwards TVDB settings resolved from explicit sources to the
// server process, which otherwise only sees the inherited environment.
func mcpEnv(cfg config.Config, sources []config.Source) map[string]string {
	env := map[string]string{"TVDB_BASE_URL": cfg.TVDBBaseURL}
	if creds, err := tvdb.LoadCredentials(sources...); err == nil {
		env["TVDB_API_KEY"] = creds.APIKey
		env["TVDB_PIN"] = creds.PIN
	}
	return env
}
