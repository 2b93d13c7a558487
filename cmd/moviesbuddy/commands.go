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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kadirpekel/moviesbuddy/pkg/agent"
	"github.com/kadirpekel/moviesbuddy/pkg/config"
	"github.com/kadirpekel/moviesbuddy/pkg/mcpserver"
	"github.com/kadirpekel/moviesbuddy/pkg/moviesbuddy"
	"github.com/kadirpekel/moviesbuddy/pkg/observability"
	"github.com/kadirpekel/moviesbuddy/pkg/tool/wikitool"
	"github.com/kadirpekel/moviesbuddy/pkg/tvdb"
	"github.com/kadirpekel/moviesbuddy/pkg/version"
	"github.com/kadirpekel/moviesbuddy/pkg/wikipedia"
)

const (
	DefaultAskTimeout = 30 * time.Second

	bannerTitle    = "🎬 Movies Buddy Agent 🎬"
	questionPrompt = "Enter your question about movies or TV series: "
	noQueryMessage = "No query provided. Exiting."
	configMessage  = "Set GEMINI_API_KEY and TVDB credentials in your .env before running the agent."
	noAnswerText   = "No agent response captured."
)

var rule = strings.Repeat("=", 50)

// runFunc matches moviesbuddy.Run.
type runFunc func(ctx context.Context, input string, opts ...moviesbuddy.Option) (agent.Conversation, string, error)

// AskCmd asks the agent a single question.
type AskCmd struct {
	Question string        `short:"q" help:"Question to ask (read from stdin when empty)."`
	Timeout  time.Duration `help:"Maximum time to wait for the agent." default:"30s"`
}

func (c *AskCmd) Run() error {
	ctx, cancel := signalContext()
	defer cancel()
	return ask(ctx, os.Stdin, os.Stdout, c.Question, c.Timeout, moviesbuddy.Run)
}

func ask(ctx context.Context, in io.Reader, out io.Writer, question string, timeout time.Duration, run runFunc) error {
	fmt.Fprintf(out, "\n%s\n%s\n", bannerTitle, rule)

	if question == "" {
		fmt.Fprint(out, questionPrompt)
		question = readLine(in)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		fmt.Fprintln(out, noQueryMessage)
		return nil
	}

	fmt.Fprintf(out, "\nProcessing: %s\n\n", question)

	conv, final, err := run(ctx, question, moviesbuddy.WithTimeout(timeout))
	if err != nil {
		var missing *moviesbuddy.MissingAPIKeyError
		if errors.As(err, &missing) {
			slog.Error("Configuration error", "error", err)
			fmt.Fprintln(out, configMessage)
			return &exitError{code: 1}
		}
		slog.Error("Movies Buddy agent run failed", "error", err)
		fmt.Fprintln(out, moviesbuddy.FailureMessage)
		return nil
	}

	printResult(out, conv, final)
	return nil
}

func readLine(in io.Reader) string {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Failed to read question", "error", err)
	}
	return line
}

func printResult(out io.Writer, conv agent.Conversation, final string) {
	if final != "" {
		fmt.Fprintf(out, "\n%s\nAGENT RESPONSE:\n%s\n%s\n%s\n\n", rule, rule, final, rule)
		return
	}

	last, _ := conv.Last()
	slog.Warn("Conversation produced no final output", "last_role", last.Role, "messages", len(conv))
	fmt.Fprintln(out, noAnswerText)
}

// SearchCmd runs a TVDB search and prints the formatted results.
type SearchCmd struct {
	Query   string `arg:"" help:"Search text (title, person, company)."`
	Type    string `help:"Content type (series, movie, person, company)."`
	Year    int    `help:"Release year filter."`
	Company string `help:"Production company filter."`
	Limit   int    `help:"Maximum number of results (1-20)." default:"10"`
}

func (c *SearchCmd) Run() error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.LoadFromEnvironment()
	if err != nil {
		return err
	}

	search := newSearchTool(cfg)
	out, err := search.Search(ctx, c.request())
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func (c *SearchCmd) request() tvdb.SearchRequest {
	req := tvdb.SearchRequest{
		Query:       c.Query,
		ContentType: c.Type,
		Company:     c.Company,
		Limit:       c.Limit,
	}
	if c.Year != 0 {
		year := c.Year
		req.Year = &year
	}
	return req
}

func newSearchTool(cfg config.Config) *tvdb.SearchTool {
	return tvdb.NewSearchTool(tvdb.DefaultClientFactory(
		config.DefaultSources(nil),
		tvdb.WithBaseURL(cfg.TVDBBaseURL),
	))
}

// SummaryCmd prints the Wikipedia summary of a title as JSON.
type SummaryCmd struct {
	Title string `arg:"" help:"Exact title of the TV series or movie."`
}

func (c *SummaryCmd) Run() error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.LoadFromEnvironment()
	if err != nil {
		return err
	}

	out, err := wikitool.Fetch(ctx, wikipedia.New(wikipedia.WithLanguage(cfg.WikipediaLanguage)), c.Title)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// TVDBMCPCmd serves the TVDB search tool to MCP clients over stdio.
type TVDBMCPCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9464)."`
}

func (c *TVDBMCPCmd) Run() error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.LoadFromEnvironment()
	if err != nil {
		return err
	}

	if c.MetricsAddr != "" {
		metrics, err := observability.InitMetrics()
		if err != nil {
			return err
		}
		defer metrics.Shutdown(context.Background())

		observability.SetGlobalMetrics(metrics)
		if _, err := observability.ServeMetrics(ctx, c.MetricsAddr, metrics); err != nil {
			return err
		}
	}

	srv, err := mcpserver.NewTVDBServer(newSearchTool(cfg))
	if err != nil {
		return err
	}

	slog.Info("Serving TVDB search over MCP stdio", "server", mcpserver.ServerName)
	return mcpserver.ServeStdio(ctx, srv, os.Stdin, os.Stdout)
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.Get().String())
	return nil
}
