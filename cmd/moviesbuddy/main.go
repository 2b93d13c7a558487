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

// Command moviesbuddy answers questions about movies and TV series.
//
// Usage:
//
//	moviesbuddy                          # ask interactively
//	moviesbuddy ask -q "Who stars in Foundation?"
//	moviesbuddy search "The Expanse" --type series
//	moviesbuddy summary "Foundation"
//	moviesbuddy tvdb-mcp                 # serve TVDB search over MCP stdio
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/moviesbuddy/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Ask     AskCmd     `cmd:"" default:"withargs" help:"Ask Movies Buddy a question (default)."`
	Search  SearchCmd  `cmd:"" help:"Search The TV Database directly."`
	Summary SummaryCmd `cmd:"" help:"Fetch the Wikipedia summary of a title."`
	TVDBMCP TVDBMCPCmd `cmd:"" name:"tvdb-mcp" help:"Serve the TVDB search tool over MCP stdio."`
	Version VersionCmd `cmd:"" help:"Show version information."`

	EnvFile   string `name:"env-file" help:"Additional .env file loaded before ./.env and ~/.env." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, or text)."`
}

// exitError carries a process exit code for an outcome already reported to the user.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			slog.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("moviesbuddy"),
		kong.Description("Movies Buddy - TV & movie assistant backed by TVDB and Wikipedia"),
		kong.UsageOnError(),
	)

	_ = config.LoadDotEnv(cli.EnvFile)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err = ctx.Run(&cli)
	if cleanup != nil {
		cleanup()
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	ctx.FatalIfErrorf(err)
}
