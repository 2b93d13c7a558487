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

// Package observability wires OpenTelemetry tracing for Movies Buddy runs.
package observability

const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrAgentName      = "agent.name"
	AttrToolName       = "tool.name"
	AttrLLMModel       = "llm.model"
	AttrLLMTokensIn    = "llm.tokens.input"
	AttrLLMTokensOut   = "llm.tokens.output"
	AttrStatusCode     = "http.status_code"
	AttrQuery          = "tvdb.query"
	AttrResultCount    = "tvdb.result_count"
	AttrWikiTitle      = "wikipedia.title"

	SpanAgentRun         = "agent.run"
	SpanLLMRequest       = "agent.llm_request"
	SpanToolExecution    = "agent.tool_execution"
	SpanTVDBLogin        = "tvdb.login"
	SpanTVDBSearch       = "tvdb.search"
	SpanWikipediaSummary = "wikipedia.summary"

	DefaultServiceName = "moviesbuddy"
)
