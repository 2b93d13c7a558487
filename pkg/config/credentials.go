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

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Source is a named key/value lookup consulted during credential resolution.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

type mapSource struct {
	name   string
	values map[string]string
}

// MapSource wraps an explicit mapping, e.g. values loaded from a settings file.
func MapSource(name string, values map[string]string) Source {
	return &mapSource{name: name, values: values}
}

func (s *mapSource) Name() string { return s.name }

func (s *mapSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// FuncSource adapts a lookup function.
type FuncSource struct {
	SourceName string
	Fn         func(string) (string, bool)
}

func (s FuncSource) Name() string { return s.SourceName }

func (s FuncSource) Lookup(key string) (string, bool) {
	if s.Fn == nil {
		return "", false
	}
	return s.Fn(key)
}

// EnvSource reads the process environment.
func EnvSource() Source {
	return FuncSource{SourceName: "environment", Fn: os.LookupEnv}
}

// DefaultDotEnvFile is the settings file consulted after the environment.
const DefaultDotEnvFile = ".env"

type dotEnvSource struct {
	path   string
	once   sync.Once
	values map[string]string
}

// DotEnvSource reads a .env file on first lookup. A missing or malformed
// file behaves as an empty source.
func DotEnvSource(path string) Source {
	return &dotEnvSource{path: path}
}

func (s *dotEnvSource) Name() string { return "dotenv:" + s.path }

func (s *dotEnvSource) Lookup(key string) (string, bool) {
	s.once.Do(func() {
		values, err := godotenv.Read(s.path)
		if err != nil {
			slog.Debug("Settings file not loaded", "path", s.path, "error", err)
			return
		}
		s.values = values
	})
	v, ok := s.values[key]
	return v, ok
}

// DefaultSources returns the explicit mapping (if any), the process
// environment and the .env file in the working directory, in that order.
func DefaultSources(explicit map[string]string) []Source {
	sources := make([]Source, 0, 3)
	if explicit != nil {
		sources = append(sources, MapSource("explicit", explicit))
	}
	return append(sources, EnvSource(), DotEnvSource(DefaultDotEnvFile))
}

// CredentialSpec lists candidate variable names in priority order.
// Deprecated maps an accepted alias to the name it should be migrated to.
type CredentialSpec struct {
	Names      []string
	Deprecated map[string]string
}

var (
	GeminiAPIKeySpec = CredentialSpec{
		Names:      []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMENI_API_KEY"},
		Deprecated: map[string]string{"GEMENI_API_KEY": "GEMINI_API_KEY"},
	}
	TVDBAPIKeySpec = CredentialSpec{Names: []string{"TVDB_API_KEY"}}
	TVDBPinSpec    = CredentialSpec{Names: []string{"TVDB_PIN"}}
)

// MissingCredentialError reports that none of the expected names resolved.
type MissingCredentialError struct {
	Names []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: set %s", strings.Join(e.Names, " or "))
}

// ResolveCredential returns the first non-empty value found for spec.
// Names are tried in priority order; for each name the sources are
// consulted in order.
func ResolveCredential(spec CredentialSpec, sources ...Source) (string, error) {
	for _, name := range spec.Names {
		for _, src := range sources {
			if src == nil {
				continue
			}
			value, ok := src.Lookup(name)
			value = strings.TrimSpace(value)
			if !ok || value == "" {
				continue
			}
			if replacement, deprecated := spec.Deprecated[name]; deprecated {
				slog.Warn("Deprecated credential variable in use, please migrate",
					"variable", name, "replacement", replacement)
			}
			slog.Debug("Resolved credential", "variable", name, "source", src.Name())
			return value, nil
		}
	}
	return "", &MissingCredentialError{Names: append([]string(nil), spec.Names...)}
}
