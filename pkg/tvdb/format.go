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

package tvdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	NoResultsMessage = "No results found for the search query."

	overviewLimit = 200
	companiesCap  = 3
	genresCap     = 5
	notAvailable  = "N/A"
)

// FormatSearchResults renders a search response as a numbered text report.
// Every record field is optional; record order is preserved.
func FormatSearchResults(resp Response) string {
	data, _ := resp["data"].([]any)
	if len(data) == 0 {
		return NoResultsMessage
	}

	lines := []string{fmt.Sprintf("Found %d results:\n", len(data))}
	for i, item := range data {
		record, _ := item.(map[string]any)
		lines = append(lines, formatRecord(i+1, record)...)
	}
	return strings.Join(lines, "\n")
}

func formatRecord(index int, record map[string]any) []string {
	name := valueOr(record["name"], notAvailable)
	year := valueOr(record["year"], notAvailable)
	kind := titleCase(valueOr(record["type"], notAvailable))

	id := notAvailable
	if v, ok := present(record["tvdb_id"]); ok {
		id = v
	} else if v, ok := present(record["id"]); ok {
		id = v
	}

	lines := []string{
		fmt.Sprintf("%d. **%s** (%s, %s)", index, name, kind, year),
		fmt.Sprintf("   - TVDB ID: %s", id),
	}

	if overview, ok := present(record["overview"]); ok {
		lines = append(lines, "   - Overview: "+truncate(overview, overviewLimit))
	}
	if companies := joinNames(record["companies"], companiesCap); companies != "" {
		lines = append(lines, "   - Networks/Companies: "+companies)
	}
	if genres := joinNames(record["genres"], genresCap); genres != "" {
		lines = append(lines, "   - Genres: "+genres)
	}
	return lines
}

// present renders v and reports whether it carries a usable value.
// Nil, empty strings and zero numbers count as absent.
func present(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case float64:
		return formatNumber(x), x != 0
	case int:
		return strconv.Itoa(x), x != 0
	case bool:
		return strconv.FormatBool(x), x
	default:
		return fmt.Sprint(x), true
	}
}

func valueOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	s, _ := present(v)
	return s
}

func joinNames(v any, limit int) string {
	entries, _ := v.([]any)
	if len(entries) == 0 {
		return ""
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if record, ok := entry.(map[string]any); ok {
			names = append(names, valueOr(record["name"], notAvailable))
			continue
		}
		names = append(names, valueOr(entry, notAvailable))
	}
	return strings.Join(names, ", ")
}

// formatNumber drops the fractional part of integral JSON numbers.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
