// Copyright 2025 walteh LLC
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

package pattern

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every file name when no patterns are configured.
const DefaultPattern = "*.*"

// 🔍 Match reports whether a file name matches a single pattern.
// Glob syntax (`*`, `?`, character classes) is tried first; if the
// pattern does not compile as a glob, a legacy fallback chain applies:
// `*` and `*.*` match everything, `*suffix`, `prefix*` and `*mid*`
// do edge-wildcard matching, anything else is literal equality.
func Match(name, pat string) bool {
	if matched, err := doublestar.Match(pat, name); err == nil && matched {
		return true
	}

	if pat == "*" || pat == "*.*" {
		return true
	}

	if rest, ok := strings.CutPrefix(pat, "*"); ok {
		if mid, ok := strings.CutSuffix(rest, "*"); ok {
			return strings.Contains(name, mid)
		}
		return strings.HasSuffix(name, rest)
	}
	if prefix, ok := strings.CutSuffix(pat, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pat
}

// 🎯 Matcher filters file names against a set of glob patterns.
// A name is included if it matches at least one pattern. The zero
// pattern set behaves as match-all.
type Matcher struct {
	patterns []string
}

// 🏭 New creates a matcher; an empty slice falls back to DefaultPattern
func New(patterns []string) *Matcher {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	return &Matcher{patterns: patterns}
}

// Matches reports whether any configured pattern accepts the name
func (m *Matcher) Matches(name string) bool {
	for _, p := range m.patterns {
		if Match(name, p) {
			return true
		}
	}
	return false
}

// Patterns returns the configured pattern list
func (m *Matcher) Patterns() []string {
	return m.patterns
}
