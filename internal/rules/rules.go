/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package rules holds the backward-compatibility rule set applied to
// rendered migration SQL. A statement matching any rule would break a
// still-running previous release of the application.
package rules

import (
	"fmt"
	"regexp"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/errors"
)

// Rule flags one known-unsafe DDL idiom
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Problem string
}

// Matches reports whether a single SQL statement trips this rule
func (r Rule) Matches(statement string) bool {
	return r.Pattern.MatchString(statement)
}

// Default returns the built-in rule set
func Default() []Rule {
	return []Rule{
		{
			Name:    "not-null",
			Pattern: regexp.MustCompile(`NOT NULL`),
			Problem: "NOT NULL constraint on columns",
		},
		{
			Name:    "drop-column",
			Pattern: regexp.MustCompile(`DROP COLUMN`),
			Problem: "DROPPING columns",
		},
		{
			Name:    "add-column-default",
			Pattern: regexp.MustCompile(`ADD COLUMN .* DEFAULT`),
			Problem: "ADD columns with default",
		},
	}
}

// Set is the active rule set for one run
type Set struct {
	rules   []Rule
	verbose bool
}

// NewSet builds the active rule set from the built-ins and the project
// configuration. Extra rule patterns are compiled here so a bad pattern
// fails the run up front instead of half way through the report.
func NewSet(cfg *config.RulesConfig, verbose bool) (*Set, error) {
	disabled := make(map[string]bool, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[name] = true
	}

	var active []Rule
	for _, rule := range Default() {
		if disabled[rule.Name] {
			if verbose {
				fmt.Printf("Rule disabled by config: %s\n", rule.Name)
			}
			continue
		}
		active = append(active, rule)
	}

	for _, extra := range cfg.Extra {
		if extra.Name == "" {
			return nil, errors.NewRuleError("extra", "extra rule is missing a name")
		}
		pattern, err := regexp.Compile(extra.Pattern)
		if err != nil {
			return nil, errors.NewRuleError(extra.Name, fmt.Sprintf("invalid pattern %q: %v", extra.Pattern, err))
		}
		problem := extra.Problem
		if problem == "" {
			problem = fmt.Sprintf("statement matches %s", extra.Name)
		}
		active = append(active, Rule{Name: extra.Name, Pattern: pattern, Problem: problem})
	}

	return &Set{rules: active, verbose: verbose}, nil
}

// Rules returns the active rules in evaluation order
func (s *Set) Rules() []Rule {
	return s.rules
}

// Check returns the problem description of the first rule the statement
// trips, or ok=true when it trips none.
func (s *Set) Check(statement string) (string, bool) {
	for _, rule := range s.rules {
		if rule.Matches(statement) {
			return rule.Problem, false
		}
	}
	return "", true
}
