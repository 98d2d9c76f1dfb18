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

// Package checker runs the backward-compatibility pipeline: gather migration
// files changed since a reference commit, render each to SQL, and test every
// statement against the rule set.
package checker

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/ocomsoft/checkmigrations/internal/git"
	"github.com/ocomsoft/checkmigrations/internal/project"
	"github.com/ocomsoft/checkmigrations/internal/render"
	"github.com/ocomsoft/checkmigrations/internal/rules"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Result is the outcome for one migration
type Result struct {
	Migration render.Migration
	Problems  []string
}

// OK reports whether the migration is backward compatible
func (r Result) OK() bool {
	return len(r.Problems) == 0
}

// Report aggregates the results of one run
type Report struct {
	Results []Result
}

// Valid returns the number of backward compatible migrations
func (r *Report) Valid() int {
	n := 0
	for _, result := range r.Results {
		if result.OK() {
			n++
		}
	}
	return n
}

// Erroneous returns the number of flagged migrations
func (r *Report) Erroneous() int {
	return len(r.Results) - r.Valid()
}

// Checker drives one sequential check run
type Checker struct {
	project  *project.Project
	git      *git.Runner
	renderer render.Renderer
	rules    *rules.Set
	out      io.Writer
	verbose  bool
}

func New(p *project.Project, g *git.Runner, renderer render.Renderer, ruleSet *rules.Set, verbose bool) *Checker {
	return &Checker{
		project:  p,
		git:      g,
		renderer: renderer,
		rules:    ruleSet,
		out:      os.Stdout,
		verbose:  verbose,
	}
}

// SetOutput redirects progress and summary output
func (c *Checker) SetOutput(w io.Writer) {
	c.out = w
}

// Run checks all migrations changed since commitID. When commitID is empty
// the repository's initial commit is used, so every migration in history is
// checked.
func (c *Checker) Run(ctx context.Context, commitID string) (*Report, error) {
	migrations, err := c.GatherMigrations(ctx, commitID)
	if err != nil {
		return nil, err
	}
	return c.CheckMigrations(ctx, migrations), nil
}

// GatherMigrations lists the project's migration files changed since the
// given commit.
func (c *Checker) GatherMigrations(ctx context.Context, commitID string) ([]render.Migration, error) {
	if commitID == "" {
		initial, err := c.git.InitialCommit(ctx)
		if err != nil {
			return nil, err
		}
		commitID = initial
		if c.verbose {
			fmt.Fprintf(c.out, "No commit given, comparing against initial commit %s\n", commitID)
		}
	}

	changed, err := c.git.ChangedFiles(ctx, commitID)
	if err != nil {
		return nil, err
	}

	var migrations []render.Migration
	for _, path := range changed {
		if !c.project.IsMigrationFile(path) {
			continue
		}
		app, name, err := c.project.SplitMigrationPath(path)
		if err != nil {
			continue
		}
		migrations = append(migrations, render.Migration{Path: path, App: app, Name: name})
	}

	if c.verbose {
		fmt.Fprintf(c.out, "Found %d changed migration(s) since %s\n", len(migrations), commitID)
	}

	return migrations, nil
}

// CheckMigrations renders each migration and tests every statement against
// the rule set, printing a progress line per migration. A migration that
// fails to render is reported as erroneous; the run continues.
func (c *Checker) CheckMigrations(ctx context.Context, migrations []render.Migration) *Report {
	report := &Report{}

	for _, migration := range migrations {
		fmt.Fprintf(c.out, "%s... ", migration.Path)

		result := Result{Migration: migration}
		statements, err := c.renderer.Render(ctx, migration)
		if err != nil {
			result.Problems = []string{err.Error()}
		} else {
			result.Problems = c.testStatements(statements)
		}

		if result.OK() {
			fmt.Fprintf(c.out, "%s\n", green("OK"))
		} else {
			fmt.Fprintf(c.out, "%s\n", red("ERR"))
			for _, problem := range result.Problems {
				fmt.Fprintf(c.out, "\t%s\n", problem)
			}
		}

		report.Results = append(report.Results, result)
	}

	return report
}

// testStatements returns the deduplicated, sorted problems found across a
// migration's statements.
func (c *Checker) testStatements(statements []string) []string {
	seen := make(map[string]bool)
	for _, statement := range statements {
		if problem, ok := c.rules.Check(statement); !ok {
			seen[problem] = true
		}
	}

	var problems []string
	for problem := range seen {
		problems = append(problems, problem)
	}
	sort.Strings(problems)
	return problems
}

// PrintSummary writes the closing per-run totals
func (c *Checker) PrintSummary(report *Report) {
	total := len(report.Results)
	fmt.Fprintln(c.out, "*** Summary:")
	fmt.Fprintf(c.out, "Valid migrations: %d/%d - erroneous migrations: %d/%d\n",
		report.Valid(), total, report.Erroneous(), total)
}
