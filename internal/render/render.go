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

// Package render turns a migration file into the SQL statements it would
// execute, by asking the project's own migration tool.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/errors"
)

// Migration is one changed migration file to render
type Migration struct {
	Path string // Repo-relative path of the migration file
	App  string // Application the migration belongs to (empty for goose)
	Name string // Migration name without extension
}

// Renderer renders a migration to its SQL statements
type Renderer interface {
	Render(ctx context.Context, m Migration) ([]string, error)
}

// Django renders migrations with `python manage.py sqlmigrate app migration`
type Django struct {
	root    string
	python  string
	manage  string
	verbose bool
}

func NewDjango(root string, cfg *config.RenderConfig, verbose bool) *Django {
	return &Django{
		root:    root,
		python:  cfg.Python,
		manage:  cfg.ManageScript,
		verbose: verbose,
	}
}

func (d *Django) Render(ctx context.Context, m Migration) ([]string, error) {
	cmd := exec.CommandContext(ctx, d.python, d.manage, "sqlmigrate", m.App, m.Name)
	cmd.Dir = d.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if d.verbose {
		fmt.Printf("Running: %s %s sqlmigrate %s %s\n", d.python, d.manage, m.App, m.Name)
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.NewRenderError(m.Path, fmt.Sprintf("sqlmigrate failed: %s", msg))
	}

	return Statements(stdout.String()), nil
}

// Goose reads migration files directly. Goose migrations are already SQL,
// so rendering takes the Up section of the file as-is.
type Goose struct {
	root    string
	verbose bool
}

func NewGoose(root string, verbose bool) *Goose {
	return &Goose{
		root:    root,
		verbose: verbose,
	}
}

func (g *Goose) Render(ctx context.Context, m Migration) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(g.root, filepath.FromSlash(m.Path)))
	if err != nil {
		return nil, errors.NewRenderError(m.Path, fmt.Sprintf("failed to read migration: %v", err))
	}

	if g.verbose {
		fmt.Printf("Reading migration: %s\n", m.Path)
	}

	return Statements(upSection(string(data))), nil
}

// upSection extracts the text between the goose Up and Down annotations.
// Files without annotations are taken whole.
func upSection(sql string) string {
	lines := strings.Split(sql, "\n")
	up, inUp, annotated := []string{}, false, false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-- +goose Up") {
			inUp, annotated = true, true
			continue
		}
		if strings.HasPrefix(trimmed, "-- +goose Down") {
			inUp = false
			continue
		}
		if inUp {
			up = append(up, line)
		}
	}
	if !annotated {
		return sql
	}
	return strings.Join(up, "\n")
}

// Statements splits rendered output into trimmed SQL statement lines,
// dropping blank lines and `--` comments.
func Statements(output string) []string {
	var statements []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		statements = append(statements, line)
	}
	return statements
}
