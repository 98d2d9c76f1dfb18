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
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/mod/modfile"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/errors"
)

// Kind identifies how a project renders its migrations to SQL
type Kind string

const (
	KindDjango Kind = "django"
	KindGoose  Kind = "goose"
)

// Project is a validated, git-versioned project folder
type Project struct {
	Root          string
	Kind          Kind
	ModulePath    string // Module path from go.mod for goose projects
	migrationsDir string
	matcher       *ignore.GitIgnore
	verbose       bool
}

// Detect validates the project folder and determines its kind.
// A valid folder is a directory, is versioned by git, and contains either a
// Django management script or a Go module with SQL migrations.
func Detect(root string, cfg *config.Config, verbose bool) (*Project, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.NewValidationError(root, "the passed argument doesn't seem to be a folder")
	}

	if gitInfo, err := os.Stat(filepath.Join(root, ".git")); err != nil || !gitInfo.IsDir() {
		return nil, errors.NewValidationError(root, "the passed folder doesn't seem to be versioned by git (no .git/ folder found)")
	}

	p := &Project{
		Root:          root,
		migrationsDir: cfg.Project.MigrationsDir,
		matcher:       ignore.CompileIgnoreLines(cfg.Project.Ignore...),
		verbose:       verbose,
	}

	switch cfg.Project.Kind {
	case "django":
		if err := p.detectDjango(cfg); err != nil {
			return nil, err
		}
	case "goose":
		if err := p.detectGoose(cfg); err != nil {
			return nil, err
		}
	case "", "auto":
		if err := p.detectDjango(cfg); err != nil {
			if gooseErr := p.detectGoose(cfg); gooseErr != nil {
				return nil, errors.NewValidationError(root,
					fmt.Sprintf("the passed folder doesn't seem to be a supported project (no %s and no goose migrations found)", cfg.Render.ManageScript))
			}
		}
	default:
		return nil, errors.NewValidationError("project.kind", fmt.Sprintf("unknown project kind: %s", cfg.Project.Kind))
	}

	if verbose {
		fmt.Printf("Detected %s project at %s\n", p.Kind, root)
		if p.ModulePath != "" {
			fmt.Printf("  Module: %s\n", p.ModulePath)
		}
	}

	return p, nil
}

func (p *Project) detectDjango(cfg *config.Config) error {
	manage := filepath.Join(p.Root, cfg.Render.ManageScript)
	if info, err := os.Stat(manage); err != nil || info.IsDir() {
		return errors.NewValidationError(p.Root,
			fmt.Sprintf("the passed folder doesn't seem to be a django project (no %s found)", cfg.Render.ManageScript))
	}
	p.Kind = KindDjango
	return nil
}

func (p *Project) detectGoose(cfg *config.Config) error {
	goModPath := filepath.Join(p.Root, "go.mod")
	goModBytes, err := os.ReadFile(goModPath)
	if err != nil {
		return errors.NewValidationError(p.Root, "the passed folder doesn't seem to be a go module (no go.mod found)")
	}

	modFile, err := modfile.Parse(goModPath, goModBytes, nil)
	if err != nil {
		return errors.NewValidationError("go.mod", fmt.Sprintf("invalid go.mod syntax: %v", err))
	}
	if modFile.Module == nil {
		return errors.NewValidationError("go.mod", "missing module declaration")
	}

	matches, err := filepath.Glob(filepath.Join(p.Root, cfg.Project.MigrationsDir, "*.sql"))
	if err != nil || len(matches) == 0 {
		return errors.NewValidationError(p.Root,
			fmt.Sprintf("no SQL migrations found under %s/", cfg.Project.MigrationsDir))
	}

	p.Kind = KindGoose
	p.ModulePath = modFile.Module.Mod.Path
	return nil
}

// IsMigrationFile reports whether a repo-relative path is a migration file
// this project kind can render. Paths matching the configured ignore
// patterns are skipped.
func (p *Project) IsMigrationFile(path string) bool {
	if !containsSegment(path, p.migrationsDir) {
		return false
	}
	if p.matcher != nil && p.matcher.MatchesPath(path) {
		if p.verbose {
			fmt.Printf("Ignoring migration (matches ignore pattern): %s\n", path)
		}
		return false
	}

	base := filepath.Base(path)
	switch p.Kind {
	case KindDjango:
		return strings.HasSuffix(base, ".py") && base != "__init__.py"
	case KindGoose:
		return strings.HasSuffix(base, ".sql")
	}
	return false
}

// SplitMigrationPath decomposes a migration path into its app name and
// migration name. For app/migrations/0002_add_field.py it returns
// ("app", "0002_add_field"). Goose projects keep migrations at the repo
// root, so the app name may be empty.
func (p *Project) SplitMigrationPath(path string) (string, string, error) {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, segment := range segments {
		if segment != p.migrationsDir || i+1 >= len(segments) {
			continue
		}
		app := ""
		if i > 0 {
			app = segments[i-1]
		}
		name := segments[i+1]
		return app, strings.TrimSuffix(name, filepath.Ext(name)), nil
	}
	return "", "", errors.NewValidationError(path, fmt.Sprintf("no %s segment in migration path", p.migrationsDir))
}

// MigrationsDir returns the configured migrations directory segment
func (p *Project) MigrationsDir() string {
	return p.migrationsDir
}

func containsSegment(path, segment string) bool {
	for _, s := range strings.Split(filepath.ToSlash(path), "/") {
		if s == segment {
			return true
		}
	}
	return false
}
