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
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ocomsoft/checkmigrations/internal/errors"
)

// Runner executes git commands inside a repository
type Runner struct {
	dir     string
	verbose bool
}

func New(dir string, verbose bool) *Runner {
	return &Runner{
		dir:     dir,
		verbose: verbose,
	}
}

// InitialCommit returns (one of) the repository's initial commits, the last
// line of git rev-list HEAD.
func (r *Runner) InitialCommit(ctx context.Context) (string, error) {
	lines, err := r.run(ctx, "rev-list", "HEAD")
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", errors.NewGitError("git rev-list HEAD", "repository has no commits")
	}
	return lines[len(lines)-1], nil
}

// ChangedFiles returns the paths changed since the given commit, relative to
// the repository root.
func (r *Runner) ChangedFiles(ctx context.Context, commit string) ([]string, error) {
	return r.run(ctx, "diff", "--name-only", commit)
}

// run executes a git subcommand and returns its non-empty stdout lines.
// Each process is waited on to completion before returning.
func (r *Runner) run(ctx context.Context, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.verbose {
		fmt.Printf("Running: git %s\n", strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.NewGitError("git "+strings.Join(args, " "), msg)
	}

	var lines []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
