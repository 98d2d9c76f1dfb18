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
package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/ocomsoft/checkmigrations/internal/checker"
	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/git"
	"github.com/ocomsoft/checkmigrations/internal/project"
	"github.com/ocomsoft/checkmigrations/internal/render"
	"github.com/ocomsoft/checkmigrations/internal/rules"
)

// ExecuteCheck handles the complete backward-compatibility check process
func ExecuteCheck(projectFolder, commitID string, verbose bool) error {
	cfg, err := config.Load(configFile, projectFolder)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Output.Verbose {
		verbose = true
	}
	color.NoColor = color.NoColor || !cfg.Output.ColorEnabled

	if verbose {
		fmt.Println("Backward incompatible migration checker")
		fmt.Println("=======================================")
	}

	// Validate the project folder and determine its kind; an invalid
	// folder terminates the run before anything is rendered
	proj, err := project.Detect(projectFolder, cfg, verbose)
	if err != nil {
		return err
	}

	// Initialize components
	gitRunner := git.New(projectFolder, verbose)
	ruleSet, err := rules.NewSet(&cfg.Rules, verbose)
	if err != nil {
		return fmt.Errorf("failed to build rule set: %w", err)
	}

	var renderer render.Renderer
	switch proj.Kind {
	case project.KindDjango:
		renderer = render.NewDjango(projectFolder, &cfg.Render, verbose)
	case project.KindGoose:
		renderer = render.NewGoose(projectFolder, verbose)
	default:
		return fmt.Errorf("no renderer for project kind %s", proj.Kind)
	}

	checkerInstance := checker.New(proj, gitRunner, renderer, ruleSet, verbose)

	// Run the pipeline
	report, err := checkerInstance.Run(context.Background(), commitID)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	checkerInstance.PrintSummary(report)

	if n := report.Erroneous(); n > 0 {
		return fmt.Errorf("%d backward incompatible migration(s) detected", n)
	}
	return nil
}
