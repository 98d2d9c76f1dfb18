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
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check PROJECT_FOLDER [COMMIT_ID]",
	Short: "Check migrations changed since a reference commit",
	Long: `Check migrations changed since a reference commit.

Enumerates the project's migration files changed since COMMIT_ID, renders each
one to SQL with the project's own migration tool, and flags statements that
would break a still-running previous version of the application.

If COMMIT_ID is not specified, the repository's initial commit is used, so
every migration in history is taken into account.

The command exits non-zero when any migration is flagged, which makes it
suitable as a CI/CD release gate.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDefaultCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
