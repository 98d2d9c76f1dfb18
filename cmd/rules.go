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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/rules"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the active backward-compatibility rule set",
	Long: `Show the active backward-compatibility rule set.

Lists every rule that will be applied to rendered migration SQL, including
built-in rules not disabled by configuration and any extra rules the project
defines under rules.extra.

Each rule is a regular expression; a statement matching it is flagged as
backward incompatible.`,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(configFile, ".")

	ruleSet, err := rules.NewSet(&cfg.Rules, verbose)
	if err != nil {
		return fmt.Errorf("failed to build rule set: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Active rules (%d):\n", len(ruleSet.Rules()))
	for _, rule := range ruleSet.Rules() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-30s %s\n", rule.Name, rule.Pattern.String(), rule.Problem)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
