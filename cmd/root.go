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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ocomsoft/checkmigrations/internal/version"
)

var (
	cfgFile    string
	configFile string // Config file path
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "checkmigrations PROJECT_FOLDER [COMMIT_ID]",
	Short: "Detect backward incompatible database migrations",
	Long: `Detect backward incompatible database migrations before a release.

This tool inspects the schema migrations of a version-controlled project and
flags ones whose generated SQL would break a still-running previous version
of the application, such as adding a NOT NULL column, dropping a column, or
adding a column with a server-side default.

When run without a subcommand, defaults to 'check'.

Available commands:
- check: Check migrations changed since a reference commit
- rules: Show the active backward-compatibility rule set
- goose: Run goose migration commands for goose-managed projects
- version: Show version information

Features:
- Enumerates migration files changed since a reference commit via git
- Renders each migration to SQL with the project's own migration tool
- Flags statements matching known-unsafe DDL idioms
- Non-zero exit when any migration is flagged (for CI/CD)
- Supports Django projects and goose SQL migration directories`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to check when no subcommand is provided
		return runDefaultCheck(cmd, args)
	},
}

// GetRootCmd returns the root command for embedding in other applications
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Display version at startup for all commands
	fmt.Printf("%s\n", version.GetDisplayVersion())
	cobra.CheckErr(rootCmd.Execute())
}

// runDefaultCheck runs the check functionality as the default command
func runDefaultCheck(cmd *cobra.Command, args []string) error {
	commitID := ""
	if len(args) > 1 {
		commitID = args[1]
	}
	return ExecuteCheck(args[0], commitID, verbose)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flag for config file
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: PROJECT_FOLDER/checkmigrations.config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show detailed processing information")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".checkmigrations" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".checkmigrations")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
