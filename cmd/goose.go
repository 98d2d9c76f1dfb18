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
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	goose "github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/ocomsoft/checkmigrations/internal/config"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/lib/pq"               // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"     // SQLite driver
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
)

const (
	DatabaseTypePostgreSQL = "postgresql"
	DatabaseTypeMySQL      = "mysql"
	DatabaseTypeSQLite     = "sqlite"
	DatabaseTypeSQLServer  = "sqlserver"
)

var (
	blue  = color.New(color.FgBlue).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

var gooseProjectFolder string

// gooseCmd represents the goose command
var gooseCmd = &cobra.Command{
	Use:   "goose",
	Short: "Database migration commands using goose",
	Long: `Database migration commands using goose library.

For goose-managed projects this provides access to all goose migration
operations using the same configuration as the check command (database type,
connection settings, and migrations directory), so checking and applying
migrations share one setup.

Available subcommands:
  up          Migrate the DB to the most recent version available
  up-by-one   Migrate the DB up by 1
  up-to       Migrate the DB to a specific VERSION
  down        Roll back the version by 1
  down-to     Roll back to a specific VERSION
  redo        Re-run the latest migration
  reset       Roll back all migrations
  status      Print the status of all migrations
  version     Print the current version of the database
  create      Create a new migration file
  fix         Apply sequential ordering to migrations`,
}

// buildDatabaseURL constructs a database URL from the configuration.
// Connection details come from CHECKMIGRATIONS_DB_* environment variables,
// optionally loaded from the project's .env file.
func buildDatabaseURL(cfg *config.Config) (string, error) {
	switch cfg.Database.Type {
	case DatabaseTypePostgreSQL:
		host := getEnvOrDefault("CHECKMIGRATIONS_DB_HOST", "localhost")
		port := getEnvOrDefault("CHECKMIGRATIONS_DB_PORT", "5432")
		user := getEnvOrDefault("CHECKMIGRATIONS_DB_USER", "postgres")
		password := getEnvOrDefault("CHECKMIGRATIONS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("CHECKMIGRATIONS_DB_NAME", "postgres")
		sslmode := getEnvOrDefault("CHECKMIGRATIONS_DB_SSLMODE", "disable")

		if password != "" {
			return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				user, password, host, port, dbname, sslmode), nil
		}
		return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
			user, host, port, dbname, sslmode), nil

	case DatabaseTypeMySQL:
		host := getEnvOrDefault("CHECKMIGRATIONS_DB_HOST", "localhost")
		port := getEnvOrDefault("CHECKMIGRATIONS_DB_PORT", "3306")
		user := getEnvOrDefault("CHECKMIGRATIONS_DB_USER", "root")
		password := getEnvOrDefault("CHECKMIGRATIONS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("CHECKMIGRATIONS_DB_NAME", "mysql")

		if password != "" {
			return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
				user, password, host, port, dbname), nil
		}
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?parseTime=true",
			user, host, port, dbname), nil

	case DatabaseTypeSQLite:
		dbpath := getEnvOrDefault("CHECKMIGRATIONS_DB_PATH", "database.db")
		return dbpath, nil

	case DatabaseTypeSQLServer:
		host := getEnvOrDefault("CHECKMIGRATIONS_DB_HOST", "localhost")
		port := getEnvOrDefault("CHECKMIGRATIONS_DB_PORT", "1433")
		user := getEnvOrDefault("CHECKMIGRATIONS_DB_USER", "sa")
		password := getEnvOrDefault("CHECKMIGRATIONS_DB_PASSWORD", "")
		dbname := getEnvOrDefault("CHECKMIGRATIONS_DB_NAME", "master")

		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			user, password, host, port, dbname), nil

	default:
		return "", fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads connection credentials from the project's .env file when present
func loadEnvFile(cfg *config.Config) {
	if cfg.Database.EnvFile == "" {
		return
	}
	envPath := filepath.Join(gooseProjectFolder, cfg.Database.EnvFile)
	if _, err := os.Stat(envPath); err != nil {
		return
	}
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envPath, err)
	}
}

// setupGooseDB sets up the database connection and goose configuration
func setupGooseDB(cfg *config.Config) (*sql.DB, error) {
	loadEnvFile(cfg)

	// Build database URL
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build database URL: %w", err)
	}

	// Map our database types to goose driver names
	var driver string
	switch cfg.Database.Type {
	case DatabaseTypePostgreSQL:
		driver = "postgres"
	case DatabaseTypeMySQL:
		driver = "mysql"
	case DatabaseTypeSQLite:
		driver = "sqlite3"
	case DatabaseTypeSQLServer:
		driver = "sqlserver"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	// Open database connection
	db, err := sql.Open(driver, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set goose dialect
	if err := goose.SetDialect(driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return db, nil
}

// runGooseCommand executes a goose command with proper error handling
func runGooseCommand(cfg *config.Config, command string, args ...string) error {
	fmt.Printf("%s Running goose %s...\n", blue("▶"), command)

	// Setup database connection
	db, err := setupGooseDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationsDir := filepath.Join(gooseProjectFolder, cfg.Project.MigrationsDir)

	// Execute the goose command
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "up-by-one":
		err = goose.UpByOne(db, migrationsDir)
	case "up-to":
		if len(args) == 0 {
			return fmt.Errorf("up-to requires a version argument")
		}
		version, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid version: %s", args[0])
		}
		err = goose.UpTo(db, migrationsDir, version)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "down-to":
		if len(args) == 0 {
			return fmt.Errorf("down-to requires a version argument")
		}
		version, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid version: %s", args[0])
		}
		err = goose.DownTo(db, migrationsDir, version)
	case "redo":
		err = goose.Redo(db, migrationsDir)
	case "reset":
		err = goose.Reset(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	case "version":
		version, versionErr := goose.GetDBVersion(db)
		if versionErr != nil {
			err = versionErr
		} else {
			fmt.Printf("goose: version %d\n", version)
		}
	case "create":
		if len(args) == 0 {
			return fmt.Errorf("create requires a name argument")
		}
		err = goose.Create(db, migrationsDir, args[0], "sql")
	case "fix":
		err = goose.Fix(migrationsDir)
	default:
		return fmt.Errorf("unknown goose command: %s", command)
	}

	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	fmt.Printf("%s goose %s completed successfully\n", green("✓"), command)
	return nil
}

// createGooseSubcommand creates a goose subcommand
func createGooseSubcommand(name, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg := config.LoadOrDefault(configFile, gooseProjectFolder)

			return runGooseCommand(cfg, name, args...)
		},
	}
}

func init() {
	rootCmd.AddCommand(gooseCmd)

	gooseCmd.PersistentFlags().StringVar(&gooseProjectFolder, "project", ".", "Project folder containing the migrations directory")

	// Add all goose subcommands
	gooseCmd.AddCommand(createGooseSubcommand("up",
		"Migrate the DB to the most recent version available",
		"Migrate the DB to the most recent version available"))

	gooseCmd.AddCommand(createGooseSubcommand("up-by-one",
		"Migrate the DB up by 1",
		"Migrate the DB up by 1"))

	upToCmd := createGooseSubcommand("up-to",
		"Migrate the DB to a specific VERSION",
		"Migrate the DB to a specific VERSION")
	upToCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(upToCmd)

	gooseCmd.AddCommand(createGooseSubcommand("down",
		"Roll back the version by 1",
		"Roll back the version by 1"))

	downToCmd := createGooseSubcommand("down-to",
		"Roll back to a specific VERSION",
		"Roll back to a specific VERSION")
	downToCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(downToCmd)

	gooseCmd.AddCommand(createGooseSubcommand("redo",
		"Re-run the latest migration",
		"Re-run the latest migration"))

	gooseCmd.AddCommand(createGooseSubcommand("reset",
		"Roll back all migrations",
		"Roll back all migrations"))

	gooseCmd.AddCommand(createGooseSubcommand("status",
		"Print the status of all migrations",
		"Print the status of all migrations"))

	gooseCmd.AddCommand(createGooseSubcommand("version",
		"Print the current version of the database",
		"Print the current version of the database"))

	createCmd := createGooseSubcommand("create",
		"Create a new migration file",
		"Create a new migration file")
	createCmd.Args = cobra.ExactArgs(1)
	gooseCmd.AddCommand(createCmd)

	gooseCmd.AddCommand(createGooseSubcommand("fix",
		"Apply sequential ordering to migrations",
		"Apply sequential ordering to migrations"))
}
