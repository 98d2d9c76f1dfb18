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
package render

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/errors"
)

var djangoTestRenderConfig = config.RenderConfig{
	Python:       "python3",
	ManageScript: "manage.py",
}

func TestStatements_StripsCommentsAndBlanks(t *testing.T) {
	output := `BEGIN;
--
-- Add field age to user
--
ALTER TABLE "app_user" ADD COLUMN "age" integer NULL;

COMMIT;
`

	statements := Statements(output)
	expected := []string{
		"BEGIN;",
		`ALTER TABLE "app_user" ADD COLUMN "age" integer NULL;`,
		"COMMIT;",
	}
	if !reflect.DeepEqual(statements, expected) {
		t.Errorf("Expected %v, got %v", expected, statements)
	}
}

func TestStatements_Empty(t *testing.T) {
	if statements := Statements("-- only a comment\n\n"); len(statements) != 0 {
		t.Errorf("Expected no statements, got %v", statements)
	}
}

func TestGoose_RenderUpSection(t *testing.T) {
	tmpDir := t.TempDir()
	migrationsDir := filepath.Join(tmpDir, "migrations")
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		t.Fatal(err)
	}

	migration := `-- +goose Up
-- +goose StatementBegin
ALTER TABLE users ADD COLUMN nickname TEXT;
-- +goose StatementEnd

-- +goose Down
ALTER TABLE users DROP COLUMN nickname;
`
	path := filepath.Join(migrationsDir, "20240102000000_add_nickname.sql")
	if err := os.WriteFile(path, []byte(migration), 0644); err != nil {
		t.Fatal(err)
	}

	renderer := NewGoose(tmpDir, false)
	statements, err := renderer.Render(context.Background(), Migration{
		Path: "migrations/20240102000000_add_nickname.sql",
		Name: "20240102000000_add_nickname",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"ALTER TABLE users ADD COLUMN nickname TEXT;"}
	if !reflect.DeepEqual(statements, expected) {
		t.Errorf("Expected %v, got %v", expected, statements)
	}
}

func TestGoose_RenderUnannotatedFile(t *testing.T) {
	tmpDir := t.TempDir()
	migrationsDir := filepath.Join(tmpDir, "migrations")
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		t.Fatal(err)
	}

	migration := `CREATE TABLE sessions (id SERIAL PRIMARY KEY);
CREATE INDEX sessions_id_idx ON sessions (id);
`
	path := filepath.Join(migrationsDir, "20240103000000_sessions.sql")
	if err := os.WriteFile(path, []byte(migration), 0644); err != nil {
		t.Fatal(err)
	}

	renderer := NewGoose(tmpDir, false)
	statements, err := renderer.Render(context.Background(), Migration{
		Path: "migrations/20240103000000_sessions.sql",
		Name: "20240103000000_sessions",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(statements) != 2 {
		t.Errorf("Expected whole file to be rendered, got %v", statements)
	}
}

func TestGoose_RenderMissingFile(t *testing.T) {
	renderer := NewGoose(t.TempDir(), false)

	_, err := renderer.Render(context.Background(), Migration{
		Path: "migrations/20240104000000_gone.sql",
		Name: "20240104000000_gone",
	})
	if err == nil {
		t.Fatal("Expected error for missing migration file")
	}
	if !errors.IsRenderError(err) {
		t.Errorf("Expected RenderError, got: %v", err)
	}
}

func TestDjango_RenderCommandFailure(t *testing.T) {
	tmpDir := t.TempDir()

	// A manage.py that always fails stands in for a broken project
	manage := "import sys\nsys.stderr.write('boom')\nsys.exit(1)\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "manage.py"), []byte(manage), 0755); err != nil {
		t.Fatal(err)
	}

	renderer := NewDjango(tmpDir, &djangoTestRenderConfig, false)
	_, err := renderer.Render(context.Background(), Migration{
		Path: "app/migrations/0001_initial.py",
		App:  "app",
		Name: "0001_initial",
	})
	// Whether the interpreter is missing or manage.py exits non-zero,
	// the failure surfaces as a RenderError for this migration.
	if err == nil {
		t.Fatal("Expected error from failing sqlmigrate")
	}
	if !errors.IsRenderError(err) {
		t.Errorf("Expected RenderError, got: %v", err)
	}
}

func TestUpSection(t *testing.T) {
	sql := `-- +goose Up
ALTER TABLE a ADD COLUMN b INT;
-- +goose Down
ALTER TABLE a DROP COLUMN b;
`
	up := upSection(sql)
	if up != "ALTER TABLE a ADD COLUMN b INT;" {
		t.Errorf("Unexpected up section: %q", up)
	}
}
