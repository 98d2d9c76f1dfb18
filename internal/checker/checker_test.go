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
package checker

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ocomsoft/checkmigrations/internal/config"
	"github.com/ocomsoft/checkmigrations/internal/errors"
	"github.com/ocomsoft/checkmigrations/internal/render"
	"github.com/ocomsoft/checkmigrations/internal/rules"
)

// stubRenderer returns canned statements per migration path
type stubRenderer struct {
	statements map[string][]string
	failures   map[string]string
}

func (s *stubRenderer) Render(ctx context.Context, m render.Migration) ([]string, error) {
	if msg, ok := s.failures[m.Path]; ok {
		return nil, errors.NewRenderError(m.Path, msg)
	}
	return s.statements[m.Path], nil
}

func newTestChecker(t *testing.T, renderer render.Renderer) (*Checker, *bytes.Buffer) {
	t.Helper()

	// Plain OK/ERR markers so output assertions don't see ANSI codes
	color.NoColor = true

	ruleSet, err := rules.NewSet(&config.RulesConfig{}, false)
	if err != nil {
		t.Fatal(err)
	}

	c := New(nil, nil, renderer, ruleSet, false)
	var out bytes.Buffer
	c.SetOutput(&out)
	return c, &out
}

func TestCheckMigrations_ValidAndErroneous(t *testing.T) {
	renderer := &stubRenderer{
		statements: map[string][]string{
			"app/migrations/0002_add_nickname.py": {
				"BEGIN;",
				`ALTER TABLE "app_user" ADD COLUMN "nickname" varchar(50) NULL;`,
				"COMMIT;",
			},
			"app/migrations/0003_drop_legacy.py": {
				"BEGIN;",
				`ALTER TABLE "app_user" DROP COLUMN "legacy" CASCADE;`,
				"COMMIT;",
			},
		},
	}

	c, out := newTestChecker(t, renderer)
	report := c.CheckMigrations(context.Background(), []render.Migration{
		{Path: "app/migrations/0002_add_nickname.py", App: "app", Name: "0002_add_nickname"},
		{Path: "app/migrations/0003_drop_legacy.py", App: "app", Name: "0003_drop_legacy"},
	})

	if report.Valid() != 1 {
		t.Errorf("Expected 1 valid migration, got %d", report.Valid())
	}
	if report.Erroneous() != 1 {
		t.Errorf("Expected 1 erroneous migration, got %d", report.Erroneous())
	}

	output := out.String()
	if !strings.Contains(output, "app/migrations/0002_add_nickname.py... OK") {
		t.Errorf("Expected OK line in output, got:\n%s", output)
	}
	if !strings.Contains(output, "app/migrations/0003_drop_legacy.py... ERR") {
		t.Errorf("Expected ERR line in output, got:\n%s", output)
	}
	if !strings.Contains(output, "\tDROPPING columns") {
		t.Errorf("Expected indented problem line in output, got:\n%s", output)
	}
}

func TestCheckMigrations_ProblemsDeduplicated(t *testing.T) {
	renderer := &stubRenderer{
		statements: map[string][]string{
			"app/migrations/0004_tighten.py": {
				`ALTER TABLE "a" ALTER COLUMN "x" SET NOT NULL;`,
				`ALTER TABLE "a" ALTER COLUMN "y" SET NOT NULL;`,
				`ALTER TABLE "a" DROP COLUMN "z";`,
			},
		},
	}

	c, _ := newTestChecker(t, renderer)
	report := c.CheckMigrations(context.Background(), []render.Migration{
		{Path: "app/migrations/0004_tighten.py", App: "app", Name: "0004_tighten"},
	})

	expected := []string{"DROPPING columns", "NOT NULL constraint on columns"}
	if !reflect.DeepEqual(report.Results[0].Problems, expected) {
		t.Errorf("Expected deduplicated sorted problems %v, got %v", expected, report.Results[0].Problems)
	}
}

func TestCheckMigrations_RenderFailureIsErroneous(t *testing.T) {
	renderer := &stubRenderer{
		failures: map[string]string{
			"app/migrations/0005_broken.py": "sqlmigrate failed: boom",
		},
	}

	c, out := newTestChecker(t, renderer)
	report := c.CheckMigrations(context.Background(), []render.Migration{
		{Path: "app/migrations/0005_broken.py", App: "app", Name: "0005_broken"},
	})

	if report.Erroneous() != 1 {
		t.Fatalf("Expected render failure to count as erroneous, got %d", report.Erroneous())
	}
	if !strings.Contains(out.String(), "ERR") {
		t.Errorf("Expected ERR in output, got:\n%s", out.String())
	}
}

func TestCheckMigrations_Empty(t *testing.T) {
	c, out := newTestChecker(t, &stubRenderer{})
	report := c.CheckMigrations(context.Background(), nil)

	if len(report.Results) != 0 {
		t.Errorf("Expected empty report, got %d results", len(report.Results))
	}

	c.PrintSummary(report)
	if !strings.Contains(out.String(), "Valid migrations: 0/0 - erroneous migrations: 0/0") {
		t.Errorf("Unexpected summary output:\n%s", out.String())
	}
}

func TestPrintSummary(t *testing.T) {
	c, out := newTestChecker(t, &stubRenderer{
		statements: map[string][]string{
			"app/migrations/0002_ok.py":  {"CREATE INDEX idx ON a (b);"},
			"app/migrations/0003_bad.py": {`ALTER TABLE a DROP COLUMN b;`},
		},
	})

	report := c.CheckMigrations(context.Background(), []render.Migration{
		{Path: "app/migrations/0002_ok.py", App: "app", Name: "0002_ok"},
		{Path: "app/migrations/0003_bad.py", App: "app", Name: "0003_bad"},
	})
	c.PrintSummary(report)

	output := out.String()
	if !strings.Contains(output, "*** Summary:") {
		t.Errorf("Expected summary header, got:\n%s", output)
	}
	if !strings.Contains(output, "Valid migrations: 1/2 - erroneous migrations: 1/2") {
		t.Errorf("Expected counts line, got:\n%s", output)
	}
}
