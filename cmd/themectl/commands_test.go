package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tarunkumar2005/fomi/internal/models"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedListExportImport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "themes.db")

	out, err := runCmd(t, "--db", dbPath, "seed")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "seeded") {
		t.Fatalf("seed output = %q", out)
	}

	out, err = runCmd(t, "--db", dbPath, "list")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	for _, id := range []string{models.DefaultThemeID, "ocean", "midnight"} {
		if !strings.Contains(out, id) {
			t.Fatalf("list output missing %q:\n%s", id, out)
		}
	}

	exported, err := runCmd(t, "--db", dbPath, "export", "ocean")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, exported)
	}
	exportPath := filepath.Join(dir, "ocean.json")
	if err := os.WriteFile(exportPath, []byte(exported), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	out, err = runCmd(t, "--db", dbPath, "import", exportPath, "--user", "user_1")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported") {
		t.Fatalf("import output = %q", out)
	}

	out, err = runCmd(t, "--db", dbPath, "list", "--user", "user_1")
	if err != nil {
		t.Fatalf("list --user: %v\n%s", err, out)
	}
	if !strings.Contains(out, string(models.ScopeUser)) {
		t.Fatalf("user catalog should include the imported theme:\n%s", out)
	}

	out, err = runCmd(t, "--db", dbPath, "list", "--user", "user_2")
	if err != nil {
		t.Fatalf("list --user user_2: %v\n%s", err, out)
	}
	if strings.Contains(out, string(models.ScopeUser)) {
		t.Fatalf("another user's theme leaked into the catalog:\n%s", out)
	}
}

func TestImportRequiresUser(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmd(t, "--db", filepath.Join(dir, "themes.db"), "import", filepath.Join(dir, "x.json")); err == nil {
		t.Fatal("expected import without --user to fail")
	}
}

func TestListWorkspaceNeedsUser(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCmd(t, "--db", filepath.Join(dir, "themes.db"), "list", "--workspace", "org_1"); err == nil {
		t.Fatal("expected --workspace without --user to fail")
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	exported := `{
  "name": "Harbor",
  "description": "",
  "category": "custom",
  "colors": {"primary": "#0ea5e9", "background": "#ffffff", "card": "#ffffff", "text": "#0f172a",
    "textMuted": "#64748b", "border": "#e2e8f0", "accent": "#f59e0b", "destructive": "#ef4444",
    "input": "#e2e8f0", "ring": "#0ea5e9"},
  "typography": {"headingFont": "Inter", "bodyFont": "Inter", "fontSize": "medium",
    "fontWeight": 400, "lineHeight": 1.5, "letterSpacing": 0},
  "layout": {"borderRadius": 8, "spacing": "normal", "shadow": "sm"},
  "buttons": {"style": "rounded", "size": "md", "variant": "solid"},
  "inputFields": {"style": "outlined", "size": "md"}
}`
	missingPartition := `{"name": "Broken", "colors": {"primary": "#000000"}}`

	tests := []struct {
		name    string
		file    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "exported theme", file: "harbor.json", body: exported, want: 1},
		{name: "missing partitions", file: "broken.json", body: missingPartition, wantErr: true},
		{name: "not json", file: "junk.json", body: "nope", wantErr: true},
		{name: "yaml without default", file: "themes.yaml", body: "themes: []\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write file: %v", err)
			}
			got, err := validateFile(path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d themes", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestValidateBuiltInThemesFile(t *testing.T) {
	count, err := validateFile(filepath.Join("..", "..", "assets", "themes.yaml"))
	if err != nil {
		t.Fatalf("validate assets/themes.yaml: %v", err)
	}
	if count == 0 {
		t.Fatal("expected built-in themes")
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := validateFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not exist", err)
	}
}
