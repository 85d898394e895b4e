package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliSchemas = `
record: Item
attributes:
  id:    { $type: string, $pk: true }
  title: { $type: string }
---
list: Items
element: Item
`

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flag state shared between runs
	outputFormat = ""
	diffExitCode = false
	schemaPaths = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"schemas/items.yaml": cliSchemas,
		"a.json":             `{"id": "a", "title": "old"}`,
		"b.json":             `{"id": "a", "title": "new"}`,
		"list-a.yaml":        "- {id: a, title: x}\n- {id: b, title: y}\n",
		"list-b.yaml":        "- {id: b, title: y}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDiffCommand(t *testing.T) {
	dir := setupWorkspace(t)
	schemas := filepath.Join(dir, "schemas")

	out, err := runCLI(t, "diff", "Item",
		filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"),
		"--schemas", schemas, "--config", filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("diff error: %v", err)
	}
	if !strings.Contains(out, "title") || !strings.Contains(out, `"new"`) {
		t.Errorf("output missing title change:\n%s", out)
	}
}

func TestDiffCommand_ListJSON(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runCLI(t, "diff", "Items",
		filepath.Join(dir, "list-a.yaml"), filepath.Join(dir, "list-b.yaml"),
		"--schemas", filepath.Join(dir, "schemas"),
		"--config", filepath.Join(dir, "none.yaml"),
		"--format", "json")
	if err != nil {
		t.Fatalf("diff error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc["schema"] != "Items" || doc["changed"] != true {
		t.Errorf("unexpected output: %v", doc)
	}
}

func TestDiffCommand_ExitCode(t *testing.T) {
	dir := setupWorkspace(t)
	base := []string{
		"--schemas", filepath.Join(dir, "schemas"),
		"--config", filepath.Join(dir, "none.yaml"),
		"--exit-code",
	}

	_, err := runCLI(t, append([]string{"diff", "Item",
		filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, base...)...)
	if !errors.Is(err, errDiffers) {
		t.Errorf("error = %v, want errDiffers", err)
	}

	out, err := runCLI(t, append([]string{"diff", "Item",
		filepath.Join(dir, "a.json"), filepath.Join(dir, "a.json")}, base...)...)
	if err != nil {
		t.Errorf("identical documents returned %v", err)
	}
	if !strings.Contains(out, "No changes.") {
		t.Errorf("output = %q, want No changes.", out)
	}
}

func TestDiffCommand_Errors(t *testing.T) {
	dir := setupWorkspace(t)
	common := []string{
		"--schemas", filepath.Join(dir, "schemas"),
		"--config", filepath.Join(dir, "none.yaml"),
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown schema", []string{"diff", "Nope", filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}},
		{"missing file", []string{"diff", "Item", filepath.Join(dir, "missing.json"), filepath.Join(dir, "b.json")}},
		{"wrong arg count", []string{"diff", "Item"}},
		{"unknown format", []string{"diff", "Item", filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"), "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, append(tt.args, common...)...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := runCLI(t, "validate",
		"--schemas", filepath.Join(dir, "schemas"),
		"--config", filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	for _, want := range []string{"Item", "Items", "[]Item"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("list: Things\nelement: Missing\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "validate", "--schemas", bad, "--config", filepath.Join(dir, "none.yaml")); err == nil {
		t.Error("expected error for unknown element type")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "modeldiff "+version) {
		t.Errorf("output = %q", out)
	}
}
