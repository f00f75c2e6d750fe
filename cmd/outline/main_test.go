package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeychilson/regexpoutline/outliner"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunMarkdownPreset(t *testing.T) {
	path := writeFile(t, t.TempDir(), "README.md", "# Title\ntext\n## Sub")

	code, out, _ := runCLI(t, "", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "TOF [file] L1 (top of file)\n"+
		"Title [package] L1\n"+
		"  Sub [class] L3\n"+
		"EOF [file] L3 (end of file)\n", out)
}

func TestRunRulesFileJSON(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeFile(t, dir, "rules.yaml", "- ext: .txt\n  showTOF: false\n  showEOF: false\n  bullets: ['■', '□']\n")
	docPath := writeFile(t, dir, "notes.txt", "■A\n□B\n■C\n")

	code, out, _ := runCLI(t, "", "-rules", rulesPath, "-json", docPath)
	require.Equal(t, 0, code)

	var results []outliner.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, ".txt", results[0].Ext)
	require.Len(t, results[0].Nodes, 2)
	assert.Equal(t, "A", results[0].Nodes[0].Name)
	assert.Equal(t, "B", results[0].Nodes[0].Children[0].Name)
	assert.Equal(t, "C", results[0].Nodes[1].Name)
}

func TestRunStdin(t *testing.T) {
	code, out, _ := runCLI(t, "* One\n** Two\n", "-preset", "org", "-name", "todo.org", "-")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "One [package] L1")
	assert.Contains(t, out, "  Two [class] L2")
}

func TestRunMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "# A")
	b := writeFile(t, dir, "b.adoc", "== B")

	code, out, _ := runCLI(t, "", a, b)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "==> "+a+" <==")
	assert.Contains(t, out, "==> "+b+" <==")
	assert.Contains(t, out, "B [package] L1")
}

func TestRunUnknownExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.csv", "# not a heading here")

	code, out, errOut := runCLI(t, "", path)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no rule set matches document")
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.json", `[{"ext": ".txt", "showTOF": false, "showEOF": false, "bullets": ["■"]}]`)
	cfgPath := writeFile(t, dir, "config.yaml", "rules_file: rules.json\n")
	docPath := writeFile(t, dir, "n.txt", "■only")

	code, out, _ := runCLI(t, "", "-config", cfgPath, docPath)
	require.Equal(t, 0, code)
	assert.Equal(t, "only [package] L1\n", out)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `[{"ext": ".txt", "rules": [{"level": 0, "format": "x"}]}]`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no files", nil, 2, "at least one file is required"},
		{"config and rules", []string{"-config", "a", "-rules", "b", "x.md"}, 2, "cannot be combined"},
		{"bad log level", []string{"-log-level", "loud", "x.md"}, 2, "unknown log level"},
		{"unknown preset", []string{"-preset", "rst", "x.md"}, 1, "unknown rule preset"},
		{"invalid rules file", []string{"-rules", bad, "x.md"}, 1, "invalid rules file"},
		{"missing rules file", []string{"-rules", filepath.Join(dir, "none.json"), "x.md"}, 1, "failed to read rules file"},
		{"missing document", []string{filepath.Join(dir, "missing.md")}, 1, "failed to open document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, errOut, tt.wantErr)
		})
	}
}
