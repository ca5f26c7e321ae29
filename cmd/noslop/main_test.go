package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/noslop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unusedSource = `
def process(x: int, y: int = 10) -> int:
    return x + y

a = process(1, 2)
b = process(3, 4)
c = process(5, 6)
`

const usedSource = `
def process(x: int, y: int = 10) -> int:
    return x + y

a = process(1)
b = process(3, 4)
`

type runResult struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return runResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRootPath(t *testing.T) {
	assert.Equal(t, ".", rootPath(nil))
	assert.Equal(t, "src", rootPath([]string{"src"}))
}

func TestAnalyzeReportsUnusedDefault(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	res := run(t, root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.Contains(t, res.stdout, "main.py:2:1: SLOP010 process: default never used: y = 10 (3 call sites always pass it)")
	assert.True(t, strings.HasSuffix(res.stdout, "\nFound 1 unused defaults\n"))
	assert.Contains(t, res.stderr, "Analyzing 1 files...")
}

func TestAnalyzeJSON(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	for _, args := range [][]string{{"--json", root}, {"-f", "json", root}} {
		res := run(t, args...)
		assert.Equal(t, exitIssuesFound, res.code)

		var issues []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &issues), res.stdout)
		require.Len(t, issues, 1)
		assert.Equal(t, "SLOP010", issues[0]["code"])
		assert.Equal(t, "process", issues[0]["function"])
		assert.Equal(t, "y", issues[0]["param"])
		assert.Equal(t, "10", issues[0]["default"])
		assert.Equal(t, float64(3), issues[0]["call_sites"])
	}
}

func TestDefaultsSubcommand(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	res := run(t, "defaults", "--json", root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.Contains(t, res.stdout, `"SLOP010"`)
}

func TestAnalyzeNoIssues(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": usedSource})

	res := run(t, root)
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "Found 0 unused defaults\n", res.stdout)
}

func TestAnalyzeEmptyJSON(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": usedSource})

	res := run(t, "--json", root)
	assert.Equal(t, exitOK, res.code)
	assert.JSONEq(t, "[]", res.stdout)
}

func TestAnalyzeMinCalls(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	assert.Equal(t, exitIssuesFound, run(t, "--min-calls", "3", root).code)
	assert.Equal(t, exitOK, run(t, "--min-calls", "5", root).code)
}

func TestAnalyzeMinCallsFromConfig(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{
		"main.py":     unusedSource,
		"noslop.toml": "[defaults]\nmin_call_sites = 4\n",
	})

	assert.Equal(t, exitOK, run(t, root).code)
	// Flags win over the config file.
	assert.Equal(t, exitIssuesFound, run(t, "--min-calls", "1", root).code)
}

func TestAnalyzeIncludePrivate(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": `
def _helper(x, flag=False):
    return x

_helper(1, True)
`})

	assert.Equal(t, exitOK, run(t, root).code)
	assert.Equal(t, exitIssuesFound, run(t, "--include-private", root).code)
}

func TestAnalyzeQuiet(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	res := run(t, "-q", root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.NotContains(t, res.stderr, "Analyzing")
}

func TestAnalyzeOutputFile(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})
	out := filepath.Join(t.TempDir(), "report.json")

	res := run(t, "--json", "-o", out, root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, testutil.ReadFile(t, out), `"SLOP010"`)
}

func TestAnalyzeCacheFlag(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	assert.Equal(t, exitIssuesFound, run(t, "--cache", root).code)
	entries, err := os.ReadDir(filepath.Join(root, ".noslop", "cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, exitIssuesFound, run(t, "--cache", root).code)

	res := run(t, "cache", "clear", root)
	assert.Equal(t, exitOK, res.code)
	entries, err = os.ReadDir(filepath.Join(root, ".noslop", "cache"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyzeErrors(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})
	file := filepath.Join(root, "main.py")

	tests := []struct {
		name string
		args []string
	}{
		{"missing path", []string{filepath.Join(root, "missing")}},
		{"file instead of directory", []string{file}},
		{"unknown format", []string{"-f", "xml", root}},
		{"invalid min calls", []string{"--min-calls", "0", root}},
		{"too many args", []string{root, root}},
		{"unknown flag", []string{"--bogus", root}},
		{"missing config file", []string{"-c", filepath.Join(root, "none.toml"), root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.args...)
			assert.Equal(t, exitError, res.code)
			assert.Contains(t, res.stderr, "Error:")
			assert.Empty(t, res.stdout)
		})
	}
}

func TestAnalyzeInterrupted(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := execute(ctx, []string{root}, &stdout, &stderr)
	assert.Equal(t, exitInterrupted, code)
	assert.Empty(t, stdout.String())
}

func TestVerboseSummary(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{"main.py": unusedSource})

	res := run(t, "--verbose", root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.Contains(t, res.stderr, "Files scanned")
	assert.Contains(t, res.stderr, "Call sites")
	assert.NotContains(t, res.stdout, "Files scanned")
}

func TestSkippedFileWarning(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{
		"main.py":   unusedSource,
		"broken.py": "def broken(:\n",
	})

	res := run(t, root)
	assert.Equal(t, exitIssuesFound, res.code)
	assert.Contains(t, res.stderr, "skipped file")
	assert.Contains(t, res.stderr, "broken.py")

	res = run(t, "-q", root)
	assert.NotContains(t, res.stderr, "skipped file")
}

func TestConfigValidate(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{
		"noslop.toml": "[defaults]\nmin_call_sites = 2\n",
	})

	res := run(t, "config", "validate", root)
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "Configuration valid:")
	assert.Contains(t, res.stdout, "noslop.toml")

	bad := testutil.PythonTree(t, map[string]string{
		"noslop.toml": "[defaults]\nmin_call_sites = 0\n",
	})
	res = run(t, "config", "validate", bad)
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stdout, "Configuration validation failed")
}

func TestConfigShow(t *testing.T) {
	root := testutil.PythonTree(t, map[string]string{
		"noslop.toml": "[defaults]\nmin_call_sites = 3\n",
	})

	res := run(t, "config", "show", root)
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "# Configuration from:")
	assert.Contains(t, res.stdout, "min_call_sites = 3")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".noslop", "noslop.toml")

	res := run(t, "config", "init", "-o", path)
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "Created")
	assert.Contains(t, testutil.ReadFile(t, path), "min_call_sites = 1")

	res = run(t, "config", "init", "-o", path)
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "already exists")

	assert.Equal(t, exitOK, run(t, "config", "init", "-o", path, "--force").code)

	// The written file loads back as a valid config.
	assert.Equal(t, exitOK, run(t, "config", "validate", "-c", path).code)
}

func TestFormatFlagHelp(t *testing.T) {
	res := run(t, "--help")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "Output format: text, json, markdown, table, yaml, toon")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false, false).Info("hidden")
	newLogger(&buf, false, false).Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	newLogger(&buf, true, false).Debug("debug")
	assert.Contains(t, buf.String(), "debug")

	buf.Reset()
	newLogger(&buf, true, true).Warn("quiet")
	assert.Empty(t, buf.String())
}
