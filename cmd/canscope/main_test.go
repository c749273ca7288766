package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/canscope/internal/config"
	"github.com/funvibe/canscope/internal/debugdb"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func resetAssertions(t *testing.T) {
	saved := config.DebugAssertions
	t.Cleanup(func() { config.DebugAssertions = saved })
}

func TestRunCleanScript(t *testing.T) {
	resetAssertions(t)
	dir := t.TempDir()
	writeScript(t, dir, "ok.scope.yaml", "module: Main\nsteps:\n  - { introduce: x, at: 1 }\n  - { lookup: x, at: 2 }\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-color", "never", dir}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "resolved")
}

func TestRunReportsDiagnostics(t *testing.T) {
	resetAssertions(t)
	dir := t.TempDir()
	path := writeScript(t, dir, "nested/bad.scope.yaml", "module: Main\nsteps:\n  - { lookup: missing, at: 7 }\n")
	writeScript(t, dir, "nested/notes.txt", "not a script")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-color", "never", filepath.Join(dir, "**", "*.scope.yaml")}, &stdout, &stderr)

	require.Equal(t, 1, code)
	out := stdout.String()
	require.True(t, strings.HasPrefix(out, path+":@7 error[C001]:"), out)
	require.NotContains(t, out, "\x1b[")
}

func TestRunColorAlways(t *testing.T) {
	resetAssertions(t)
	dir := t.TempDir()
	writeScript(t, dir, "bad.scope.yaml", "module: Main\nsteps:\n  - { lookup: missing, at: 7 }\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-color", "always", dir}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "\x1b[")
}

func TestRunExportsNames(t *testing.T) {
	resetAssertions(t)
	dir := t.TempDir()
	writeScript(t, dir, "a.scope.yaml", "module: A\nsteps:\n  - { introduce: a }\n")
	dbPath := filepath.Join(dir, "names.db")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-db", dbPath, "-color", "never", dir}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stderr.String(), "exported debug names")

	db, err := debugdb.Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestRunUsageErrors(t *testing.T) {
	resetAssertions(t)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 2},
		{"bad color", []string{"-color", "sometimes", "x"}, 2},
		{"unknown flag", []string{"-nope"}, 2},
		{"no match", []string{filepath.Join(t.TempDir(), "*.scope.yaml")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.Equal(t, tt.want, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestRunDebugFlagSetsAssertions(t *testing.T) {
	resetAssertions(t)
	dir := t.TempDir()
	writeScript(t, dir, "ok.scope.yaml", "module: Main\n")

	var stdout, stderr bytes.Buffer
	run([]string{"-color", "never", dir}, &stdout, &stderr)
	require.False(t, config.DebugAssertions)
	run([]string{"-debug", "-color", "never", dir}, &stdout, &stderr)
	require.True(t, config.DebugAssertions)
}
