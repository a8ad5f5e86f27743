package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/internal/maincmd"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.tick")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func stdio(out, errw *bytes.Buffer) mainer.Stdio {
	return mainer.Stdio{Stdin: bytes.NewReader(nil), Stdout: out, Stderr: errw}
}

func TestTokenizeFilesPrintsTokens(t *testing.T) {
	path := writeScript(t, "let a = 1\n")
	var out, errb bytes.Buffer
	err := maincmd.TokenizeFiles(stdio(&out, &errb), path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "LET")
	require.Contains(t, out.String(), "NUMBER")
}

func TestTokenizeFilesReportsMissingFile(t *testing.T) {
	var out, errb bytes.Buffer
	err := maincmd.TokenizeFiles(stdio(&out, &errb), filepath.Join(t.TempDir(), "missing.tick"))
	require.Error(t, err)
	require.NotEmpty(t, errb.String())
}

func TestParseFilesPrintsTree(t *testing.T) {
	path := writeScript(t, "let a = 1\n")
	var out, errb bytes.Buffer
	err := maincmd.ParseFiles(stdio(&out, &errb), path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "VarDecl a")
}

func TestCompileFilesWritesCacheEntry(t *testing.T) {
	path := writeScript(t, "let a = 1\n")
	dir := t.TempDir()
	store, err := cache.Open(dir)
	require.NoError(t, err)

	var out, errb bytes.Buffer
	err = maincmd.CompileFiles(stdio(&out, &errb), store, t.TempDir(), path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "ok")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestDisasmFilesPrintsBytecode(t *testing.T) {
	path := writeScript(t, "let a = 1\n")
	var out, errb bytes.Buffer
	err := maincmd.DisasmFiles(stdio(&out, &errb), nil, t.TempDir(), path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "=== Disassembly: Main ===")
}

func TestRunFileExecutesTopLevel(t *testing.T) {
	path := writeScript(t, "@meta {\"no_tick\": true}\nlet a = 1 + 2\nprint(a)\n")
	var out, errb bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := maincmd.RunFile(ctx, stdio(&out, &errb), nil, t.TempDir(), path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "3")
}
