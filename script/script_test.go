package script_test

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/lang/host"
	"github.com/mna/tickscript/lang/types"
	"github.com/mna/tickscript/script"
)

func testLogger() *log.Logger {
	return log.New(log.Writer(), "", 0)
}

func TestNewRunsTopLevelAndInitOnce(t *testing.T) {
	src := "let calls = 0\n" +
		"@meta {\"no_tick\": true}\n" +
		"func on_init():\n" +
		"    set calls = calls + 1\n"
	s, err := script.New("t", []byte(src), nil, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	require.Equal(t, types.Number(1), s.Thread.Globals["calls"])
}

func TestNewUsesCacheOnSecondLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.Open(dir)
	require.NoError(t, err)

	src := []byte("let a = 1\n@meta {\"no_tick\": true}\n")
	s1, err := script.New("t", src, store, nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, s1)

	s2, err := script.New("t", src, store, nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, s2)
}

func TestExitRunsOnlyOnce(t *testing.T) {
	src := "@meta {\"no_tick\": true}\n" +
		"let calls = 0\n" +
		"func on_exit():\n" +
		"    set calls = calls + 1\n"
	s, err := script.New("t", []byte(src), nil, nil, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	s.Exit(ctx)
	s.Exit(ctx)
	require.Equal(t, types.Number(1), s.Thread.Globals["calls"])
}

func TestHotkeyEventIsDispatched(t *testing.T) {
	src := "@meta {\"no_tick\": true}\n" +
		"let last = 0\n" +
		"func on_hotkey(n):\n" +
		"    set last = n\n"
	s, err := script.New("t", []byte(src), nil, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = s.Thread.Run(ctx)
	require.NoError(t, err)

	s.PostEvent(types.Number(42))
	s.ProcessEvents(ctx)
	require.Equal(t, types.Number(42), s.Thread.Globals["last"])
}

func TestRunStopsWhenRequestExitCalled(t *testing.T) {
	src := "@meta {\"no_tick\": true}\n"
	s, err := script.New("t", []byte(src), nil, nil, testLogger())
	require.NoError(t, err)

	s.RequestExit()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
}

func TestMetaRemapsLifecycleFunctionNames(t *testing.T) {
	src := "@meta {\"no_tick\": true, \"init\": \"setup\"}\n" +
		"let ran = 0\n" +
		"func setup():\n" +
		"    set ran = 1\n"
	s, err := script.New("t", []byte(src), nil, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	require.Equal(t, types.Number(1), s.Thread.Globals["ran"])
}

func TestBuiltinNamesAvoidAnalyzerDiagnostics(t *testing.T) {
	reg := host.NewRegistry()
	reg.Bind("greeting", types.String("hi"))

	src := "@meta {\"no_tick\": true}\nlet a = greeting\n"
	s, err := script.New("t", []byte(src), nil, reg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))
	require.Equal(t, types.String("hi"), s.Thread.Globals["a"])
}
