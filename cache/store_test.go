package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/cache"
	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/machine"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

func compileSource(t *testing.T, src string) (*types.Chunk, map[string]*types.FunctionObject) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)
	return top, fns
}

func TestStoreMissThenSetThenHit(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	src := []byte("let a = 2\nlet b = 3\nset a = a + b\n")
	_, _, ok := store.Get(src)
	require.False(t, ok)

	top, fns := compileSource(t, string(src))
	require.NoError(t, store.Set(src, top, fns))

	gotTop, gotFns, ok := store.Get(src)
	require.True(t, ok)
	require.Equal(t, len(top.Code), len(gotTop.Code))
	require.Equal(t, len(fns), len(gotFns))
}

func TestStoreRoundTripExecutesIdentically(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	src := []byte("func greet(name, greeting = \"hi\"):\n    return greeting + \" \" + name\nlet g = greet(\"ada\")\n")
	top, fns := compileSource(t, string(src))
	require.NoError(t, store.Set(src, top, fns))

	gotTop, gotFns, ok := store.Get(src)
	require.True(t, ok)

	th := &machine.Thread{}
	th.Load(gotTop, gotFns)
	_, err = th.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, types.String("hi ada"), th.Globals["g"])
}

func TestStoreClearRemovesEntries(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	src := []byte("let a = 1\n")
	top, fns := compileSource(t, string(src))
	require.NoError(t, store.Set(src, top, fns))

	_, _, ok := store.Get(src)
	require.True(t, ok)

	require.NoError(t, store.Clear())
	_, _, ok = store.Get(src)
	require.False(t, ok)
}

func TestStoreCleanupRemovesOldEntries(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	src := []byte("let a = 1\n")
	top, fns := compileSource(t, string(src))
	require.NoError(t, store.Set(src, top, fns))

	n, err := store.Cleanup(0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, _, ok := store.Get(src)
	require.False(t, ok)
}
