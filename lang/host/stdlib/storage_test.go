package stdlib_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/host/stdlib"
	"github.com/mna/tickscript/lang/types"
)

func call(t *testing.T, s *stdlib.Storage, name string, positional ...types.Value) types.Value {
	t.Helper()
	v, err := s.CallAttr(name, positional, nil)
	require.NoError(t, err)
	return v
}

func TestStorageWriteReadHasDelete(t *testing.T) {
	s, err := stdlib.NewStorage(t.TempDir(), "my script!")
	require.NoError(t, err)

	require.Equal(t, types.Bool(true), call(t, s, "write", types.String("k"), types.Number(42)))
	require.Equal(t, types.Bool(true), call(t, s, "has", types.String("k")))
	require.Equal(t, types.Number(42), call(t, s, "read", types.String("k")))
	require.Equal(t, types.Bool(true), call(t, s, "delete", types.String("k")))
	require.Equal(t, types.Bool(false), call(t, s, "has", types.String("k")))
}

func TestStorageReadMissingKeyReturnsDefault(t *testing.T) {
	s, err := stdlib.NewStorage(t.TempDir(), "script")
	require.NoError(t, err)

	require.Equal(t, types.None, call(t, s, "read", types.String("missing")))
	require.Equal(t, types.Number(7), call(t, s, "read", types.String("missing"), types.Number(7)))
}

func TestStorageSaveThenReloadPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := stdlib.NewStorage(dir, "persist")
	require.NoError(t, err)
	call(t, s, "write", types.String("k"), types.String("v"))
	call(t, s, "save")

	s2, err := stdlib.NewStorage(dir, "persist")
	require.NoError(t, err)
	require.Equal(t, types.String("v"), call(t, s2, "read", types.String("k")))
}

func TestStorageWithUnsafeNameWritesNothingOnCreate(t *testing.T) {
	dir := t.TempDir()
	_, err := stdlib.NewStorage(dir, "weird/name*.tick")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries) // nothing written to disk until a write + save/interval elapses
}

func TestStorageClearRemovesAllKeys(t *testing.T) {
	s, err := stdlib.NewStorage(t.TempDir(), "script")
	require.NoError(t, err)
	call(t, s, "write", types.String("a"), types.Number(1))
	call(t, s, "write", types.String("b"), types.Number(2))
	call(t, s, "clear")
	require.Equal(t, types.Bool(false), call(t, s, "has", types.String("a")))
	require.Equal(t, types.Bool(false), call(t, s, "has", types.String("b")))
}
