package demo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	root := t.TempDir()
	st := NewFileStorage(root, "../escape")

	_, ok, err := st.Get(ctx, "k")
	a.NoError(err)
	a.False(ok)

	require.NoError(t, st.Set(ctx, "k", `{"a":1}`))
	v, ok, err := st.Get(ctx, "k")
	a.NoError(err)
	a.True(ok)
	a.Equal(`{"a":1}`, v)

	// client ids never leave the root
	rel, err := filepath.Rel(root, st.Dir)
	require.NoError(t, err)
	a.Equal(filepath.Base(st.Dir), rel)

	require.NoError(t, st.Remove(ctx, "k"))
	require.NoError(t, st.Remove(ctx, "k"))
	_, ok, _ = st.Get(ctx, "k")
	a.False(ok)
}

func TestFileStorageSeparatesClients(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	one := NewFileStorage(root, "one")
	two := NewFileStorage(root, "two")

	require.NoError(t, one.Set(ctx, SessionKey, "x"))
	_, ok, err := two.Get(ctx, SessionKey)
	assert.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
