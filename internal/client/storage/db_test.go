package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/pharmsim/internal/client/repositories/cookies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_MigratesAndWiresRepositories(t *testing.T) {
	ctx := context.Background()
	repos, err := InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	require.NoError(t, repos.Metadata.Set(ctx, "persist", "true"))
	v, ok, err := repos.Metadata.Get(ctx, "persist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	require.NoError(t, repos.Cookies.Upsert(ctx, cookies.Cookie{Host: "h", Name: "jwt", Value: "r"}))
	list, err := repos.Cookies.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInitDatabase_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	repos, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repos.Metadata.Set(ctx, "persist", "true"))
	require.NoError(t, repos.Close())

	repos, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	v, ok, err := repos.Metadata.Get(ctx, "persist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestInitDatabase_BadPath(t *testing.T) {
	_, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "state.db"))
	require.Error(t, err)
}

func TestForgetDevice_ClearsCookiesAndPersist(t *testing.T) {
	ctx := context.Background()
	repos, err := InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	require.NoError(t, repos.Metadata.Set(ctx, "persist", "true"))
	require.NoError(t, repos.Metadata.Set(ctx, "other", "kept"))
	require.NoError(t, repos.Cookies.Upsert(ctx, cookies.Cookie{Host: "h", Name: "jwt", Value: "r"}))

	require.NoError(t, repos.ForgetDevice(ctx))

	_, ok, err := repos.Metadata.Get(ctx, "persist")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := repos.Metadata.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)

	list, err := repos.Cookies.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
