package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeySubdomain, "example"))
	require.NoError(t, store.Set(KeyDays, int64(120)))

	assert.Equal(t, "example", store.GetString(KeySubdomain))
	assert.Equal(t, 120, store.GetInt(KeyDays))

	_, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("nonexistent"))
	assert.Zero(t, store.GetInt("nonexistent"))
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyDays, "not a number"))

	assert.Zero(t, store.GetInt(KeyDays))
	assert.Equal(t, "not a number", store.GetString(KeyDays))
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyUsername, "ops@example.com"))
	require.NoError(t, store.Set(KeyStrategy, "incremental"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", reopened.GetString(KeyUsername))
	assert.Equal(t, "incremental", reopened.GetString(KeyStrategy))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyAuth, "api-token"))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, ok := store.Get(KeySubdomain)
	assert.False(t, ok)
}
