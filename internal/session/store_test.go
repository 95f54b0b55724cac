package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStore_SetGetDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	_, found := store.Get("missing")
	assert.False(t, found)

	assert.NoError(t, store.Set("accessToken", "abc"))
	v, found := store.Get("accessToken")
	assert.True(t, found)
	assert.Equal(t, "abc", v)

	assert.NoError(t, store.Delete("accessToken"))
	_, found = store.Get("accessToken")
	assert.False(t, found)

	// Deleting an absent key is a no-op.
	assert.NoError(t, store.Delete("accessToken"))
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	assert.NoError(t, err)
	assert.NoError(t, store.Set("refreshToken", "xyz"))

	reopened, err := NewFileStore(dir)
	assert.NoError(t, err)
	v, found := reopened.Get("refreshToken")
	assert.True(t, found)
	assert.Equal(t, "xyz", v)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(dir)
	assert.NoError(t, err)
	_, found := store.Get("accessToken")
	assert.False(t, found)
}

func TestFileStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	assert.NoError(t, err)
	assert.NoError(t, store.Set("accessToken", "abc"))

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
