package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir(), "/media", nil)
	require.NoError(t, err)
	return store
}

func TestLocalStoreSaveAndResolve(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	url, err := store.Save("images", "scene-001.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/images/scene-001.png", url)

	filePath, err := store.Resolve(url)
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestLocalStorePathRejectsTraversal(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, _, err := store.Path("images", "../escape.png")
	assert.Error(t, err)

	_, _, err = store.Path("images", "")
	assert.Error(t, err)
}

func TestLocalStoreResolveRejectsForeignURLs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Resolve("https://elsewhere.example/file.png")
	assert.Error(t, err)

	_, err = store.Resolve("/media/../etc/passwd")
	assert.Error(t, err)
}

func TestNewLocalStoreCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "media")
	_, err := NewLocalStore(dir, "", nil)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLocalStoreRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewLocalStore("", "/media", nil)
	assert.Error(t, err)
}
